package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"canteen-backend/internal/events"
	"canteen-backend/internal/hash"
	"canteen-backend/internal/models"
	"canteen-backend/internal/search"
	"canteen-backend/internal/util"
)

// AdminHandler is the JSON surface an external admin UI consumes:
// plain CRUD over meals, settings and users.
type AdminHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
	ES       *elasticsearch.Client
	Index    string
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func (h *AdminHandler) publish(c echo.Context, topic string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, fmt.Sprint(event["id"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *AdminHandler) listMeta(c echo.Context, total int64, page, limit, offset int) echo.Map {
	return echo.Map{
		"page":        page,
		"size":        limit,
		"total":       total,
		"total_pages": (total + int64(limit) - 1) / int64(limit),
		"has_prev":    page > 1,
		"has_next":    int64(offset+limit) < total,
	}
}

func (h *AdminHandler) CreateMeal(c echo.Context) error {
	var req struct {
		Location    string    `json:"location"`
		Date        time.Time `json:"date"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Price       string    `json:"price"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.Location != models.LocationHN && req.Location != models.LocationHCM {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "location must be HN or HCM"})
	}

	meal := models.Meal{
		Location:    req.Location,
		Date:        req.Date,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}

	if err := h.DB.Create(&meal).Error; err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if h.ES != nil {
		if err := search.IndexMeal(c.Request().Context(), h.ES, h.Index, &meal); err != nil {
			c.Logger().Errorf("ES index error: %v", err)
		}
	}

	h.publish(c, "meal_events", map[string]interface{}{
		"type": "meal_created",
		"id":   meal.ID,
		"name": meal.Name,
	})

	return c.JSON(http.StatusCreated, meal)
}

func (h *AdminHandler) ListMeals(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Meal{})
	if loc := c.QueryParam("location"); loc != "" {
		q = q.Where("location = ?", loc)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	var meals []models.Meal
	if err := q.Order("date ASC").Offset(offset).Limit(limit).Find(&meals).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": meals,
		"meta": h.listMeta(c, total, page, limit, offset),
	})
}

func (h *AdminHandler) PatchMeal(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var meal models.Meal
	if err := h.DB.Where("id = ?", id).First(&meal).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "meal not found"})
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Price       *string `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if req.Name != nil {
		meal.Name = *req.Name
	}
	if req.Description != nil {
		meal.Description = *req.Description
	}
	if req.Price != nil {
		meal.Price = *req.Price
	}

	if err := h.DB.Save(&meal).Error; err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if h.ES != nil {
		if err := search.IndexMeal(c.Request().Context(), h.ES, h.Index, &meal); err != nil {
			c.Logger().Errorf("ES index error: %v", err)
		}
	}

	h.publish(c, "meal_events", map[string]interface{}{
		"type": "meal_updated",
		"id":   meal.ID,
		"name": meal.Name,
	})

	return c.JSON(http.StatusOK, meal)
}

func (h *AdminHandler) DeleteMeal(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.DB.Delete(&models.Meal{}, id).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	if h.ES != nil {
		if err := search.DeleteMeal(c.Request().Context(), h.ES, h.Index, id); err != nil {
			c.Logger().Errorf("ES delete error: %v", err)
		}
	}

	h.publish(c, "meal_events", map[string]interface{}{
		"type": "meal_deleted",
		"id":   id,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) CreateSetting(c echo.Context) error {
	var req struct {
		FromDate time.Time `json:"fromDate"`
		ToDate   time.Time `json:"toDate"`
		Month    int       `json:"month"`
		Year     int       `json:"year"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.ToDate.Before(req.FromDate) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "fromDate must not be after toDate"})
	}

	setting := models.Setting{
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
		Month:    req.Month,
		Year:     req.Year,
	}
	if err := h.DB.Create(&setting).Error; err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, setting)
}

func (h *AdminHandler) ListSettings(c echo.Context) error {
	var settings []models.Setting
	if err := h.DB.Order("year DESC, month DESC").Find(&settings).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *AdminHandler) DeleteSetting(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.DB.Delete(&models.Setting{}, id).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Entity   string `json:"entity"`
		Location string `json:"location"`
		Phone    string `json:"phone"`
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.Entity != models.EntityGarena && req.Entity != models.EntityOther {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "entity must be GARENA or OTHER"})
	}
	if req.Location != models.LocationHN && req.Location != models.LocationHCM {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "location must be HN or HCM"})
	}
	if req.Role == "" {
		req.Role = "user"
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cannot hash password"})
	}

	user := models.User{
		Email:        req.Email,
		Name:         req.Name,
		Entity:       req.Entity,
		Location:     req.Location,
		Phone:        req.Phone,
		Username:     req.Username,
		PasswordHash: pwHash,
		Role:         req.Role,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}

	h.publish(c, "user_events", map[string]interface{}{
		"type": "user_created",
		"id":   user.ID,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	var users []models.User
	if err := h.DB.Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": users,
		"meta": h.listMeta(c, total, page, limit, offset),
	})
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.MealOrder{})
	if loc := c.QueryParam("location"); loc != "" {
		q = q.Where("location = ?", loc)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	var orders []models.MealOrder
	if err := q.Order("date DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": orders,
		"meta": h.listMeta(c, total, page, limit, offset),
	})
}
