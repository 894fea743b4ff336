package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"canteen-backend/internal/handlers"
	"canteen-backend/internal/session"
)

type Deps struct {
	DB             *gorm.DB
	GraphQLHandler *handlers.GraphQLHandler
	AuthHandler    *handlers.AuthHandler
	AdminHandler   *handlers.AdminHandler
	SearchHandler  *handlers.SearchHandler
	Session        *session.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.GET("/graphql", d.GraphQLHandler.Explorer)
	e.POST("/graphql", d.GraphQLHandler.Query, d.Session.Resolve)

	v1 := e.Group("/api/v1")

	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.Logout)
	v1.GET("/meals/search", d.SearchHandler.Search)

	admin := v1.Group("/admin", d.Session.Resolve, d.Session.RequireAdmin)

	admin.POST("/meals", d.AdminHandler.CreateMeal)
	admin.GET("/meals", d.AdminHandler.ListMeals)
	admin.PATCH("/meals/:id", d.AdminHandler.PatchMeal)
	admin.DELETE("/meals/:id", d.AdminHandler.DeleteMeal)

	admin.POST("/settings", d.AdminHandler.CreateSetting)
	admin.GET("/settings", d.AdminHandler.ListSettings)
	admin.DELETE("/settings/:id", d.AdminHandler.DeleteSetting)

	admin.POST("/users", d.AdminHandler.CreateUser)
	admin.GET("/users", d.AdminHandler.ListUsers)

	admin.GET("/orders", d.AdminHandler.ListOrders)
}
