package models

import (
	"time"
)

const (
	EntityGarena = "GARENA"
	EntityOther  = "OTHER"

	LocationHN  = "HN"
	LocationHCM = "HCM"

	ChoiceYes = "yes"
	ChoiceNo  = "no"
)

type User struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Email         string         `gorm:"unique;not null"          json:"email"`
	Name          string         `gorm:"not null"                 json:"name"`
	Entity        string         `gorm:"not null"                 json:"entity"`
	Location      string         `gorm:"not null"                 json:"location"`
	Phone         string         `json:"phone"`
	Username      string         `gorm:"unique;not null"          json:"username"`
	PasswordHash  string         `gorm:"not null"                 json:"-"`
	Role          string         `gorm:"not null;default:user"    json:"role"`
	Orders        []MealOrder    `gorm:"foreignKey:UserID"        json:"-"`
	Registrations []Registration `gorm:"foreignKey:UserID"        json:"-"`
}

type Meal struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Location    string    `gorm:"not null;index"           json:"location"`
	Date        time.Time `gorm:"type:date;not null"       json:"date"`
	Name        string    `gorm:"not null"                 json:"name"`
	Description string    `json:"description"`
	Price       string    `gorm:"not null"                 json:"price"`
}

type Setting struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FromDate time.Time `gorm:"type:date;not null"       json:"fromDate"`
	ToDate   time.Time `gorm:"type:date;not null"       json:"toDate"`
	Month    int       `gorm:"not null"                 json:"month"`
	Year     int       `gorm:"not null"                 json:"year"`
}

type MealOrder struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Location string    `gorm:"not null"                 json:"location"`
	Date     time.Time `gorm:"type:date;not null"       json:"date"`
	Type     string    `gorm:"not null"                 json:"type"`
	Paid     bool      `gorm:"default:false"            json:"paid"`
	MealID   uint      `gorm:"not null;index"           json:"meal_id"`
	UserID   uint      `gorm:"not null;index"           json:"user_id"`
	Meal     Meal      `gorm:"foreignKey:MealID"        json:"-"`
}

type Registration struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Month     int       `gorm:"not null;index"           json:"month"`
	Year      int       `gorm:"not null;index"           json:"year"`
	Choice    string    `gorm:"not null"                 json:"choice"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UserID    uint      `gorm:"not null;index"           json:"user_id"`
}
