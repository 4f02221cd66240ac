package models

import "time"

// CalculationType is the operation tag stored with every calculation.
type CalculationType string

const (
	Add      CalculationType = "Add"
	Sub      CalculationType = "Sub"
	Multiply CalculationType = "Multiply"
	Divide   CalculationType = "Divide"
)

// CalculationTypes lists the canonical tags in display order.
var CalculationTypes = []CalculationType{Add, Sub, Multiply, Divide}

// Valid reports whether t is one of the canonical tags. Matching is case-sensitive.
func (t CalculationType) Valid() bool {
	switch t {
	case Add, Sub, Multiply, Divide:
		return true
	}
	return false
}

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

type Calculation struct {
	ID     int64           `json:"id" gorm:"primaryKey"`
	A      float64         `json:"a" gorm:"column:a;not null"`
	B      float64         `json:"b" gorm:"column:b;not null"`
	Type   CalculationType `json:"type" gorm:"column:type;size:16;not null"`
	Result *float64        `json:"result"`
	UserID *int64          `json:"user_id" gorm:"index"`
}

func (Calculation) TableName() string {
	return "calculations"
}
