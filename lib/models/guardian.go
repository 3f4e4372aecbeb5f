package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Guardian struct {
	ID           string `gorm:"primaryKey"`
	UserID       string `gorm:"index"`
	Name         string
	Phone        string
	Email        string
	Relationship string
	IsPrimary    bool
	IsActive     bool `gorm:"default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Guardians []Guardian

func (g *Guardian) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
