package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Ingredient is a reference product with the unit its amounts are measured in.
type Ingredient struct {
	gorm.Model
	Name            string `gorm:"size:200;not null;index"`
	MeasurementUnit string `gorm:"size:200;not null"`
}

func (i Ingredient) String() string {
	return fmt.Sprintf("%s, %s", i.Name, i.MeasurementUnit)
}
