package models

import "gorm.io/gorm"

// Supplier is the vendor an ingredient is purchased from. An ingredient references at most one
// supplier at a time and that reference decides whose purchase prices may update it.
type Supplier struct {
	gorm.Model
	Name          string `gorm:"uniqueIndex;not null" json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `gorm:"type:text" json:"address"`
}
