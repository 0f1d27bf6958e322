package models

import "time"

// ProductType is the fixed category set of the inventory.
type ProductType string

const (
	TypeGranosBasicos ProductType = "GRANOS_BASICOS"
	TypeSnacks        ProductType = "SNACKS"
	TypeBebidas       ProductType = "BEBIDAS"
	TypeLacteos       ProductType = "LACTEOS"
)

// Valid reports whether t is one of the known categories.
func (t ProductType) Valid() bool {
	switch t {
	case TypeGranosBasicos, TypeSnacks, TypeBebidas, TypeLacteos:
		return true
	}
	return false
}

// Product is an inventory item. Price is stored in cents to avoid
// float error; stock never goes below zero.
type Product struct {
	ID        uint        `json:"id"`
	UUID      string      `json:"uuid"`
	Name      string      `json:"name"`
	PriceCent int64       `json:"price_cent"`
	Stock     int         `json:"stock"`
	Type      ProductType `json:"type"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
