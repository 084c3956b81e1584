package domain

import "time"

// Product is the catalog aggregate.
type Product struct {
	ID                   string
	Name                 string
	Description          string
	Brand                string
	Category             string
	ActiveIngredient     string
	Price                float64
	Stock                int
	Rating               float64
	Tags                 []string
	PrescriptionRequired bool
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
