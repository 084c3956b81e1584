package dto

import (
	"time"

	"github.com/spec-kit/pharmashop/internal/domain"
)

// ProductRequest is the admin create/update payload.
type ProductRequest struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	Brand                string   `json:"brand"`
	Category             string   `json:"category"`
	ActiveIngredient     string   `json:"activeIngredient"`
	Price                float64  `json:"price"`
	Stock                int      `json:"stock"`
	Rating               float64  `json:"rating"`
	Tags                 []string `json:"tags"`
	PrescriptionRequired bool     `json:"prescriptionRequired"`
}

// ProductResponse is the catalog view of a product.
type ProductResponse struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Brand                string    `json:"brand"`
	Category             string    `json:"category"`
	ActiveIngredient     string    `json:"activeIngredient"`
	Price                float64   `json:"price"`
	Stock                int       `json:"stock"`
	Rating               float64   `json:"rating"`
	Tags                 []string  `json:"tags"`
	PrescriptionRequired bool      `json:"prescriptionRequired"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// NewProductResponse converts the domain model.
func NewProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:                   product.ID,
		Name:                 product.Name,
		Description:          product.Description,
		Brand:                product.Brand,
		Category:             product.Category,
		ActiveIngredient:     product.ActiveIngredient,
		Price:                product.Price,
		Stock:                product.Stock,
		Rating:               product.Rating,
		Tags:                 product.Tags,
		PrescriptionRequired: product.PrescriptionRequired,
		CreatedAt:            product.CreatedAt,
		UpdatedAt:            product.UpdatedAt,
	}
}

// NewProductResponses converts a slice.
func NewProductResponses(products []domain.Product) []ProductResponse {
	items := make([]ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, NewProductResponse(&products[i]))
	}
	return items
}
