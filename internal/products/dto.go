package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/pagination"
)

// ProductDTO is the transport shape for a listed product.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	FarmerID    uuid.UUID `json:"farmer_id"`
	ProductName string    `json:"product_name"`
	ProductType string    `json:"product_type"`
	Quantity    int       `json:"quantity"`
	Unit        string    `json:"unit"`
	PricePaisa  int       `json:"price_paisa"`
	Location    *string   `json:"location,omitempty"`
	Image       *string   `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProductRequest is the farmer's listing payload.
type CreateProductRequest struct {
	ProductName string  `json:"product_name" validate:"required"`
	ProductType string  `json:"product_type" validate:"required"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
	Unit        string  `json:"unit" validate:"required"`
	PricePaisa  int     `json:"price_paisa" validate:"required,gt=0"`
	Location    *string `json:"location,omitempty"`
	Image       *string `json:"image,omitempty"`
}

// UpdateProductRequest carries mutable listing fields. Nil means leave unchanged.
type UpdateProductRequest struct {
	ProductName *string `json:"product_name,omitempty"`
	ProductType *string `json:"product_type,omitempty"`
	Quantity    *int    `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Unit        *string `json:"unit,omitempty"`
	PricePaisa  *int    `json:"price_paisa,omitempty" validate:"omitempty,gt=0"`
	Location    *string `json:"location,omitempty"`
	Image       *string `json:"image,omitempty"`
}

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	ProductType string
	Location    string
	Query       string
}

// ListInput captures the inputs needed to paginate/filter the public catalog.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ListResult is one page of products plus the cursor for the next page.
type ListResult struct {
	Items      []ProductDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:          p.ID,
		FarmerID:    p.FarmerID,
		ProductName: p.ProductName,
		ProductType: p.ProductType,
		Quantity:    p.Quantity,
		Unit:        p.Unit,
		PricePaisa:  p.PricePaisa,
		Location:    p.Location,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
