package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	pkgerrors "github.com/fasalbajar/fasalbajar-backend/pkg/errors"
)

// Service defines product operations for the public catalog and farmer management.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListMine(ctx context.Context, farmerID uuid.UUID) ([]ProductDTO, error)
	Create(ctx context.Context, farmerID uuid.UUID, req CreateProductRequest) (*ProductDTO, error)
	Update(ctx context.Context, farmerID, productID uuid.UUID, req UpdateProductRequest) (*ProductDTO, error)
	Delete(ctx context.Context, farmerID, productID uuid.UUID) error
}

type productRepository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]models.Product, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, input ListInput) ([]models.Product, string, error)
}

type service struct {
	repo productRepository
}

// NewService constructs a product service.
func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return &ListResult{Items: fromModels(rows), NextCursor: nextCursor}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

func (s *service) ListMine(ctx context.Context, farmerID uuid.UUID) ([]ProductDTO, error) {
	rows, err := s.repo.ListByFarmer(ctx, farmerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list farmer products")
	}
	return fromModels(rows), nil
}

func (s *service) Create(ctx context.Context, farmerID uuid.UUID, req CreateProductRequest) (*ProductDTO, error) {
	name := strings.TrimSpace(req.ProductName)
	ptype := strings.TrimSpace(req.ProductType)
	unit := strings.TrimSpace(req.Unit)
	if name == "" || ptype == "" || unit == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_name, product_type, and unit are required")
	}
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if req.PricePaisa <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	product, err := s.repo.Create(ctx, &models.Product{
		FarmerID:    farmerID,
		ProductName: name,
		ProductType: ptype,
		Quantity:    req.Quantity,
		Unit:        unit,
		PricePaisa:  req.PricePaisa,
		Location:    req.Location,
		Image:       req.Image,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return FromModel(product), nil
}

func (s *service) Update(ctx context.Context, farmerID, productID uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.FarmerID != farmerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to farmer")
	}

	updates := map[string]any{}
	if req.ProductName != nil {
		if strings.TrimSpace(*req.ProductName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_name cannot be blank")
		}
		updates["product_name"] = strings.TrimSpace(*req.ProductName)
	}
	if req.ProductType != nil {
		if strings.TrimSpace(*req.ProductType) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_type cannot be blank")
		}
		updates["product_type"] = strings.TrimSpace(*req.ProductType)
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		updates["quantity"] = *req.Quantity
	}
	if req.Unit != nil {
		if strings.TrimSpace(*req.Unit) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit cannot be blank")
		}
		updates["unit"] = strings.TrimSpace(*req.Unit)
	}
	if req.PricePaisa != nil {
		if *req.PricePaisa <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		updates["price_paisa"] = *req.PricePaisa
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}

	updated, err := s.repo.Update(ctx, productID, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, farmerID, productID uuid.UUID) error {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product.FarmerID != farmerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to farmer")
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}
