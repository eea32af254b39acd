package catalog

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
	"github.com/angelmondragon/smartsales/pkg/logger"
	"github.com/angelmondragon/smartsales/pkg/smartsales"
)

type catalogBackend interface {
	ListProducts(ctx context.Context) ([]smartsales.Product, error)
	GetProduct(ctx context.Context, id int64) (smartsales.Product, error)
	CreateProduct(ctx context.Context, in smartsales.ProductInput, image *smartsales.FileUpload) (smartsales.Product, error)
	UpdateProduct(ctx context.Context, id int64, in smartsales.ProductInput, image *smartsales.FileUpload) (smartsales.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]smartsales.Category, error)
	GetCategory(ctx context.Context, id int64) (smartsales.Category, error)
	CreateCategory(ctx context.Context, in smartsales.CatalogEntryInput) (smartsales.Category, error)
	UpdateCategory(ctx context.Context, id int64, in smartsales.CatalogEntryInput) (smartsales.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListBrands(ctx context.Context) ([]smartsales.Brand, error)
	GetBrand(ctx context.Context, id int64) (smartsales.Brand, error)
	CreateBrand(ctx context.Context, in smartsales.CatalogEntryInput) (smartsales.Brand, error)
	UpdateBrand(ctx context.Context, id int64, in smartsales.CatalogEntryInput) (smartsales.Brand, error)
	DeleteBrand(ctx context.Context, id int64) error

	ListWarranties(ctx context.Context) ([]smartsales.Warranty, error)
	GetWarranty(ctx context.Context, id int64) (smartsales.Warranty, error)
	CreateWarranty(ctx context.Context, in smartsales.WarrantyInput) (smartsales.Warranty, error)
	UpdateWarranty(ctx context.Context, id int64, in smartsales.WarrantyInput) (smartsales.Warranty, error)
	DeleteWarranty(ctx context.Context, id int64) error
}

// Service exposes the storefront catalog and its administration.
type Service struct {
	backend catalogBackend
	logg    *logger.Logger
}

// NewService constructs the catalog service.
func NewService(backend catalogBackend, logg *logger.Logger) (*Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("catalog backend required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{backend: backend, logg: logg}, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]smartsales.Product, error) {
	return nonNil(s.backend.ListProducts(ctx))
}

func (s *Service) GetProduct(ctx context.Context, id int64) (smartsales.Product, error) {
	if id <= 0 {
		return smartsales.Product{}, invalidID("product")
	}
	return s.backend.GetProduct(ctx, id)
}

// CreateProduct requires name, price and stock; the image is optional.
func (s *Service) CreateProduct(ctx context.Context, in smartsales.ProductInput, image *smartsales.FileUpload) (smartsales.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return smartsales.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if in.Price == nil || in.Stock == nil {
		return smartsales.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product price and stock are required")
	}
	if err := validateProduct(in); err != nil {
		return smartsales.Product{}, err
	}
	product, err := s.backend.CreateProduct(ctx, in, image)
	if err != nil {
		return smartsales.Product{}, err
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", product.ID), "product created")
	return product, nil
}

// UpdateProduct sends only the fields that are set.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in smartsales.ProductInput, image *smartsales.FileUpload) (smartsales.Product, error) {
	if id <= 0 {
		return smartsales.Product{}, invalidID("product")
	}
	if err := validateProduct(in); err != nil {
		return smartsales.Product{}, err
	}
	return s.backend.UpdateProduct(ctx, id, in, image)
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalidID("product")
	}
	return s.backend.DeleteProduct(ctx, id)
}

func validateProduct(in smartsales.ProductInput) error {
	if in.Price != nil && in.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]smartsales.Category, error) {
	return nonNil(s.backend.ListCategories(ctx))
}

func (s *Service) GetCategory(ctx context.Context, id int64) (smartsales.Category, error) {
	if id <= 0 {
		return smartsales.Category{}, invalidID("category")
	}
	return s.backend.GetCategory(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, in smartsales.CatalogEntryInput) (smartsales.Category, error) {
	if err := requireName(in); err != nil {
		return smartsales.Category{}, err
	}
	return s.backend.CreateCategory(ctx, in)
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, in smartsales.CatalogEntryInput) (smartsales.Category, error) {
	if id <= 0 {
		return smartsales.Category{}, invalidID("category")
	}
	return s.backend.UpdateCategory(ctx, id, in)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalidID("category")
	}
	return s.backend.DeleteCategory(ctx, id)
}

func (s *Service) ListBrands(ctx context.Context) ([]smartsales.Brand, error) {
	return nonNil(s.backend.ListBrands(ctx))
}

func (s *Service) GetBrand(ctx context.Context, id int64) (smartsales.Brand, error) {
	if id <= 0 {
		return smartsales.Brand{}, invalidID("brand")
	}
	return s.backend.GetBrand(ctx, id)
}

func (s *Service) CreateBrand(ctx context.Context, in smartsales.CatalogEntryInput) (smartsales.Brand, error) {
	if err := requireName(in); err != nil {
		return smartsales.Brand{}, err
	}
	return s.backend.CreateBrand(ctx, in)
}

func (s *Service) UpdateBrand(ctx context.Context, id int64, in smartsales.CatalogEntryInput) (smartsales.Brand, error) {
	if id <= 0 {
		return smartsales.Brand{}, invalidID("brand")
	}
	return s.backend.UpdateBrand(ctx, id, in)
}

func (s *Service) DeleteBrand(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalidID("brand")
	}
	return s.backend.DeleteBrand(ctx, id)
}

func (s *Service) ListWarranties(ctx context.Context) ([]smartsales.Warranty, error) {
	return nonNil(s.backend.ListWarranties(ctx))
}

func (s *Service) GetWarranty(ctx context.Context, id int64) (smartsales.Warranty, error) {
	if id <= 0 {
		return smartsales.Warranty{}, invalidID("warranty")
	}
	return s.backend.GetWarranty(ctx, id)
}

// CreateWarranty requires a positive coverage in months and the covering brand.
func (s *Service) CreateWarranty(ctx context.Context, in smartsales.WarrantyInput) (smartsales.Warranty, error) {
	if in.Coverage <= 0 {
		return smartsales.Warranty{}, pkgerrors.New(pkgerrors.CodeValidation, "coverage must be positive")
	}
	if in.BrandID <= 0 {
		return smartsales.Warranty{}, pkgerrors.New(pkgerrors.CodeValidation, "brand is required")
	}
	return s.backend.CreateWarranty(ctx, in)
}

func (s *Service) UpdateWarranty(ctx context.Context, id int64, in smartsales.WarrantyInput) (smartsales.Warranty, error) {
	if id <= 0 {
		return smartsales.Warranty{}, invalidID("warranty")
	}
	if in.Coverage < 0 {
		return smartsales.Warranty{}, pkgerrors.New(pkgerrors.CodeValidation, "coverage must be positive")
	}
	return s.backend.UpdateWarranty(ctx, id, in)
}

func (s *Service) DeleteWarranty(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalidID("warranty")
	}
	return s.backend.DeleteWarranty(ctx, id)
}

func requireName(in smartsales.CatalogEntryInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	return nil
}

func nonNil[T any](items []T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func invalidID(kind string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid %s id", kind))
}
