package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopapi/internal/models"
	"shopapi/internal/repositories"
)

const productRequiredMsg = "Please provide all required fields: name, price, category, stock"

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, productErr(err)
	}
	return product, nil
}

// CreateProduct validates req and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if err := validateStruct(req, productRequiredMsg); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:     req.Name,
		Price:    *req.Price,
		Category: req.Category,
		Stock:    *req.Stock,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct replaces the fields present in update.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		update.Name = &name
	}
	if update.Category != nil {
		category := strings.TrimSpace(*update.Category)
		update.Category = &category
	}
	if err := validateStruct(update, productRequiredMsg); err != nil {
		return nil, err
	}
	if update.Empty() {
		return s.GetProductByID(ctx, id)
	}

	product, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, productErr(err)
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID. Orders referencing it are left in place.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, productErr(err)
	}
	return product, nil
}

// productErr maps a store miss to ErrProductNotFound and passes anything else through.
func productErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrProductNotFound, err)
	}
	return err
}
