package services

import (
	"context"

	"github.com/athebyme/gomarket-storefront/internal/adapters/messaging"
	"github.com/athebyme/gomarket-storefront/internal/domain/models"
)

// ProductGateway операции удаленного API каталога
type ProductGateway interface {
	ListProducts(ctx context.Context, filter models.NormalizedFilter) (*models.ProductPage, error)
	GetProduct(ctx context.Context, slug string) (*models.Product, error)
	GetProductWithRelated(ctx context.Context, slug string) (*models.ProductWithRelated, error)
	CreateProduct(ctx context.Context, input models.CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, slug string, input models.UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, slug string) (*models.DeleteResult, error)
}

// EventPublisher рассылает события об изменении товаров другим экземплярам
type EventPublisher interface {
	Publish(ctx context.Context, eventType messaging.EventType, slug, previousSlug string) error
	Source() string
}

// ProductServiceInterface операции витрины над каталогом
type ProductServiceInterface interface {
	List(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetWithRelated(ctx context.Context, slug string) (*models.ProductWithRelated, error)
	Create(ctx context.Context, input models.CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, slug string, input models.UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, slug string) (*models.DeleteResult, error)
	HandleProductEvent(ctx context.Context, evt messaging.ProductEvent) error
}
