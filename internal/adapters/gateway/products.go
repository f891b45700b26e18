package gateway

import (
	"context"
	"net/http"

	"github.com/athebyme/gomarket-storefront/internal/codec"
	"github.com/athebyme/gomarket-storefront/internal/domain/models"
	"github.com/athebyme/gomarket-storefront/pkg/errors"
)

const (
	productsPath = "/products"
	productPath  = "/products/{slug}"
	relatedPath  = "/products/{slug}/related"
)

// ListProducts GET /products с параметрами фильтра.
// Страница возвращается как есть, только без мягко удаленных товаров.
func (c *Client) ListProducts(ctx context.Context, filter models.NormalizedFilter) (*models.ProductPage, error) {
	env, err := c.send(ctx, request{
		method: http.MethodGet,
		path:   productsPath,
		query:  codec.EncodeNormalized(filter),
	})
	if err != nil {
		return nil, err
	}

	page, err := decodeData[models.ProductPage](env)
	if err != nil {
		return nil, err
	}
	page.Items = models.WithoutDeleted(page.Items)
	return &page, nil
}

// GetProduct GET /products/{slug}
func (c *Client) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	if err := requireSlug(slug); err != nil {
		return nil, err
	}

	env, err := c.send(ctx, request{method: http.MethodGet, path: productPath, slug: slug})
	if err != nil {
		return nil, err
	}

	product, err := decodeData[models.Product](env)
	if err != nil {
		return nil, err
	}
	if product.Deleted() {
		return nil, errors.NewUpstream(http.StatusNotFound, "Product not found", nil)
	}
	return &product, nil
}

// GetProductWithRelated GET /products/{slug}/related
func (c *Client) GetProductWithRelated(ctx context.Context, slug string) (*models.ProductWithRelated, error) {
	if err := requireSlug(slug); err != nil {
		return nil, err
	}

	env, err := c.send(ctx, request{method: http.MethodGet, path: relatedPath, slug: slug})
	if err != nil {
		return nil, err
	}

	product, err := decodeData[models.ProductWithRelated](env)
	if err != nil {
		return nil, err
	}
	if product.Deleted() {
		return nil, errors.NewUpstream(http.StatusNotFound, "Product not found", nil)
	}
	product.RelatedProducts = models.WithoutDeleted(product.RelatedProducts)
	return &product, nil
}

// CreateProduct POST /products
func (c *Client) CreateProduct(ctx context.Context, input models.CreateProductInput) (*models.Product, error) {
	env, err := c.send(ctx, request{method: http.MethodPost, path: productsPath, body: input})
	if err != nil {
		return nil, err
	}

	product, err := decodeData[models.Product](env)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct PUT /products/{slug}
func (c *Client) UpdateProduct(ctx context.Context, slug string, input models.UpdateProductInput) (*models.Product, error) {
	if err := requireSlug(slug); err != nil {
		return nil, err
	}

	env, err := c.send(ctx, request{method: http.MethodPut, path: productPath, slug: slug, body: input})
	if err != nil {
		return nil, err
	}

	product, err := decodeData[models.Product](env)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct DELETE /products/{slug}. Данных в ответе не ожидается.
func (c *Client) DeleteProduct(ctx context.Context, slug string) (*models.DeleteResult, error) {
	if err := requireSlug(slug); err != nil {
		return nil, err
	}

	env, err := c.send(ctx, request{method: http.MethodDelete, path: productPath, slug: slug})
	if err != nil {
		return nil, err
	}

	result := &models.DeleteResult{Success: true, Message: env.Message}
	if result.Message == "" {
		result.Message = models.DefaultDeleteMessage
	}
	return result, nil
}

func requireSlug(slug string) error {
	if slug == "" {
		return errors.NewValidation("slug is required", map[string]string{"slug": "required"})
	}
	return nil
}
