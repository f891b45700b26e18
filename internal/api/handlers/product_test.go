package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/gomarket-storefront/internal/adapters/logger"
	"github.com/athebyme/gomarket-storefront/internal/adapters/messaging"
	"github.com/athebyme/gomarket-storefront/internal/domain/models"
	"github.com/athebyme/gomarket-storefront/pkg/errors"
	"github.com/athebyme/gomarket-storefront/pkg/utils"
)

type fakeService struct {
	lastFilter models.ProductFilter
	lastSlug   string
	lastCreate models.CreateProductInput
	err        error
}

func (f *fakeService) List(_ context.Context, filter models.ProductFilter) (*models.ProductPage, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return &models.ProductPage{
		Items:      []models.Product{{Slug: "lamp"}},
		Pagination: utils.Pagination{Total: 1, Page: 1, PageSize: 10, TotalPages: 1},
	}, nil
}

func (f *fakeService) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	f.lastSlug = slug
	if f.err != nil {
		return nil, f.err
	}
	return &models.Product{Slug: slug}, nil
}

func (f *fakeService) GetWithRelated(_ context.Context, slug string) (*models.ProductWithRelated, error) {
	f.lastSlug = slug
	if f.err != nil {
		return nil, f.err
	}
	return &models.ProductWithRelated{
		Product:         models.Product{Slug: slug},
		RelatedProducts: []models.Product{{Slug: "other"}},
	}, nil
}

func (f *fakeService) Create(_ context.Context, input models.CreateProductInput) (*models.Product, error) {
	f.lastCreate = input
	if f.err != nil {
		return nil, f.err
	}
	return &models.Product{Slug: "new", Title: input.Title}, nil
}

func (f *fakeService) Update(_ context.Context, slug string, input models.UpdateProductInput) (*models.Product, error) {
	f.lastSlug = slug
	if f.err != nil {
		return nil, f.err
	}
	return &models.Product{ID: input.ID, Slug: slug}, nil
}

func (f *fakeService) Delete(_ context.Context, slug string) (*models.DeleteResult, error) {
	f.lastSlug = slug
	if f.err != nil {
		return nil, f.err
	}
	return &models.DeleteResult{Success: true, Message: models.DefaultDeleteMessage}, nil
}

func (f *fakeService) HandleProductEvent(context.Context, messaging.ProductEvent) error {
	return nil
}

func newTestRouter(svc *fakeService) http.Handler {
	h := NewProductHandler(svc, logger.NewNop())

	r := chi.NewRouter()
	r.Get("/api/products", h.ListProducts)
	r.Post("/api/products", h.CreateProduct)
	r.Get("/api/products/{slug}", h.GetProduct)
	r.Put("/api/products/{slug}", h.UpdateProduct)
	r.Delete("/api/products/{slug}", h.DeleteProduct)
	r.Get("/api/products/{slug}/related", h.GetProductWithRelated)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestListProductsDecodesQuery(t *testing.T) {
	svc := &fakeService{}
	rec, body := do(t, newTestRouter(svc), http.MethodGet,
		"/api/products?search=lamp&category=Books&category=Toys&minPrice=5&sortBy=newest&page=2&pageSize=bad", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	assert.Equal(t, "lamp", svc.lastFilter.Search)
	assert.Equal(t, []string{"Books", "Toys"}, svc.lastFilter.Category)
	require.NotNil(t, svc.lastFilter.MinPrice)
	assert.Equal(t, 5.0, *svc.lastFilter.MinPrice)
	assert.Nil(t, svc.lastFilter.MaxPrice)
	assert.Equal(t, models.SortNewest, svc.lastFilter.SortBy)
	assert.Equal(t, 2, svc.lastFilter.Page)
	assert.Zero(t, svc.lastFilter.PageSize)

	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["total"])
	assert.Len(t, data["items"], 1)
}

func TestGetProduct(t *testing.T) {
	svc := &fakeService{}
	rec, body := do(t, newTestRouter(svc), http.MethodGet, "/api/products/red-lamp", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "red-lamp", svc.lastSlug)
	assert.Equal(t, "red-lamp", body["data"].(map[string]interface{})["slug"])
}

func TestGetProductNotFound(t *testing.T) {
	svc := &fakeService{err: errors.NewUpstream(http.StatusNotFound, "Product not found", nil)}
	rec, body := do(t, newTestRouter(svc), http.MethodGet, "/api/products/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "UpstreamError", body["error"])
	assert.Equal(t, "Product not found", body["message"])
	assert.EqualValues(t, 404, body["statusCode"])
}

func TestGetProductWithRelated(t *testing.T) {
	svc := &fakeService{}
	rec, body := do(t, newTestRouter(svc), http.MethodGet, "/api/products/main/related", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "main", data["slug"])
	assert.Len(t, data["relatedProducts"], 1)
}

func TestCreateProduct(t *testing.T) {
	svc := &fakeService{}
	rec, body := do(t, newTestRouter(svc), http.MethodPost, "/api/products", `{"title":"Lamp","price":"10.00"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Lamp", svc.lastCreate.Title)
	assert.Equal(t, "new", body["data"].(map[string]interface{})["slug"])
}

func TestCreateProductInvalidJSON(t *testing.T) {
	svc := &fakeService{}
	rec, body := do(t, newTestRouter(svc), http.MethodPost, "/api/products", `{"title":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ValidationError", body["error"])
	assert.Empty(t, svc.lastCreate.Title)
}

func TestCreateProductValidationFailure(t *testing.T) {
	svc := &fakeService{err: errors.NewValidation("Invalid product payload", map[string]string{"price": "invalid"})}
	rec, body := do(t, newTestRouter(svc), http.MethodPost, "/api/products", `{"title":"x"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, map[string]interface{}{"price": "invalid"}, body["details"])
}

func TestUpdateProduct(t *testing.T) {
	svc := &fakeService{}
	rec, body := do(t, newTestRouter(svc), http.MethodPut, "/api/products/lamp", `{"id":"42","title":"New"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "lamp", svc.lastSlug)
	assert.Equal(t, "42", body["data"].(map[string]interface{})["id"])
}

func TestDeleteProduct(t *testing.T) {
	svc := &fakeService{}
	rec, body := do(t, newTestRouter(svc), http.MethodDelete, "/api/products/lamp", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, models.DefaultDeleteMessage, body["message"])
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		path string
		want int
	}{
		{"upstream on list", errors.NewUpstream(503, "down", nil), "/api/products", http.StatusBadRequest},
		{"upstream 404 on list", errors.NewUpstream(404, "nope", nil), "/api/products", http.StatusBadRequest},
		{"network", errors.NewNetwork(nil), "/api/products", http.StatusInternalServerError},
		{"timeout", errors.NewTimeout("Request timed out after 10ms", nil), "/api/products/x", http.StatusInternalServerError},
		{"foreign error", context.Canceled, "/api/products/x", http.StatusInternalServerError},
		{"upstream 404 on related", errors.NewUpstream(404, "nope", nil), "/api/products/x/related", http.StatusNotFound},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := &fakeService{err: c.err}
			rec, body := do(t, newTestRouter(svc), http.MethodGet, c.path, "")
			assert.Equal(t, c.want, rec.Code)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestForeignErrorIsNotLeaked(t *testing.T) {
	svc := &fakeService{err: context.DeadlineExceeded}
	_, body := do(t, newTestRouter(svc), http.MethodGet, "/api/products", "")

	assert.Equal(t, "InternalError", body["error"])
	assert.Equal(t, "Internal server error", body["message"])
}
