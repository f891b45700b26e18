package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/athebyme/gomarket-storefront/internal/codec"
	"github.com/athebyme/gomarket-storefront/internal/domain/models"
	"github.com/athebyme/gomarket-storefront/internal/domain/services"
	"github.com/athebyme/gomarket-storefront/pkg/errors"
	"github.com/athebyme/gomarket-storefront/pkg/interfaces"
)

// ProductHandler обработчик запросов для продуктов
type ProductHandler struct {
	productService services.ProductServiceInterface
	logger         interfaces.LoggerPort
}

// NewProductHandler создает новый обработчик продуктов
func NewProductHandler(productService services.ProductServiceInterface, logger interfaces.LoggerPort) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// ListProducts godoc
// @Summary List products
// @Description Search, filter, sort and paginate the catalog. The page is returned as the product API sent it.
// @Tags Products
// @Produce json
// @Param search query string false "Search term"
// @Param category query []string false "Category, repeatable" collectionFormat(multi)
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param sortBy query string false "price_asc, price_desc, newest or oldest"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} response{data=models.ProductPage}
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/products [get]
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := codec.DecodeValues(r.URL.Query())

	page, err := h.productService.List(r.Context(), filter.Filter())
	if err != nil {
		h.fail(w, r, "Ошибка получения списка продуктов", err, routeDefault)
		return
	}

	writeData(w, r, http.StatusOK, page)
}

// GetProduct godoc
// @Summary Get product by slug
// @Tags Products
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {object} response{data=models.Product}
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/products/{slug} [get]
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, "Ошибка получения продукта", err, routeLookup)
		return
	}

	writeData(w, r, http.StatusOK, product)
}

// GetProductWithRelated godoc
// @Summary Get product with related products
// @Tags Products
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {object} response{data=models.ProductWithRelated}
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/products/{slug}/related [get]
func (h *ProductHandler) GetProductWithRelated(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetWithRelated(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, "Ошибка получения похожих продуктов", err, routeLookup)
		return
	}

	writeData(w, r, http.StatusOK, product)
}

// CreateProduct godoc
// @Summary Create product
// @Tags Products
// @Accept json
// @Produce json
// @Param product body models.CreateProductInput true "Product"
// @Success 201 {object} response{data=models.Product}
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/products [post]
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input models.CreateProductInput
	if err := decodeBody(r, &input); err != nil {
		h.fail(w, r, "Некорректное тело запроса", err, routeDefault)
		return
	}

	product, err := h.productService.Create(r.Context(), input)
	if err != nil {
		h.fail(w, r, "Ошибка создания продукта", err, routeDefault)
		return
	}

	writeData(w, r, http.StatusCreated, product)
}

// UpdateProduct godoc
// @Summary Update product
// @Tags Products
// @Accept json
// @Produce json
// @Param slug path string true "Product slug"
// @Param product body models.UpdateProductInput true "Changed fields"
// @Success 200 {object} response{data=models.Product}
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/products/{slug} [put]
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var input models.UpdateProductInput
	if err := decodeBody(r, &input); err != nil {
		h.fail(w, r, "Некорректное тело запроса", err, routeDefault)
		return
	}

	product, err := h.productService.Update(r.Context(), chi.URLParam(r, "slug"), input)
	if err != nil {
		h.fail(w, r, "Ошибка обновления продукта", err, routeDefault)
		return
	}

	writeData(w, r, http.StatusOK, product)
}

// DeleteProduct godoc
// @Summary Delete product
// @Tags Products
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {object} models.DeleteResult
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/products/{slug} [delete]
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	result, err := h.productService.Delete(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, "Ошибка удаления продукта", err, routeDefault)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: result.Success, Message: result.Message})
}

func (h *ProductHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error, rt route) {
	status := statusFor(err, rt)
	fields := []interface{}{
		interfaces.LogField{Key: "error", Value: err.Error()},
		interfaces.LogField{Key: "status", Value: status},
		interfaces.LogField{Key: "path", Value: r.URL.Path},
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorWithContext(r.Context(), msg, fields...)
	} else {
		h.logger.WarnWithContext(r.Context(), msg, fields...)
	}
	writeError(w, r, err, rt)
}

// decodeBody читает JSON тело. Ошибка разбора возвращается как ValidationError.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.NewValidation("Invalid JSON body", map[string]string{"body": err.Error()})
	}
	return nil
}
