package models

import (
	"time"

	"github.com/athebyme/gomarket-storefront/pkg/utils"
)

// DefaultCurrency валюта по умолчанию для новых товаров
const DefaultCurrency = "USD"

// Product представляет товар, принадлежащий удаленному каталогу
type Product struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Images        []string   `json:"images"`
	Category      Category   `json:"category"`
	Price         string     `json:"price"`
	Currency      string     `json:"currency"`
	StockQuantity int        `json:"stockQuantity"`
	Slug          string     `json:"slug"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	DeletedAt     *time.Time `json:"deletedAt"`
}

// Deleted сообщает, что товар помечен как удаленный и не должен показываться
func (p *Product) Deleted() bool {
	return p.DeletedAt != nil
}

// FormattedPrice цена с валютой для отображения
func (p *Product) FormattedPrice() string {
	return FormatPrice(p.Price, p.Currency)
}

// ProductWithRelated товар вместе со списком похожих товаров
type ProductWithRelated struct {
	Product
	RelatedProducts []Product `json:"relatedProducts"`
}

// ProductPage страница выдачи в том виде, в котором ее вернул апстрим
type ProductPage struct {
	Items []Product `json:"items"`
	utils.Pagination
}

// WithoutDeleted возвращает элементы без мягко удаленных товаров, порядок сохраняется
func WithoutDeleted(items []Product) []Product {
	kept := make([]Product, 0, len(items))
	for _, item := range items {
		if !item.Deleted() {
			kept = append(kept, item)
		}
	}
	return kept
}

// CreateProductInput данные для создания товара
type CreateProductInput struct {
	Title         string   `json:"title" validate:"required,min=1,max=255"`
	Description   string   `json:"description" validate:"required,min=1"`
	Images        []string `json:"images" validate:"required,min=1,dive,required,url"`
	Category      Category `json:"category" validate:"required,category"`
	Price         string   `json:"price" validate:"required,price"`
	Currency      string   `json:"currency" validate:"required,len=3"`
	StockQuantity int      `json:"stockQuantity" validate:"min=0"`
}

// ApplyDefaults заполняет необязательные поля значениями по умолчанию
func (in *CreateProductInput) ApplyDefaults() {
	if in.Currency == "" {
		in.Currency = DefaultCurrency
	}
}

// UpdateProductInput частичное обновление товара, ID обязателен
type UpdateProductInput struct {
	ID            string    `json:"id" validate:"required"`
	Title         *string   `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description   *string   `json:"description,omitempty" validate:"omitempty,min=1"`
	Images        []string  `json:"images,omitempty" validate:"omitempty,min=1,dive,required,url"`
	Category      *Category `json:"category,omitempty" validate:"omitempty,category"`
	Price         *string   `json:"price,omitempty" validate:"omitempty,price"`
	Currency      *string   `json:"currency,omitempty" validate:"omitempty,len=3"`
	StockQuantity *int      `json:"stockQuantity,omitempty" validate:"omitempty,min=0"`
}

// DeleteResult результат удаления товара
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DefaultDeleteMessage сообщение, если апстрим не прислал свое
const DefaultDeleteMessage = "Product deleted successfully"
