// Package codec переводит фильтр выдачи в query string и обратно.
package codec

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/athebyme/gomarket-storefront/internal/domain/models"
)

// Имена параметров query string
const (
	ParamSearch   = "search"
	ParamCategory = "category"
	ParamMinPrice = "minPrice"
	ParamMaxPrice = "maxPrice"
	ParamSortBy   = "sortBy"
	ParamPage     = "page"
	ParamPageSize = "pageSize"
)

// EncodeValues нормализует фильтр и возвращает только заданные параметры.
// Категории повторяются отдельным параметром на каждое значение.
func EncodeValues(f models.ProductFilter) url.Values {
	return encodeNormalized(f.Normalize())
}

// Encode возвращает query string без ведущего "?", ключи отсортированы
func Encode(f models.ProductFilter) string {
	return EncodeValues(f).Encode()
}

// EncodeNormalized кодирует уже нормализованный фильтр
func EncodeNormalized(n models.NormalizedFilter) string {
	return encodeNormalized(n).Encode()
}

func encodeNormalized(n models.NormalizedFilter) url.Values {
	values := url.Values{}

	if s := n.Search(); s != "" {
		values.Set(ParamSearch, s)
	}
	for _, c := range n.Categories() {
		values.Add(ParamCategory, c)
	}
	if v, ok := n.MinPrice(); ok {
		values.Set(ParamMinPrice, formatNumber(v))
	}
	if v, ok := n.MaxPrice(); ok {
		values.Set(ParamMaxPrice, formatNumber(v))
	}
	if s := n.SortBy(); s != "" {
		values.Set(ParamSortBy, string(s))
	}
	if p := n.Page(); p > 0 {
		values.Set(ParamPage, strconv.Itoa(p))
	}
	if p := n.PageSize(); p > 0 {
		values.Set(ParamPageSize, strconv.Itoa(p))
	}

	return values
}

// DecodeValues собирает фильтр из параметров. Не падает: нераспознанные
// числа и неизвестная сортировка считаются отсутствующими.
func DecodeValues(values url.Values) models.NormalizedFilter {
	f := models.ProductFilter{
		Search:   values.Get(ParamSearch),
		Category: values[ParamCategory],
		MinPrice: parsePrice(values.Get(ParamMinPrice)),
		MaxPrice: parsePrice(values.Get(ParamMaxPrice)),
		SortBy:   models.SortBy(values.Get(ParamSortBy)),
		Page:     parseInt(values.Get(ParamPage)),
		PageSize: parseInt(values.Get(ParamPageSize)),
	}
	return f.Normalize()
}

// Decode разбирает query string (допускается ведущий "?").
// Битая строка дает фильтр из того, что удалось разобрать.
func Decode(query string) models.NormalizedFilter {
	values, _ := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if values == nil {
		values = url.Values{}
	}
	return DecodeValues(values)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parsePrice(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
