package models

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
)

// MaxPageSize максимальный размер страницы, который принимает апстрим
const MaxPageSize = 100

// ProductFilter параметры поиска, фильтрации, сортировки и пагинации выдачи.
// Нулевое значение поля означает "без ограничения", решение остается за апстримом.
type ProductFilter struct {
	Search   string
	Category []string
	MinPrice *float64
	MaxPrice *float64
	SortBy   SortBy
	Page     int
	PageSize int
}

// PriceBound возвращает указатель на границу цены для полей MinPrice/MaxPrice
func PriceBound(v float64) *float64 {
	return &v
}

// NormalizedFilter каноническая форма фильтра, используется как ключ кэша.
// Получить ее можно только через ProductFilter.Normalize.
type NormalizedFilter struct {
	f ProductFilter
}

// normalizedKey задает фиксированный порядок полей ключа кэша
type normalizedKey struct {
	Search   string   `json:"search,omitempty"`
	Category []string `json:"category,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
	SortBy   SortBy   `json:"sortBy,omitempty"`
	Page     int      `json:"page,omitempty"`
	PageSize int      `json:"pageSize,omitempty"`
}

// Normalize приводит фильтр к канонической форме: категории без пустых значений и
// дубликатов отсортированы, некорректные и пустые поля отброшены.
func (f ProductFilter) Normalize() NormalizedFilter {
	var n ProductFilter

	n.Search = strings.TrimSpace(f.Search)
	n.Category = normalizeCategories(f.Category)
	n.MinPrice = normalizePrice(f.MinPrice)
	n.MaxPrice = normalizePrice(f.MaxPrice)

	if f.SortBy.Valid() {
		n.SortBy = f.SortBy
	}
	if f.Page >= 1 {
		n.Page = f.Page
	}
	if f.PageSize >= 1 && f.PageSize <= MaxPageSize {
		n.PageSize = f.PageSize
	}

	return NormalizedFilter{f: n}
}

func normalizeCategories(in []string) []string {
	if len(in) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}

	sort.Strings(out)
	return out
}

func normalizePrice(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	if v == 0 {
		// -0 и 0 должны давать один ключ
		v = 0
	}
	return &v
}

// Filter возвращает копию нормализованного фильтра
func (n NormalizedFilter) Filter() ProductFilter {
	out := n.f
	if n.f.Category != nil {
		out.Category = append([]string(nil), n.f.Category...)
	}
	if n.f.MinPrice != nil {
		out.MinPrice = PriceBound(*n.f.MinPrice)
	}
	if n.f.MaxPrice != nil {
		out.MaxPrice = PriceBound(*n.f.MaxPrice)
	}
	return out
}

// Search строка поиска, пустая если не задана
func (n NormalizedFilter) Search() string { return n.f.Search }

// Categories отсортированные категории, nil если не заданы
func (n NormalizedFilter) Categories() []string {
	return append([]string(nil), n.f.Category...)
}

// MinPrice нижняя граница цены
func (n NormalizedFilter) MinPrice() (float64, bool) {
	if n.f.MinPrice == nil {
		return 0, false
	}
	return *n.f.MinPrice, true
}

// MaxPrice верхняя граница цены
func (n NormalizedFilter) MaxPrice() (float64, bool) {
	if n.f.MaxPrice == nil {
		return 0, false
	}
	return *n.f.MaxPrice, true
}

// SortBy ключ сортировки, пустой если не задан
func (n NormalizedFilter) SortBy() SortBy { return n.f.SortBy }

// Page номер страницы, 0 если не задан
func (n NormalizedFilter) Page() int { return n.f.Page }

// PageSize размер страницы, 0 если не задан
func (n NormalizedFilter) PageSize() int { return n.f.PageSize }

// IsZero сообщает, что в фильтре нет ни одного ограничения
func (n NormalizedFilter) IsZero() bool {
	return n.Key() == "{}"
}

// Key стабильный ключ кэша: JSON с фиксированным порядком полей без отсутствующих значений
func (n NormalizedFilter) Key() string {
	b, err := json.Marshal(normalizedKey{
		Search:   n.f.Search,
		Category: n.f.Category,
		MinPrice: n.f.MinPrice,
		MaxPrice: n.f.MaxPrice,
		SortBy:   n.f.SortBy,
		Page:     n.f.Page,
		PageSize: n.f.PageSize,
	})
	if err != nil {
		// в normalizedKey нет значений, которые json не умеет кодировать
		return "{}"
	}
	return string(b)
}

// String реализует fmt.Stringer
func (n NormalizedFilter) String() string {
	return n.Key()
}
