package models

// SortBy ключ сортировки выдачи
type SortBy string

const (
	SortPriceAsc  SortBy = "price_asc"
	SortPriceDesc SortBy = "price_desc"
	SortNewest    SortBy = "newest"
	SortOldest    SortBy = "oldest"
)

// SortOption пара значение/подпись для выпадающего списка сортировки
type SortOption struct {
	Value SortBy `json:"value"`
	Label string `json:"label"`
}

// SortOptions варианты сортировки в порядке отображения
var SortOptions = []SortOption{
	{Value: SortPriceAsc, Label: "Price: Low to High"},
	{Value: SortPriceDesc, Label: "Price: High to Low"},
	{Value: SortNewest, Label: "Newest"},
	{Value: SortOldest, Label: "Oldest"},
}

// Valid проверяет, что ключ сортировки известен
func (s SortBy) Valid() bool {
	for _, opt := range SortOptions {
		if opt.Value == s {
			return true
		}
	}
	return false
}
