package models

// Category категория товара витрины
type Category string

const (
	CategoryClothing    Category = "Clothing"
	CategoryShoes       Category = "Shoes"
	CategoryElectronics Category = "Electronics"
	CategoryAccessories Category = "Accessories"
	CategoryHomeGarden  Category = "Home & Garden"
	CategorySports      Category = "Sports"
	CategoryBooks       Category = "Books"
	CategoryToys        Category = "Toys"
)

// Categories возвращает фиксированный список категорий в порядке отображения
func Categories() []Category {
	return []Category{
		CategoryClothing,
		CategoryShoes,
		CategoryElectronics,
		CategoryAccessories,
		CategoryHomeGarden,
		CategorySports,
		CategoryBooks,
		CategoryToys,
	}
}

// Valid проверяет, что категория входит в фиксированный список
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}
