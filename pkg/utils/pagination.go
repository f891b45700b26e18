package utils

// Pagination описывает положение страницы в выдаче апстрима
type Pagination struct {
	Total      int `json:"total"`      // Общее количество элементов
	Page       int `json:"page"`       // Номер страницы (начиная с 1)
	PageSize   int `json:"pageSize"`   // Размер страницы
	TotalPages int `json:"totalPages"` // Общее количество страниц
}

// TotalPages возвращает ceil(total / pageSize), 0 для непозитивного размера страницы
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Consistent проверяет инвариант totalPages == ceil(total / pageSize)
func (p Pagination) Consistent() bool {
	if p.PageSize <= 0 {
		return true
	}
	return p.TotalPages == TotalPages(p.Total, p.PageSize)
}

// HasNext есть ли следующая страница
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrev есть ли предыдущая страница
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// Offset возвращает смещение первого элемента страницы
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
