package codec

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/athebyme/gomarket-storefront/internal/domain/models"
)

// FilterPatch изменение состояния фильтра в адресной строке.
// nil поле не трогает параметр, пустое или некорректное значение удаляет его.
type FilterPatch struct {
	Search   *string
	Category *[]string
	MinPrice *float64
	MaxPrice *float64
	SortBy   *models.SortBy
	PageSize *int
}

// ApplyPatch возвращает копию параметров с примененным изменением.
// Посторонние параметры сохраняются, page всегда сбрасывается.
func ApplyPatch(values url.Values, patch FilterPatch) url.Values {
	out := cloneValues(values)

	if patch.Search != nil {
		setParam(out, ParamSearch, strings.TrimSpace(*patch.Search))
	}
	if patch.Category != nil {
		setArrayParam(out, ParamCategory, models.ProductFilter{Category: *patch.Category}.Normalize().Categories())
	}
	if patch.MinPrice != nil {
		v, ok := models.ProductFilter{MinPrice: patch.MinPrice}.Normalize().MinPrice()
		setParam(out, ParamMinPrice, numberOrEmpty(v, ok))
	}
	if patch.MaxPrice != nil {
		v, ok := models.ProductFilter{MaxPrice: patch.MaxPrice}.Normalize().MaxPrice()
		setParam(out, ParamMaxPrice, numberOrEmpty(v, ok))
	}
	if patch.SortBy != nil {
		setParam(out, ParamSortBy, string(models.ProductFilter{SortBy: *patch.SortBy}.Normalize().SortBy()))
	}
	if patch.PageSize != nil {
		size := models.ProductFilter{PageSize: *patch.PageSize}.Normalize().PageSize()
		setParam(out, ParamPageSize, intOrEmpty(size))
	}

	out.Del(ParamPage)
	return out
}

// ToggleCategory добавляет категорию, если ее нет, иначе убирает
func ToggleCategory(values url.Values, category string) url.Values {
	category = strings.TrimSpace(category)
	current := values[ParamCategory]

	next := make([]string, 0, len(current)+1)
	found := false
	for _, c := range current {
		if c == category {
			found = true
			continue
		}
		next = append(next, c)
	}
	if !found && category != "" {
		next = append(next, category)
	}

	return ApplyPatch(values, FilterPatch{Category: &next})
}

// SetSearch задает строку поиска, пустая строка убирает параметр
func SetSearch(values url.Values, term string) url.Values {
	return ApplyPatch(values, FilterPatch{Search: &term})
}

// SetPage переход на страницу без изменения остальных параметров
func SetPage(values url.Values, page int) url.Values {
	out := cloneValues(values)
	setParam(out, ParamPage, intOrEmpty(models.ProductFilter{Page: page}.Normalize().Page()))
	return out
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, v := range values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func setParam(values url.Values, key, value string) {
	if value == "" {
		values.Del(key)
		return
	}
	values.Set(key, value)
}

func setArrayParam(values url.Values, key string, items []string) {
	values.Del(key)
	for _, item := range items {
		values.Add(key, item)
	}
}

func numberOrEmpty(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return formatNumber(v)
}

func intOrEmpty(v int) string {
	if v <= 0 {
		return ""
	}
	return strconv.Itoa(v)
}
