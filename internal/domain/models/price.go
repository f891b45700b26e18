package models

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var priceRe = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// IsValidPrice проверяет десятичную строку цены: не больше двух знаков после точки
func IsValidPrice(price string) bool {
	if !priceRe.MatchString(price) {
		return false
	}
	_, err := decimal.NewFromString(price)
	return err == nil
}

// FormatPrice форматирует цену с двумя знаками после точки, например "USD12.50".
// Нераспознанная цена выводится как есть.
func FormatPrice(price, currency string) string {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return currency + price
	}
	return currency + d.StringFixed(2)
}
