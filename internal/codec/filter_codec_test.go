package codec

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/gomarket-storefront/internal/domain/models"
)

func TestEncodeSortsCategoriesAndKeys(t *testing.T) {
	got := Encode(models.ProductFilter{Category: []string{"Shoes", "Clothing"}, Page: 2})
	assert.Equal(t, "category=Clothing&category=Shoes&page=2", got)
}

func TestEncodeOmitsAbsentFields(t *testing.T) {
	assert.Equal(t, "", Encode(models.ProductFilter{}))
	assert.Equal(t, "", Encode(models.ProductFilter{Search: "  ", Category: []string{""}, PageSize: 500}))
}

func TestEncodeNumbersInShortestForm(t *testing.T) {
	got := EncodeValues(models.ProductFilter{
		MinPrice: models.PriceBound(10),
		MaxPrice: models.PriceBound(99.99),
		PageSize: 12,
	})
	assert.Equal(t, "10", got.Get(ParamMinPrice))
	assert.Equal(t, "99.99", got.Get(ParamMaxPrice))
	assert.Equal(t, "12", got.Get(ParamPageSize))
}

func TestDecodeDropsUnparsableNumbers(t *testing.T) {
	n := Decode("minPrice=abc&maxPrice=&page=two&pageSize=1.5")
	_, ok := n.MinPrice()
	assert.False(t, ok)
	_, ok = n.MaxPrice()
	assert.False(t, ok)
	assert.Zero(t, n.Page())
	assert.Zero(t, n.PageSize())
	assert.True(t, n.IsZero())
}

func TestDecodeCollectsCategoriesAndDropsUnknownSort(t *testing.T) {
	n := Decode("?category=Toys&category=Books&category=Toys&sortBy=random&search=+lego+")
	assert.Equal(t, []string{"Books", "Toys"}, n.Categories())
	assert.Empty(t, n.SortBy())
	assert.Equal(t, "lego", n.Search())
}

func TestDecodeMalformedQueryFailsOpen(t *testing.T) {
	n := Decode("search=ok&bad=%zz&page=3")
	assert.Equal(t, "ok", n.Search())
	assert.NotPanics(t, func() { Decode("%%%") })
}

func TestRoundTrip(t *testing.T) {
	filters := []models.ProductFilter{
		{},
		{Search: "red & blue shoes"},
		{Category: []string{"Home & Garden", "Books", "Books"}},
		{MinPrice: models.PriceBound(0), MaxPrice: models.PriceBound(1234.5)},
		{MinPrice: models.PriceBound(math.Copysign(0, -1))},
		{MinPrice: models.PriceBound(0.1 + 0.2)},
		{MinPrice: models.PriceBound(-3), MaxPrice: models.PriceBound(math.Inf(1))},
		{SortBy: models.SortOldest, Page: 7, PageSize: 100},
		{SortBy: "bogus", Page: -1, PageSize: 101},
		{
			Search:   "  lamp  ",
			Category: []string{"Electronics", "Accessories"},
			MinPrice: models.PriceBound(5),
			MaxPrice: models.PriceBound(50),
			SortBy:   models.SortPriceAsc,
			Page:     2,
			PageSize: 24,
		},
	}

	for _, f := range filters {
		encoded := Encode(f)
		assert.Equal(t, f.Normalize(), Decode(encoded), "query %q", encoded)
		assert.Equal(t, f.Normalize().Key(), Decode(encoded).Key())
	}
}

func TestEncodeNormalizedMatchesEncode(t *testing.T) {
	f := models.ProductFilter{Search: "x", Page: 3}
	assert.Equal(t, Encode(f), EncodeNormalized(f.Normalize()))
}

func TestDecodeValues(t *testing.T) {
	values := url.Values{"category": {"Shoes"}, "maxPrice": {"20"}}
	n := DecodeValues(values)

	v, ok := n.MaxPrice()
	require.True(t, ok)
	assert.Equal(t, 20.0, v)
	assert.Equal(t, []string{"Shoes"}, n.Categories())
}
