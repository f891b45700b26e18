package codec

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/athebyme/gomarket-storefront/internal/domain/models"
)

func mustParse(t *testing.T, q string) url.Values {
	t.Helper()
	v, err := url.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse %q: %v", q, err)
	}
	return v
}

func TestApplyPatchResetsPageAndKeepsForeignParams(t *testing.T) {
	in := mustParse(t, "page=4&utm_source=mail&search=old")
	search := "new"

	out := ApplyPatch(in, FilterPatch{Search: &search})

	assert.Equal(t, "search=new&utm_source=mail", out.Encode())
	assert.Equal(t, "4", in.Get("page"), "input must not be mutated")
}

func TestApplyPatchRemovesEmptyAndInvalidValues(t *testing.T) {
	in := mustParse(t, "search=x&minPrice=5&maxPrice=10&sortBy=newest&pageSize=12")
	empty := ""
	negative := -1.0
	badSort := models.SortBy("nope")
	zero := 0

	out := ApplyPatch(in, FilterPatch{
		Search:   &empty,
		MinPrice: &negative,
		SortBy:   &badSort,
		PageSize: &zero,
	})

	assert.Equal(t, "maxPrice=10", out.Encode())
}

func TestApplyPatchReplacesCategories(t *testing.T) {
	in := mustParse(t, "category=Books&category=Toys")
	next := []string{"Shoes", "Clothing", "Shoes"}

	out := ApplyPatch(in, FilterPatch{Category: &next})
	assert.Equal(t, []string{"Clothing", "Shoes"}, out["category"])

	none := []string{}
	out = ApplyPatch(out, FilterPatch{Category: &none})
	assert.Empty(t, out["category"])
}

func TestToggleCategory(t *testing.T) {
	in := mustParse(t, "category=Books&page=2")

	added := ToggleCategory(in, "Toys")
	assert.Equal(t, "category=Books&category=Toys", added.Encode())

	removed := ToggleCategory(added, "Books")
	assert.Equal(t, "category=Toys", removed.Encode())
}

func TestSetSearchAndPage(t *testing.T) {
	out := SetSearch(mustParse(t, "page=3"), "  boots ")
	assert.Equal(t, "search=boots", out.Encode())

	out = SetPage(out, 2)
	assert.Equal(t, "page=2&search=boots", out.Encode())

	out = SetPage(out, 0)
	assert.Equal(t, "search=boots", out.Encode())
}
