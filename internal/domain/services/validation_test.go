package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/gomarket-storefront/internal/domain/models"
	"github.com/athebyme/gomarket-storefront/pkg/errors"
)

func TestPayloadValidator(t *testing.T) {
	v := NewPayloadValidator()

	in := validCreateInput()
	in.ApplyDefaults()
	assert.NoError(t, v.Validate(in))

	cases := map[string]func(*models.CreateProductInput){
		"title":         func(in *models.CreateProductInput) { in.Title = "" },
		"images[0]":     func(in *models.CreateProductInput) { in.Images = []string{"not a url"} },
		"currency":      func(in *models.CreateProductInput) { in.Currency = "US" },
		"stockQuantity": func(in *models.CreateProductInput) { in.StockQuantity = -1 },
		"price":         func(in *models.CreateProductInput) { in.Price = "-1" },
	}

	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			bad := validCreateInput()
			bad.ApplyDefaults()
			mutate(&bad)

			err := v.Validate(bad)
			var re *errors.RemoteError
			require.True(t, errors.As(err, &re))
			details := re.Details.(map[string]string)
			assert.Contains(t, details, field)
		})
	}
}

func TestPayloadValidatorUpdateAcceptsPartial(t *testing.T) {
	v := NewPayloadValidator()
	cat := models.CategoryBooks
	assert.NoError(t, v.Validate(models.UpdateProductInput{ID: "1", Category: &cat}))

	unknown := models.Category("Food")
	assert.Error(t, v.Validate(models.UpdateProductInput{ID: "1", Category: &unknown}))
}
