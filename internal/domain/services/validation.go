package services

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/athebyme/gomarket-storefront/internal/domain/models"
	"github.com/athebyme/gomarket-storefront/pkg/errors"
)

// PayloadValidator проверяет тела create/update до обращения к апстриму
type PayloadValidator struct {
	validate *validator.Validate
}

// NewPayloadValidator регистрирует правила price и category
func NewPayloadValidator() *PayloadValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		return models.IsValidPrice(fl.Field().String())
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})

	return &PayloadValidator{validate: v}
}

// Validate возвращает RemoteError с деталями по полям или nil
func (p *PayloadValidator) Validate(payload interface{}) error {
	err := p.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.NewValidation(err.Error(), nil)
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fieldPath(fe)] = describe(fe)
	}
	return errors.NewValidation("Invalid product payload", details)
}

// fieldPath путь поля без имени корневой структуры, например images[0]
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s character(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s character(s)", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "url":
		return "must be a valid URL"
	case "price":
		return "must be a decimal with at most 2 fractional digits"
	case "category":
		return "must be one of the known categories"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
