package common

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/styleai/internal/skintone"
)

type GenericEchoValidator struct {
	Validator *validator.Validate
	once      sync.Once
}

func (gv *GenericEchoValidator) Validate(i interface{}) error {
	gv.once.Do(func() {
		if gv.Validator == nil {
			gv.Validator = NewValidator()
		}
	})
	if err := gv.Validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("received invalid request body: %v", err))
	}
	return nil
}

// NewValidator returns a validator that reports json field names and knows
// the "skintone" and "undertone" tags. Both tags accept an empty value.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("skintone", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		_, ok := skintone.ParseSkinTone(value)
		return value == "" || ok
	})
	_ = v.RegisterValidation("undertone", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		_, ok := skintone.ParseUndertone(value)
		return value == "" || ok
	})
	return v
}
