package handlers

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// registerBindingValidators teaches gin's binding layer about decimal amounts
// so request DTOs can declare positivity at the edge.
func registerBindingValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterCustomTypeFunc(decimalAsFloat, decimal.Decimal{})
	_ = v.RegisterValidation("dgt0", decimalGreaterThanZero)
}

// decimalAsFloat lets the validator treat decimal.Decimal fields as numbers.
func decimalAsFloat(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func decimalGreaterThanZero(fl validator.FieldLevel) bool {
	f, ok := fl.Field().Interface().(float64)
	if !ok {
		return false
	}
	return f > 0
}
