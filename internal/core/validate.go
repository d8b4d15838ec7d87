package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Only the sign matters for the gte=0 and gt=0 tags in use.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return float64(d.Sign())
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// classify maps the first failing field onto a sentinel error.
func classify(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch {
	case fe.Field() == "Name":
		return fmt.Errorf("%w: %q", ErrInvalidItemName, fe.Value())
	case fe.Tag() == "gte":
		return fmt.Errorf("%w: %s", ErrNegativeAmount, fe.Field())
	case fe.Tag() == "gt":
		return fmt.Errorf("%w: %s", ErrInvalidRate, fe.Field())
	}
	return err
}

// describe renders validation errors as "Field tag" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+" "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}
