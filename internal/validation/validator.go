// Package validation checks request bodies with go-playground/validator and reports
// failures keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"winelabel/models"
)

// Error lists the fields that failed validation.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+" "+e.Fields[key])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns a single-field validation error.
func Field(name, message string) *Error {
	return &Error{Fields: map[string]string{name: message}}
}

// Validator wraps go-playground/validator with the domain vocabularies registered.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for the label domain.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Empty values are accepted; callers apply defaults.
	vocabulary := map[string]func(string) bool{
		"product_type":        func(s string) bool { _, ok := models.CanonicalProductType(s); return ok },
		"sugar_content":       func(s string) bool { _, ok := models.CanonicalSugarContent(s); return ok },
		"ingredient_category": func(s string) bool { _, ok := models.CanonicalIngredientCategory(s); return ok },
		"operator_type":       func(s string) bool { _, ok := models.CanonicalOperatorType(s); return ok },
		"allergen":            models.ValidAllergen,
	}
	for tag, valid := range vocabulary {
		valid := valid
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			return strings.TrimSpace(value) == "" || valid(value)
		})
	}

	return &Validator{v: v}
}

// Validate validates a struct and returns *Error on failure.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fields[fieldPath(e)] = friendlyMessage(e)
	}
	return &Error{Fields: fields}
}

// fieldPath drops the struct name from the namespace: "ProductInput.nutrition.fat"
// becomes "nutrition.fat".
func fieldPath(e validator.FieldError) string {
	namespace := e.Namespace()
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return e.Field()
}

// ruleOf returns the tag and parameter that failed. For "eq=|len=4", an empty value or
// a rule, the rule is reported.
func ruleOf(e validator.FieldError) (string, string) {
	tag := e.Tag()
	i := strings.LastIndex(tag, "|")
	if i < 0 {
		return tag, e.Param()
	}
	name, param, _ := strings.Cut(tag[i+1:], "=")
	return name, param
}

func friendlyMessage(e validator.FieldError) string {
	tag, param := ruleOf(e)
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", param)
	case "max":
		return fmt.Sprintf("must not exceed %s characters", param)
	case "len":
		return fmt.Sprintf("must be exactly %s characters", param)
	case "numeric":
		return "must contain digits only"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "gte":
		return "must be greater than or equal to " + param
	case "product_type":
		return "must be one of: " + strings.Join(models.ProductTypes(), ", ")
	case "sugar_content":
		return "must be one of: " + strings.Join(models.SugarContents(), ", ")
	case "ingredient_category":
		return "must be one of: " + strings.Join(models.IngredientCategories(), ", ")
	case "operator_type":
		return "must be one of: " + strings.Join(models.OperatorTypes(), ", ")
	case "allergen":
		return "must be one of: " + strings.Join(models.Allergens(), ", ")
	default:
		return "is invalid"
	}
}
