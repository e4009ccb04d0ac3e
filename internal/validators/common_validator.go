package validators

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("rating_value", validateRatingValue)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	m := make(map[string]string, len(v))
	for _, err := range v {
		m[err.Field] = err.Message
	}
	return m
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fieldErr.Field(),
				Tag:     fieldErr.Tag(),
				Message: messageForTag(fieldErr),
			})
		}
	}

	return validationErrors
}

func messageForTag(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "this field is required"
	case "object_id":
		return "must be a valid object id"
	case "rating_value":
		return "rating must be between 1 and 5"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	default:
		return fmt.Sprintf("failed validation on %s", err.Tag())
	}
}

func validateObjectID(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case primitive.ObjectID:
		return !v.IsZero()
	case string:
		_, err := primitive.ObjectIDFromHex(v)
		return err == nil
	}
	return false
}

func validateRatingValue(fl validator.FieldLevel) bool {
	rating := fl.Field().Float()
	return rating >= 1 && rating <= 5
}
