// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/wikithat/internal/models"
)

// ErrorCode is the API error code for rejected request payloads.
const ErrorCode = "VALIDATION_ERROR"

// FieldProblem describes one failed constraint. Field uses the json name
// when the struct field has one.
type FieldProblem struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

// RequestValidationError collects every FieldProblem of one payload.
type RequestValidationError struct {
	problems []FieldProblem
}

// Errors returns the individual problems in struct field order.
func (e *RequestValidationError) Errors() []FieldProblem {
	return e.problems
}

func (e *RequestValidationError) Error() string {
	if len(e.problems) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.problems))
	for i, p := range e.problems {
		parts[i] = p.Message
	}
	return strings.Join(parts, "; ")
}

// APIError is the VALIDATION_ERROR body. It is kept free of api package
// types so api can import validation.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError renders the problems for an error response. A single problem
// becomes its own message with field and tag details; several are joined
// as "field: message" and listed under details.fields.
func (e *RequestValidationError) ToAPIError() *APIError {
	out := &APIError{Code: ErrorCode, Message: "Validation failed"}

	switch len(e.problems) {
	case 0:
	case 1:
		p := e.problems[0]
		out.Message = p.Message
		out.Details = map[string]interface{}{"field": p.Field, "tag": p.Tag}
	default:
		listed := make([]map[string]interface{}, 0, len(e.problems))
		var msg strings.Builder
		for i, p := range e.problems {
			if i > 0 {
				msg.WriteString("; ")
			}
			fmt.Fprintf(&msg, "%s: %s", p.Field, p.Message)
			listed = append(listed, map[string]interface{}{
				"field":   p.Field,
				"tag":     p.Tag,
				"message": p.Message,
			})
		}
		out.Message = msg.String()
		out.Details = map[string]interface{}{"fields": listed}
	}
	return out
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the shared validator with the slug and source tags
// registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		// RegisterValidation only errors on an empty tag or nil func.
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return ValidateSlug(fl.Field().String())
		})
		_ = v.RegisterValidation("source", func(fl validator.FieldLevel) bool {
			return models.Source(strings.ToLower(fl.Field().String())).Valid()
		})
		validate = v
	})
	return validate
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

// ValidateStruct checks s against its validate tags. It returns nil when s
// is valid.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{problems: []FieldProblem{{
			Field:   "unknown",
			Tag:     "unknown",
			Message: err.Error(),
		}}}
	}

	problems := make([]FieldProblem, len(fieldErrs))
	for i, fe := range fieldErrs {
		problems[i] = FieldProblem{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: describe(fe),
		}
	}
	return &RequestValidationError{problems: problems}
}

func describe(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "slug":
		return field + " may only contain letters, digits, spaces, hyphens and underscores (max 200)"
	case "source":
		return field + " must be one of: " + strings.Join(sourceNames(), ", ")
	case "url":
		return field + " must be a valid URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unitOf(fe.Kind()))
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unitOf(fe.Kind()))
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func unitOf(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	default:
		return ""
	}
}

func sourceNames() []string {
	return []string{string(models.SourceWikipedia), string(models.SourceGrokipedia)}
}
