// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/aisfleet/internal/geo"
	"github.com/tomtom215/aisfleet/internal/models"
)

// TagNullIsland is reported for a (0,0) position fix.
const TagNullIsland = "not_null_island"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed rule.
type FieldError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the JSON name of the field that failed.
func (e *FieldError) Field() string { return e.field }

// Tag returns the rule that failed, e.g. "latitude" or TagNullIsland.
func (e *FieldError) Tag() string { return e.tag }

// Param returns the rule parameter ("360" for "lt=360").
func (e *FieldError) Param() string { return e.param }

// Value returns the offending value.
func (e *FieldError) Value() interface{} { return e.value }

func (e *FieldError) Error() string { return e.message }

// RecordError collects every rule a record failed.
type RecordError struct {
	errors []FieldError
}

// Errors returns the individual failures.
func (re *RecordError) Errors() []FieldError { return re.errors }

// Reason returns the first failed tag, for use as a metric label.
func (re *RecordError) Reason() string {
	if len(re.errors) == 0 {
		return "invalid"
	}
	return re.errors[0].tag
}

func (re *RecordError) Error() string {
	if len(re.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(re.errors))
	for i := range re.errors {
		messages = append(messages, re.errors[i].Error())
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the process-wide validator with the record rules
// registered. Safe for concurrent use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		validate.RegisterStructValidation(positionStructLevel, models.PositionReport{})
	})
	return validate
}

// positionStructLevel rejects the (0,0) fix that the per-field latitude
// and longitude rules would otherwise let through.
func positionStructLevel(sl validator.StructLevel) {
	p, ok := sl.Current().Interface().(models.PositionReport)
	if !ok {
		return
	}
	if geo.IsNullIsland(p.Latitude, p.Longitude) {
		sl.ReportError(p.Latitude, "lat", "Latitude", TagNullIsland, "")
	}
}

// ValidatePosition checks a position report before it reaches the filter.
func ValidatePosition(p *models.PositionReport) *RecordError {
	return validateStruct(p)
}

// ValidateVesselUpdate checks a static-data update before it is stored.
func ValidateVesselUpdate(u *models.VesselUpdate) *RecordError {
	return validateStruct(u)
}

func validateStruct(s interface{}) *RecordError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RecordError{errors: []FieldError{{field: "unknown", tag: "unknown", message: err.Error()}}}
	}

	fieldErrors := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fieldErrors[i] = FieldError{
			field:   fe.Field(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: translateError(fe),
		}
	}
	return &RecordError{errors: fieldErrors}
}

var errorMessageTemplates = map[string]string{
	"required":    "%s is required",
	"latitude":    "%s must be a valid latitude (-90 to 90)",
	"longitude":   "%s must be a valid longitude (-180 to 180)",
	TagNullIsland: "%s: position (0,0) is a receiver placeholder, not a fix",
}

var errorMessageWithParam = map[string]string{
	"gte": "%s must be greater than or equal to %s",
	"lte": "%s must be less than or equal to %s",
	"gt":  "%s must be greater than %s",
	"lt":  "%s must be less than %s",
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()
	if template, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(template, field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
