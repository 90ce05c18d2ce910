// GeoPresence - Real-Time Presence Sharing and Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geopresence

// Package validation provides struct validation using go-playground/validator
// v10 through a thread-safe singleton instance. Field errors are returned in
// struct declaration order so callers can map the first failure to a
// field-specific message.
package validation

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// FieldError describes one failed field.
type FieldError struct {
	// Field is the struct namespace of the failing field, without the root
	// struct name (e.g. "Acceleration.X").
	Field string

	// Tag is the validation tag that failed (e.g. "required").
	Tag string
}

// ValidateStruct validates s and returns its field errors in declaration
// order, or nil when the struct is valid.
func ValidateStruct(s interface{}) []FieldError {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: programming error, not user input.
		panic(err)
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field: trimRootNamespace(fe.StructNamespace()),
			Tag:   fe.Tag(),
		})
	}
	return fields
}

// trimRootNamespace strips the leading "StructName." from a namespace.
func trimRootNamespace(ns string) string {
	for i := 0; i < len(ns); i++ {
		if ns[i] == '.' {
			return ns[i+1:]
		}
	}
	return ns
}
