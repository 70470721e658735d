// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"errors"
	"fmt"
	"math"
)

// ErrSchemaMismatch is returned when a structured response does not conform
// to the requested schema.
var ErrSchemaMismatch = errors.New("ai: response does not match schema")

// Schema is the subset of JSON Schema the providers accept for structured
// output: typed objects, arrays and scalars with required properties.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// Object returns an object schema with the given properties.
func Object(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: "object", Properties: properties, Required: required}
}

// String returns a string schema.
func String(description string) *Schema {
	return &Schema{Type: "string", Description: description}
}

// ArrayOf returns an array schema whose elements follow items.
func ArrayOf(items *Schema, description string) *Schema {
	return &Schema{Type: "array", Items: items, Description: description}
}

// Validate checks a decoded JSON value (as produced by encoding/json into
// an any) against the schema.
func (s *Schema) Validate(v any) error {
	return s.validate("$", v)
}

func (s *Schema) validate(path string, v any) error {
	if s == nil {
		return nil
	}

	switch s.Type {
	case "object":
		obj, ok := v.(map[string]any)
		if !ok {
			return mismatch(path, "object", v)
		}
		for _, name := range s.Required {
			if val, present := obj[name]; !present || val == nil {
				return fmt.Errorf("%w: %s.%s is required", ErrSchemaMismatch, path, name)
			}
		}
		for name, prop := range s.Properties {
			val, present := obj[name]
			if !present || val == nil {
				continue
			}
			if err := prop.validate(path+"."+name, val); err != nil {
				return err
			}
		}
	case "array":
		arr, ok := v.([]any)
		if !ok {
			return mismatch(path, "array", v)
		}
		for i, item := range arr {
			if err := s.Items.validate(fmt.Sprintf("%s[%d]", path, i), item); err != nil {
				return err
			}
		}
	case "string":
		if _, ok := v.(string); !ok {
			return mismatch(path, "string", v)
		}
	case "number":
		if _, ok := v.(float64); !ok {
			return mismatch(path, "number", v)
		}
	case "integer":
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return mismatch(path, "integer", v)
		}
	case "boolean":
		if _, ok := v.(bool); !ok {
			return mismatch(path, "boolean", v)
		}
	}
	return nil
}

func mismatch(path, want string, got any) error {
	return fmt.Errorf("%w: %s should be %s, got %T", ErrSchemaMismatch, path, want, got)
}
