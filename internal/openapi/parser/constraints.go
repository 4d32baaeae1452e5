package parser

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-sectionform/pkg/validation"
)

// constraints validates documents with kin-openapi against the component
// schema, so enum, pattern, bounds and nullable keep their OpenAPI meaning.
func constraints(src *openapi3.Schema) validation.Checker {
	return validation.CheckFunc(func(value any) []validation.SchemaIssue {
		instance, err := plainJSON(value)
		if err != nil {
			return []validation.SchemaIssue{{Message: err.Error()}}
		}
		err = src.VisitJSON(instance, openapi3.MultiErrors())
		if err == nil {
			return nil
		}
		return schemaIssues(err)
	})
}

func plainJSON(value any) (any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func schemaIssues(err error) []validation.SchemaIssue {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var issues []validation.SchemaIssue
		for _, item := range multi {
			issues = append(issues, schemaIssues(item)...)
		}
		return issues
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		pointer := schemaErr.JSONPointer()
		return []validation.SchemaIssue{{
			Path:    "/" + strings.Join(pointer, "/"),
			Field:   fieldPath(pointer),
			Message: schemaErr.Reason,
		}}
	}
	return []validation.SchemaIssue{{Message: err.Error()}}
}

// fieldPath renders ["plans","0","price"] as plans[0].price.
func fieldPath(pointer []string) string {
	var b strings.Builder
	for _, segment := range pointer {
		if isIndex(segment) {
			b.WriteString("[" + segment + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(segment)
	}
	return b.String()
}

func isIndex(segment string) bool {
	if segment == "" {
		return false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
