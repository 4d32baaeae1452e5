package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-sectionform/pkg/schema"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalid marks documents that do not satisfy their contract.
var ErrInvalid = errors.New("validation: document does not match contract")

const resourceName = "file:///section.json"

// SchemaIssue represents a validation error with optional location metadata.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// SchemaValidationResult captures validation outcomes.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// Err returns nil for valid results and an *Error otherwise.
func (r SchemaValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Issues: append([]SchemaIssue(nil), r.Issues...)}
}

// Error wraps the issues of a failed validation.
type Error struct {
	Issues []SchemaIssue
}

func (e *Error) Error() string {
	if len(e.Issues) == 0 {
		return ErrInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Field
		if location == "" {
			location = "#"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error { return ErrInvalid }

// Issues extracts validation issues from an error.
func Issues(err error) []SchemaIssue {
	if err == nil {
		return nil
	}
	var validationErr *Error
	if errors.As(err, &validationErr) {
		return validationErr.Issues
	}
	return []SchemaIssue{{Message: err.Error()}}
}

// Checker validates a document against one set of constraints.
type Checker interface {
	Validate(value any) SchemaValidationResult
}

// CheckFunc adapts a function reporting issues to a Checker.
type CheckFunc func(value any) []SchemaIssue

// Validate implements Checker.
func (f CheckFunc) Validate(value any) SchemaValidationResult {
	issues := f(value)
	return SchemaValidationResult{Valid: len(issues) == 0, Issues: issues}
}

// All runs every non-nil checker and merges their issues.
func All(checkers ...Checker) Checker {
	return CheckFunc(func(value any) []SchemaIssue {
		var issues []SchemaIssue
		for _, checker := range checkers {
			if checker == nil {
				continue
			}
			if result := checker.Validate(value); !result.Valid {
				issues = append(issues, result.Issues...)
			}
		}
		return issues
	})
}

// Validator validates documents against one compiled JSON Schema.
type Validator struct {
	document map[string]any
	compiled *jsonschema.Schema
}

// NewValidator derives the JSON Schema for node and compiles it.
func NewValidator(node *schema.Node) (*Validator, error) {
	if node == nil {
		return nil, errors.New("validation: nil node")
	}
	document := JSONSchema(node)
	document["$schema"] = "https://json-schema.org/draft/2020-12/schema"
	return compileDocument(document, "")
}

// FromDocument compiles an authored draft 2020-12 document. A non-empty
// pointer such as "/$defs/hero" selects the subschema to validate against.
func FromDocument(document map[string]any, pointer string) (*Validator, error) {
	if document == nil {
		return nil, errors.New("validation: nil schema document")
	}
	return compileDocument(document, pointer)
}

func compileDocument(document map[string]any, pointer string) (*Validator, error) {
	encoded, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("validation: encode schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(resourceName, bytes.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("validation: add schema: %w", err)
	}
	location := resourceName
	if pointer = strings.TrimPrefix(strings.TrimSpace(pointer), "#"); pointer != "" {
		location += "#" + pointer
	}
	compiled, err := compiler.Compile(location)
	if err != nil {
		return nil, fmt.Errorf("validation: compile schema: %w", err)
	}
	return &Validator{document: document, compiled: compiled}, nil
}

// Schema returns a copy of the derived JSON Schema document.
func (v *Validator) Schema() map[string]any {
	out, _ := cloneJSON(v.document).(map[string]any)
	return out
}

// Validate checks value. Go-native values (ints, typed slices, structs) are
// accepted; they are converted to their JSON form first.
func (v *Validator) Validate(value any) SchemaValidationResult {
	instance, err := toJSONValue(value)
	if err != nil {
		return SchemaValidationResult{Issues: []SchemaIssue{{Message: err.Error()}}}
	}
	if err := v.compiled.Validate(instance); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return SchemaValidationResult{Issues: collectValidationIssues(validationErr)}
		}
		return SchemaValidationResult{Issues: []SchemaIssue{{Message: strings.TrimSpace(err.Error())}}}
	}
	return SchemaValidationResult{Valid: true}
}

// JSONSchema renders node as a draft 2020-12 schema fragment. Non-optional
// object fields are required; nullable nodes also accept null; unknown nodes
// accept anything.
func JSONSchema(node *schema.Node) map[string]any {
	if node == nil {
		return map[string]any{}
	}
	out := map[string]any{}
	switch node.Kind {
	case schema.KindObject:
		properties := make(map[string]any, len(node.Fields))
		required := make([]string, 0, len(node.Fields))
		for _, field := range node.Fields {
			properties[field.Name] = JSONSchema(field.Node)
			if field.Node == nil || !field.Node.Optional {
				required = append(required, field.Name)
			}
		}
		out["type"] = typeFor("object", node.Nullable)
		out["properties"] = properties
		if len(required) > 0 {
			out["required"] = required
		}
	case schema.KindArray:
		out["type"] = typeFor("array", node.Nullable)
		out["items"] = JSONSchema(node.Element)
	case schema.KindString:
		out["type"] = typeFor("string", node.Nullable)
	case schema.KindNumber:
		out["type"] = typeFor("number", node.Nullable)
	case schema.KindBoolean:
		out["type"] = typeFor("boolean", node.Nullable)
	}
	if node.Description != "" {
		out["description"] = node.Description
	}
	return out
}

func typeFor(name string, nullable bool) any {
	if nullable {
		return []any{name, "null"}
	}
	return name
}

func toJSONValue(value any) (any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("validation: encode document: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var out any
	if err := decoder.Decode(&out); err != nil {
		return nil, fmt.Errorf("validation: decode document: %w", err)
	}
	return out, nil
}

func cloneJSON(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = cloneJSON(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = cloneJSON(v)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}

func collectValidationIssues(err *jsonschema.ValidationError) []SchemaIssue {
	issues := []SchemaIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			location := strings.TrimSpace(node.InstanceLocation)
			issues = append(issues, SchemaIssue{
				Path:    location,
				Field:   fieldPathFromPointer(location),
				Message: strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}

// fieldPathFromPointer converts /images/0/alt into images[0].alt.
func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}
	path := schema.Path{}
	for _, part := range strings.Split(trimmed, "/") {
		segment := strings.ReplaceAll(part, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		if idx, err := strconv.Atoi(segment); err == nil && idx >= 0 {
			path = path.At(idx)
			continue
		}
		path = path.Child(segment)
	}
	return path.String()
}
