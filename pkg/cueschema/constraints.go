package cueschema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/goliatone/go-sectionform/pkg/validation"
)

// constraints unifies documents with the definition and requires a concrete
// result, so bounds, patterns and disjunctions are enforced by CUE itself.
func constraints(def cue.Value) validation.Checker {
	var mu sync.Mutex
	return validation.CheckFunc(func(value any) []validation.SchemaIssue {
		encoded, err := json.Marshal(value)
		if err != nil {
			return []validation.SchemaIssue{{Message: err.Error()}}
		}

		// A cue.Context is not safe for concurrent use.
		mu.Lock()
		defer mu.Unlock()

		// Compiling the JSON text keeps 3 an int, where Encode(float64(3))
		// would produce a float that int fields reject.
		doc := def.Context().CompileBytes(encoded)
		if err := doc.Err(); err != nil {
			return []validation.SchemaIssue{{Message: err.Error()}}
		}
		if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
			return cueIssues(err)
		}
		return nil
	})
}

func cueIssues(err error) []validation.SchemaIssue {
	var issues []validation.SchemaIssue
	for _, e := range cueerrors.Errors(err) {
		segments := e.Path()
		for len(segments) > 0 && strings.HasPrefix(segments[0], "#") {
			segments = segments[1:]
		}
		format, args := e.Msg()
		issues = append(issues, validation.SchemaIssue{
			Path:    "/" + strings.Join(segments, "/"),
			Field:   fieldPath(segments),
			Message: fmt.Sprintf(format, args...),
		})
	}
	if len(issues) == 0 {
		issues = append(issues, validation.SchemaIssue{Message: err.Error()})
	}
	return issues
}

// fieldPath renders ["images","0","alt"] as images[0].alt.
func fieldPath(segments []string) string {
	var b strings.Builder
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
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
