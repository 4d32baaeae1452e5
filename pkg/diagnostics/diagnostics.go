package diagnostics

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-sectionform/pkg/interfaces"
)

// Code identifies the error class a diagnostic belongs to.
type Code string

const (
	// SchemaResolutionFailure means no structural or tag based kind was found.
	SchemaResolutionFailure Code = "schema_resolution_failure"
	// ClassificationFallback means the classifier defaulted to a plain text widget.
	ClassificationFallback Code = "classification_fallback"
	// DataShapeMismatch means a stored value was repaired by the normalizer.
	DataShapeMismatch Code = "data_shape_mismatch"
	// SubmissionValidationFailure means the document failed its contract schema.
	SubmissionValidationFailure Code = "submission_validation_failure"
	// PersistenceFailure means the persistence collaborator rejected a write.
	PersistenceFailure Code = "persistence_failure"
)

// Severity grades a diagnostic.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Diagnostic describes a single repair, fallback or failure event.
type Diagnostic struct {
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	Path     string   `json:"path,omitempty"`
	Message  string   `json:"message"`
	Expected string   `json:"expected,omitempty"`
	Observed string   `json:"observed,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Path == "" {
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return fmt.Sprintf("%s at %s: %s", d.Code, d.Path, d.Message)
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

// Has reports whether any diagnostic carries the code.
func (l List) Has(code Code) bool {
	for _, d := range l {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Filter returns the diagnostics matching code, preserving order.
func (l List) Filter(code Code) List {
	var out List
	for _, d := range l {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// Paths lists the paths of every diagnostic in order.
func (l List) Paths() []string {
	out := make([]string, 0, len(l))
	for _, d := range l {
		out = append(out, d.Path)
	}
	return out
}

// Sink receives diagnostics as they are produced.
type Sink interface {
	Report(Diagnostic)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Diagnostic)

// Report implements Sink.
func (f SinkFunc) Report(d Diagnostic) {
	if f != nil {
		f(d)
	}
}

// Discard returns a sink that drops every diagnostic.
func Discard() Sink {
	return SinkFunc(func(Diagnostic) {})
}

// Forward reports every diagnostic in list to sink. Nil sinks are ignored.
func Forward(sink Sink, list List) {
	if sink == nil {
		return
	}
	for _, d := range list {
		sink.Report(d)
	}
}

// Collector accumulates diagnostics and optionally forwards them.
type Collector struct {
	mu    sync.Mutex
	items List
	next  Sink
}

// NewCollector returns a collector forwarding to next when it is non-nil.
func NewCollector(next Sink) *Collector {
	return &Collector{next: next}
}

// Report implements Sink.
func (c *Collector) Report(d Diagnostic) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = append(c.items, d)
	next := c.next
	c.mu.Unlock()
	if next != nil {
		next.Report(d)
	}
}

// List returns a copy of the collected diagnostics.
func (c *Collector) List() List {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(List(nil), c.items...)
}

// Reset drops collected diagnostics.
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// LoggerSink forwards diagnostics to logger using the severity as level.
func LoggerSink(logger interfaces.Logger) Sink {
	if logger == nil {
		return Discard()
	}
	return SinkFunc(func(d Diagnostic) {
		args := []any{"code", string(d.Code), "path", d.Path}
		if d.Expected != "" {
			args = append(args, "expected", d.Expected)
		}
		if d.Observed != "" {
			args = append(args, "observed", d.Observed)
		}
		switch d.Severity {
		case SeverityError:
			logger.Error(d.Message, args...)
		case SeverityWarn:
			logger.Warn(d.Message, args...)
		default:
			logger.Debug(d.Message, args...)
		}
	})
}
