package diagnostics

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sectionform/pkg/interfaces"
)

func TestListFilterAndHas(t *testing.T) {
	list := List{
		{Code: DataShapeMismatch, Path: "images"},
		{Code: ClassificationFallback, Path: "legacy"},
		{Code: DataShapeMismatch, Path: "images[0].image"},
	}

	if !list.Has(ClassificationFallback) {
		t.Fatalf("expected ClassificationFallback to be present")
	}
	if list.Has(PersistenceFailure) {
		t.Fatalf("did not expect PersistenceFailure")
	}
	got := list.Filter(DataShapeMismatch).Paths()
	if diff := cmp.Diff([]string{"images", "images[0].image"}, got); diff != "" {
		t.Fatalf("filtered paths mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectorForwardsAndCopies(t *testing.T) {
	var forwarded []Diagnostic
	collector := NewCollector(SinkFunc(func(d Diagnostic) {
		forwarded = append(forwarded, d)
	}))

	collector.Report(Diagnostic{Code: DataShapeMismatch, Path: "title"})
	items := collector.List()
	items[0].Path = "mutated"

	if collector.List()[0].Path != "title" {
		t.Fatalf("collector list should be a copy")
	}
	if len(forwarded) != 1 {
		t.Fatalf("expected forwarded diagnostic, got %d", len(forwarded))
	}

	collector.Reset()
	if len(collector.List()) != 0 {
		t.Fatalf("expected reset to drop diagnostics")
	}
}

func TestLoggerSinkMapsSeverity(t *testing.T) {
	rec := &levelRecorder{}
	sink := LoggerSink(rec)

	sink.Report(Diagnostic{Severity: SeverityError, Message: "e"})
	sink.Report(Diagnostic{Severity: SeverityWarn, Message: "w"})
	sink.Report(Diagnostic{Severity: SeverityInfo, Message: "i"})

	if diff := cmp.Diff([]string{"error", "warn", "debug"}, rec.levels); diff != "" {
		t.Fatalf("levels mismatch (-want +got):\n%s", diff)
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Code: DataShapeMismatch, Path: "cta.text", Message: "expected string"}
	if got := d.String(); got != "data_shape_mismatch at cta.text: expected string" {
		t.Fatalf("unexpected string %q", got)
	}
}

type levelRecorder struct {
	levels []string
}

func (r *levelRecorder) Trace(string, ...any) { r.levels = append(r.levels, "trace") }
func (r *levelRecorder) Debug(string, ...any) { r.levels = append(r.levels, "debug") }
func (r *levelRecorder) Info(string, ...any)  { r.levels = append(r.levels, "info") }
func (r *levelRecorder) Warn(string, ...any)  { r.levels = append(r.levels, "warn") }
func (r *levelRecorder) Error(string, ...any) { r.levels = append(r.levels, "error") }
func (r *levelRecorder) Fatal(string, ...any) { r.levels = append(r.levels, "fatal") }
func (r *levelRecorder) WithContext(context.Context) interfaces.Logger {
	return r
}
