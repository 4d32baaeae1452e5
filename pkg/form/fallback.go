package form

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/schema"
	"github.com/goliatone/go-sectionform/pkg/widgets"
)

// Fallback builds a read-only form for a section whose type has no
// registered contract. The stored data is shown as indented JSON.
func Fallback(typeID string, raw any) *Form {
	dump, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		dump = []byte(fmt.Sprintf("%v", raw))
	}
	d := diagnostics.Diagnostic{
		Code:     diagnostics.SchemaResolutionFailure,
		Severity: diagnostics.SeverityError,
		Message:  fmt.Sprintf("no contract registered for section type %q", typeID),
		Observed: typeID,
	}
	root := &Control{
		Path:        schema.Path{},
		Label:       "Unsupported section",
		Widget:      widgets.WidgetTextarea,
		Group:       widgets.GroupContent,
		Kind:        schema.KindUnknown,
		Value:       string(dump),
		ReadOnly:    true,
		Diagnostics: diagnostics.List{d},
	}
	return &Form{
		TypeID:      typeID,
		Label:       typeID,
		Root:        root,
		Diagnostics: diagnostics.List{d},
		ReadOnly:    true,
	}
}
