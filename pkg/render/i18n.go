package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-sectionform/pkg/form"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// translator is configured.
var ErrMissingTranslator = errors.New("render: translator is not configured")

// Translator resolves message keys for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides the text used when a key has no
// translation. params carries a {"default": fallback} map as its first entry
// when a fallback exists.
type MissingTranslationHandler func(locale, key string, params []any, err error) string

func missingTranslationDefault(_ string, key string, params []any, _ error) string {
	if len(params) > 0 {
		if m, ok := params[0].(map[string]any); ok {
			if fallback, ok := m["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}

// LocalizeForm translates the form in place. Keys are derived from the
// contract type and control path:
//
//	<type>.label
//	<type>.<field names>.label | .help | .placeholder
//	groups.<group>
//
// Index segments are dropped, so every element of "plans" shares
// "pricing.plans.name.label". Without a translator the form is left as is.
func LocalizeForm(f *form.Form, opts RenderOptions) {
	if f == nil || opts.Translator == nil {
		return
	}
	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	tr := func(key, fallback string) string {
		return translate(opts.Locale, key, fallback, opts.Translator, onMissing)
	}

	f.Label = tr(f.TypeID+".label", f.Label)
	localizeControl(f.Root, f.TypeID, tr)
}

func localizeControl(c *form.Control, typeID string, tr func(key, fallback string) string) {
	if c == nil || c.ReadOnly {
		return
	}
	if names := c.Path.Names(); names != "" {
		prefix := typeID + "." + names
		c.Label = tr(prefix+".label", c.Label)
		if c.Help != "" {
			c.Help = tr(prefix+".help", c.Help)
		}
		if c.Placeholder != "" {
			c.Placeholder = tr(prefix+".placeholder", c.Placeholder)
		}
	}
	for i := range c.Groups {
		section := &c.Groups[i]
		section.Label = tr("groups."+string(section.Group), section.Label)
		for _, child := range section.Controls {
			localizeControl(child, typeID, tr)
		}
	}
	for _, item := range c.Items {
		localizeControl(item.Control, typeID, tr)
	}
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	params := []any{map[string]any{"default": fallback}}
	if t == nil {
		return onMissing(locale, key, params, ErrMissingTranslator)
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	return onMissing(locale, key, params, err)
}
