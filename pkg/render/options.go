package render

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form.
type RenderOptions struct {
	// Action is the URL the rendered form submits to.
	Action string
	// MutationsURL receives structural edits (add, remove, move, toggle)
	// posted by the runtime script. Empty disables them client-side.
	MutationsURL string
	// Method overrides the submit method. Renderers translate PUT/PATCH into
	// a POST plus a hidden _method input.
	Method string
	// Errors surfaces server-side validation feedback keyed by control path
	// ("plans[0].name"). Use MapErrorPayload or FieldErrors to build it.
	Errors map[string][]string
	// FormErrors are messages that do not belong to a single control.
	FormErrors []string
	// Hidden adds hidden inputs such as CSRF tokens.
	Hidden []HiddenField
	// Subset limits rendering to some groups or paths.
	Subset FieldSubset
	// Theme carries resolved theme tokens and partial overrides.
	Theme *ThemeConfig
	// Locale, Translator and OnMissing drive LocalizeForm.
	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
}

// ThemeConfig is the renderer-facing view of a resolved theme selection.
type ThemeConfig struct {
	Name     string
	Variant  string
	Tokens   map[string]string
	CSSVars  map[string]string
	Partials map[string]string
}
