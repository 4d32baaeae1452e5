package widgets

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/schema"
)

// Default buckets assigned to media and link widgets without a declared one.
const (
	DefaultMediaBucket = "media"
	DefaultLinkBucket  = "pages"
)

// Matcher decides whether a rule applies to the input.
type Matcher func(in Input) bool

type rule struct {
	name     string
	widget   Widget
	priority int
	match    Matcher
	order    int
}

// Classification is the widget and group chosen for a field.
type Classification struct {
	Widget      Widget
	Group       Group
	Bucket      string
	Source      Source
	Rule        string
	Diagnostics diagnostics.List
}

// Option configures a Registry.
type Option func(*Registry)

// WithMediaBucket sets the bucket given to media widgets without one.
func WithMediaBucket(bucket string) Option {
	return func(r *Registry) {
		if trimmed := strings.TrimSpace(bucket); trimmed != "" {
			r.mediaBucket = trimmed
		}
	}
}

// WithLinkBucket sets the bucket given to link widgets without one.
func WithLinkBucket(bucket string) Option {
	return func(r *Registry) {
		if trimmed := strings.TrimSpace(bucket); trimmed != "" {
			r.linkBucket = trimmed
		}
	}
}

// Registry classifies fields with priority ordered rules. Objects always map
// to nested groups, compatible explicit hints come next, then the rules.
// Higher priority wins; ties fall back to registration order.
type Registry struct {
	mu          sync.RWMutex
	rules       []rule
	mediaBucket string
	linkBucket  string
}

// NewRegistry constructs a registry with the built-in rules registered.
func NewRegistry(opts ...Option) *Registry {
	reg := &Registry{
		mediaBucket: DefaultMediaBucket,
		linkBucket:  DefaultLinkBucket,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(reg)
		}
	}
	reg.registerBuiltins()
	return reg
}

var defaultRegistry = NewRegistry()

// Default returns the shared registry holding only the built-in rules.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a rule resolving to widget when matcher accepts the input.
// Rules registered with a widget incompatible with the input kind are
// skipped during classification.
func (r *Registry) Register(name string, widget Widget, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || widget == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		widget:   widget,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Classify picks the widget and group for the supplied path and node. It is
// a pure function of its arguments and the registered rules.
func Classify(path schema.Path, node *schema.Node, bucket string) (Widget, Group) {
	c := defaultRegistry.Classify(InputFor(path, node, bucket))
	return c.Widget, c.Group
}

// Classify resolves the classification for in.
func (r *Registry) Classify(in Input) Classification {
	if r == nil {
		r = defaultRegistry
	}
	var c Classification

	switch {
	case in.Kind == schema.KindObject:
		c.Widget, c.Source = WidgetGroup, SourceStructure
	case in.Hint.Widget != "":
		hinted := Widget(strings.TrimSpace(in.Hint.Widget))
		if Compatible(hinted, in.Kind, in.ElementKind) {
			c.Widget, c.Source = hinted, SourceHint
			break
		}
		c.Diagnostics = append(c.Diagnostics, diagnostics.Diagnostic{
			Code:     diagnostics.ClassificationFallback,
			Severity: diagnostics.SeverityWarn,
			Path:     in.Path.String(),
			Message:  fmt.Sprintf("widget hint %q does not fit a %s field", hinted, in.Kind),
			Expected: in.Kind.String(),
			Observed: string(hinted),
		})
	}

	if c.Widget == "" {
		if name, widget, ok := r.match(in); ok {
			c.Widget, c.Source, c.Rule = widget, SourceRule, name
		}
	}
	if c.Widget == "" {
		c.Widget, c.Source = WidgetText, SourceFallback
		c.Diagnostics = append(c.Diagnostics, diagnostics.Diagnostic{
			Code:     diagnostics.ClassificationFallback,
			Severity: diagnostics.SeverityWarn,
			Path:     in.Path.String(),
			Message:  "no widget rule matched, rendering as plain text",
			Observed: in.Kind.String(),
		})
	}

	c.Group = classifyGroup(in)
	c.Bucket = r.bucketFor(c.Widget, in)
	return c
}

func (r *Registry) match(in Input) (string, Widget, bool) {
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if !Compatible(entry.widget, in.Kind, in.ElementKind) {
			continue
		}
		if entry.match(in) {
			return entry.name, entry.widget, true
		}
	}
	return "", "", false
}

func (r *Registry) bucketFor(widget Widget, in Input) string {
	if bucket := strings.TrimSpace(in.Hint.Bucket); bucket != "" {
		return bucket
	}
	if bucket := strings.TrimSpace(in.Bucket); bucket != "" {
		return bucket
	}
	switch widget {
	case WidgetImage, WidgetIcon, WidgetImageList:
		return r.mediaBucket
	case WidgetLink:
		return r.linkBucket
	}
	return ""
}

func classifyGroup(in Input) Group {
	if hinted := Group(strings.TrimSpace(in.Hint.Group)); hinted.Valid() {
		return hinted
	}
	name := in.Name()
	if in.Kind == schema.KindBoolean {
		return GroupAdvanced
	}
	for _, prefix := range advancedPrefixes {
		if hasPrefixFold(name, prefix) {
			return GroupAdvanced
		}
	}
	if containsAny(name, ctaKeywords) {
		return GroupCTA
	}
	if containsAny(name, mediaKeywords) {
		return GroupMedia
	}
	return GroupContent
}

func (r *Registry) registerBuiltins() {
	isString := func(in Input) bool { return in.Kind == schema.KindString }
	isArray := func(in Input) bool { return in.Kind == schema.KindArray }

	r.Register("array.image-list", WidgetImageList, 90, func(in Input) bool {
		return isArray(in) && in.ElementKind == schema.KindString && containsAny(in.Path.Names(), imageListKeywords)
	})
	r.Register("array.repeater", WidgetRepeater, 85, func(in Input) bool {
		return isArray(in) && in.ElementKind == schema.KindObject
	})
	r.Register("array.list", WidgetList, 80, isArray)

	r.Register("string.image", WidgetImage, 70, func(in Input) bool {
		return isString(in) && isImagePath(in.Path.Names())
	})
	r.Register("string.icon", WidgetIcon, 65, func(in Input) bool {
		return isString(in) && isIconPath(in.Path.Names())
	})
	r.Register("string.link", WidgetLink, 60, func(in Input) bool {
		return isString(in) && isLinkName(in.Name())
	})
	r.Register("string.textarea", WidgetTextarea, 55, func(in Input) bool {
		return isString(in) && isLongTextPath(in.Path.Names())
	})
	r.Register("string.text", WidgetText, 10, isString)

	r.Register("number", WidgetNumber, 50, func(in Input) bool {
		return in.Kind == schema.KindNumber
	})
	r.Register("boolean", WidgetToggle, 50, func(in Input) bool {
		return in.Kind == schema.KindBoolean
	})
}
