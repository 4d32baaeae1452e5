package uischema

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// iconNamePattern matches icon set references such as "images" or
// "lucide:help-circle".
var iconNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*(:[a-z0-9][a-z0-9_-]*)?$`)

var svgIconPolicy = sync.OnceValue(func() *bluemonday.Policy {
	policy := bluemonday.StrictPolicy()
	policy.AllowElements("svg", "g", "path", "circle", "rect", "line", "polyline", "polygon", "ellipse", "title")
	policy.AllowAttrs("xmlns", "viewBox", "width", "height", "fill", "stroke", "aria-hidden", "role").OnElements("svg")

	shapes := []string{"g", "path", "circle", "rect", "line", "polyline", "polygon", "ellipse"}
	policy.AllowAttrs(
		"d", "cx", "cy", "r", "rx", "ry", "x", "y", "x1", "y1", "x2", "y2", "points",
		"fill", "stroke", "stroke-width", "stroke-linecap", "stroke-linejoin",
	).OnElements(shapes...)
	return policy
})

// normalizeIcon accepts either an icon name or inline SVG markup. Names are
// lower-cased and checked; markup is stripped down to plain SVG shapes.
func normalizeIcon(raw string) (string, error) {
	icon := strings.TrimSpace(raw)
	switch {
	case icon == "":
		return "", nil
	case strings.HasPrefix(icon, "<"):
		cleaned := strings.TrimSpace(svgIconPolicy().Sanitize(icon))
		if !strings.HasPrefix(cleaned, "<svg") {
			return "", fmt.Errorf("icon markup must be an svg element")
		}
		return cleaned, nil
	}
	name := strings.ToLower(icon)
	if !iconNamePattern.MatchString(name) {
		return "", fmt.Errorf("invalid icon name %q", icon)
	}
	return name, nil
}
