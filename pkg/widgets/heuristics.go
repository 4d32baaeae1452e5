package widgets

import (
	"strings"
)

var (
	imageListKeywords = []string{"image", "screenshot", "gallery", "photo", "logo"}
	longTextKeywords  = []string{"content", "description", "excerpt", "answer"}
	linkNames         = map[string]struct{}{"href": {}, "url": {}, "link": {}}
	linkSuffixes      = []string{"_link", "_url", "Link", "Url", "URL", "Href"}

	advancedPrefixes = []string{"show", "enable", "is"}
	ctaKeywords      = []string{"cta", "action", "button", "link", "url", "href", "submit"}
	mediaKeywords    = []string{"image", "icon", "logo", "media", "screenshot", "photo", "background"}
)

func containsAny(value string, keywords []string) bool {
	lowered := strings.ToLower(value)
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// isImagePath and isIconPath match anywhere in the dotted field path, so
// heroImage.src and feature.icon.name are both media.
func isImagePath(path string) bool {
	return strings.Contains(strings.ToLower(path), "image")
}

func isIconPath(path string) bool {
	return strings.Contains(strings.ToLower(path), "icon")
}

// isLinkName matches href/url/link ignoring case and separators, and
// snake or camel case suffixes such as button_url or ctaLink.
func isLinkName(name string) bool {
	normalized := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(name))
	if _, ok := linkNames[normalized]; ok {
		return true
	}
	for _, suffix := range linkSuffixes {
		if len(name) > len(suffix) && strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func isLongTextPath(path string) bool {
	return containsAny(path, longTextKeywords)
}

// hasPrefixFold reports whether name starts with prefix, ignoring case.
// Any continuation counts: showTitle, is_active and showcase all match.
func hasPrefixFold(name, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(name), prefix)
}
