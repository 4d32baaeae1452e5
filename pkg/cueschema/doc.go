// Package cueschema reads section contracts from CUE. Every top-level
// definition is one contract:
//
//	// Large banner at the top of a page.
//	#Hero: {
//		title:                string
//		subtitle?:            string
//		heroImages?:          [...string]
//		cta?:                 _#CTA
//		icon:                 string | null @form(widget=icon)
//		showScrollIndicator:  *true | bool
//	} @section(type=hero, label="Hero", icon=star, category=layout)
//
// "?" marks optional fields, "*d | T" attaches a default, "| null" makes a
// field nullable, and @form(...) carries widget hints. Definitions without
// @section(type=...) are named after the definition in kebab case. Hidden
// definitions such as _#CTA are shared shapes, not contracts.
package cueschema
