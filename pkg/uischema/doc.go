// Package uischema loads hint overlays and applies them to contract
// definitions before registration. An overlay file names contracts by type id
// and attaches widget hints to field paths, so presentation can be tuned
// without touching the schema source:
//
//	contracts:
//	  hero:
//	    label: Hero banner
//	    icon: <svg viewBox="0 0 24 24"><path d="M4 4h16v16H4z"/></svg>
//	    order: [title, subtitle]
//	    fields:
//	      description: {widget: textarea, help: Shown under the title}
//	      cta.link: {widget: link}
//	  gallery:
//	    fields:
//	      images[].image: {bucket: gallery}
//
// Element paths use "[]" (or a numeric index, which is ignored) to step into
// array elements.
package uischema
