// Package jsonschema converts JSON Schema 2020-12 documents (JSON or YAML)
// into section contracts. Property order follows the document, "required"
// decides which fields are optional, "T | null" unions become nullable
// fields, and the x-section keyword carries widget hints and contract
// metadata:
//
//	{
//	  "$schema": "https://json-schema.org/draft/2020-12/schema",
//	  "title": "Hero",
//	  "x-section": {"type": "hero", "icon": "star"},
//	  "type": "object",
//	  "required": ["title"],
//	  "properties": {
//	    "title": {"type": "string"},
//	    "backgroundImage": {"type": "string", "x-section": {"bucket": "banners"}}
//	  }
//	}
package jsonschema
