package testsupport

import "github.com/goliatone/go-sectionform/pkg/schema"

// HeroDef is a hero banner section with optional call-to-action groups.
func HeroDef() *schema.Def {
	return schema.Object(
		schema.Field("title", schema.String()),
		schema.Field("subtitle", schema.Optional(schema.String())),
		schema.Field("description", schema.Optional(schema.String())),
		schema.Field("backgroundImage", schema.Optional(schema.String())),
		schema.Field("heroImages", schema.Optional(schema.Array(schema.String()))),
		schema.Field("cta", schema.Optional(schema.Object(
			schema.Field("text", schema.String()),
			schema.Field("link", schema.Optional(schema.String())),
		))),
		schema.Field("secondaryCta", schema.Optional(schema.Object(
			schema.Field("text", schema.String()),
			schema.Field("link", schema.Optional(schema.String())),
		))),
		schema.Field("showScrollIndicator", schema.Defaulted(schema.Boolean(), true)),
	)
}

// GalleryDef is a gallery section holding an array of image records.
func GalleryDef() *schema.Def {
	return schema.Object(
		schema.Field("images", schema.Array(schema.Object(
			schema.Field("image", schema.String()),
			schema.Field("alt", schema.Optional(schema.String())),
			schema.Field("title", schema.Optional(schema.String())),
			schema.Field("story", schema.Optional(schema.String())),
		))),
	)
}

// FAQDef is a question and answer list.
func FAQDef() *schema.Def {
	return schema.Object(
		schema.Field("title", schema.String()),
		schema.Field("items", schema.Array(schema.Object(
			schema.Field("question", schema.String()),
			schema.Field("answer", schema.String()),
		))),
	)
}

// PricingDef is a pricing table with nested feature lists.
func PricingDef() *schema.Def {
	return schema.Object(
		schema.Field("title", schema.String()),
		schema.Field("plans", schema.Array(schema.Object(
			schema.Field("name", schema.String()),
			schema.Field("price", schema.Number()),
			schema.Field("features", schema.Array(schema.String())),
			schema.Field("highlighted", schema.Optional(schema.Boolean())),
			schema.Field("button_url", schema.Optional(schema.String())),
			schema.Field("icon", schema.Nullable(schema.String())),
		))),
	)
}
