// Package schema holds the declared content schema (Def), the compiled tagged
// AST the rest of the engine works on (Node), field paths, and the
// introspector that unwraps optional/default/nullable/effect modifiers.
//
// Defs are authored in Go with the builder helpers or decoded from contract
// files; Compile turns a Def into a Node once, at registration time:
//
//	def := schema.Object(
//		schema.Field("title", schema.String()),
//		schema.Field("cta", schema.Optional(schema.Object(
//			schema.Field("text", schema.String()),
//			schema.Field("link", schema.Optional(schema.String())),
//		))),
//	)
//	node, diags := schema.Compile(def)
package schema
