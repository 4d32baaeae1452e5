// Package contracts holds the registry of section content-type contracts.
//
// A contract pairs a type identifier with its declared schema, the compiled
// node, the derived default document and a validator. Contracts are compiled
// once at registration and are immutable afterwards:
//
//	registry := contracts.NewRegistry()
//	registry.MustRegister(contracts.Definition{
//		TypeID: "hero",
//		Schema: schema.Object(schema.Field("title", schema.String())),
//	})
//	contract, ok := registry.Get("hero")
package contracts
