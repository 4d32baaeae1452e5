// Package content persists section documents. It exposes the two external
// actions the form engine depends on, CreateContent and UpdateContent, on top
// of a Store that is either in-memory or backed by bun.
package content
