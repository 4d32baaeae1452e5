// Package form synthesizes editing controls from compiled section schemas
// and binds them to a mutable section document.
//
// Walk turns a schema node and its value into a Control tree grouped into
// content, media, call-to-action and advanced sections. A Session owns one
// document and exposes the three mutations the controls call back into:
// SetScalar, SpliceArray and MoveArrayItem. Every value read or written goes
// through the normalizer, so controls always see the shape the schema
// declares.
package form
