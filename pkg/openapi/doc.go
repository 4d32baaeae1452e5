// Package openapi reads section contracts from the component schemas of an
// OpenAPI document. Every schema under components.schemas that carries
// x-section-type becomes one contract; x-section on any schema carries
// widget hints. The kin-openapi dependency stays behind internal/openapi.
package openapi
