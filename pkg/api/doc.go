// Package api defines the caller-facing types of the cortex engine: the
// analysis response envelope, the declarative chart specification, the
// execution failure taxonomy, and identifier generation.
package api
