// Package sandbox executes reasoner-generated scripts inside a persistent,
// restricted ECMAScript interpreter. The namespace is owned by the caller
// (one per session) and mutated in place, so variables bound in one turn
// remain visible in the next. Scripts are screened against a static
// deny-list before execution, bounded by a wall-clock timeout, and can
// never let an exception escape: every outcome is a value.
package sandbox
