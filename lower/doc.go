// Package lower turns the type graph into wire encoding plans.
//
// Classify maps each type-graph node to a Strategy: fixed-width scalar,
// byte-array fast path, counted array, counted map, nested record call, or
// enum aliased to its backing scalar. PlanRecord assembles a record
// definition's fields or branches, in declaration order, into a RecordPlan.
//
// Plans are the language-neutral operation trees shared by the dynamic codec
// (package codec), which executes them, and the source renderer (package
// gen), which emits them as Go text. Lowering is a pure, synchronous walk of
// the immutable schema; independent definitions may be lowered in parallel.
package lower
