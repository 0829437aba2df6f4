// Package schema defines the type graph consumed by lowering: definitions
// (enum, struct, message, union, const), fields, and the closed set of wire
// types (scalars, arrays, maps, by-name references).
//
// A Schema is produced once, externally, and is immutable for the duration
// of lowering. The package also provides a loader for a structured YAML/JSON
// type-graph document; parsing bebop schema source text is a separate
// concern and lives outside this module.
//
// The package performs no semantic validation beyond rejecting duplicate
// definition names. Tag uniqueness, discriminator uniqueness, and reference
// resolution are assumed to have been checked by the producer of the graph.
package schema
