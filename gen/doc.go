// Package gen renders lowered record plans as Go source. The output of one
// Generate call is a single self-contained file: type declarations for every
// record and enum, lowered constants, and an Encode/Decode function pair per
// record built on the wire package's cursor primitives.
//
// The renderer consumes the same plans as the dynamic codec, so generated
// functions and interpreted encoding agree byte for byte.
package gen
