// Package errors provides structured error types for the bebop compiler
// and its generated codecs.
//
// All errors carry a Phase (where in processing the failure occurred) and a
// Kind (what went wrong), plus optional context: the schema definition, a
// field path into the value being processed, and the wire type involved.
//
// Example error strings:
//
//	[lower] unresolved_reference in Library: reference to undefined type "Song"
//	[decode] invalid_discriminator in Shape: discriminator 99 matches no branch
//	[encode] type_mismatch at album.tracks[3]: wire type int32 - Go value of type string
//
// Errors support errors.Is matching on (Phase, Kind) pairs and unwrap to
// their cause.
package errors
