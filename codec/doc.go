// Package codec executes record plans directly against the wire format,
// encoding and decoding dynamic values without generated code.
//
// It is the executable ground truth for the format: the generated codecs
// emitted by package gen produce byte-identical output for equivalent typed
// values. Encode and Decode are structurally dual recursive walks over the
// same plans:
//
//	struct    fields in declaration order, no framing
//	message   length frame, (tag, value) pairs, zero terminator;
//	          unknown tag on decode skips the entire remainder
//	union     length frame, discriminator byte, branch payload;
//	          unknown discriminator on decode is an error
//	array     4-byte count + elements (byte arrays: raw blob)
//	map       4-byte count + key/value pairs, native iteration order
//	enum      the backing scalar, unvalidated against the member set
//
// A Codec holds no mutable state after construction; each encode or decode
// call owns its wire cursor exclusively, so concurrent calls over the same
// Codec are safe.
package codec
