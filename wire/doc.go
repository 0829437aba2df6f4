// Package wire implements the byte-level reading and writing contract of the
// bebop wire format: little-endian fixed-width primitives, length-prefixed
// strings and byte blobs, 16-byte mixed-endian GUIDs, 8-byte date tick
// counts, and the reserve/patch length framing used by messages and unions.
//
// Both generated codecs and the dynamic codec in package codec are written
// against this contract. A Writer or Reader owns its cursor exclusively for
// the duration of one encode or decode call and must not be shared across
// concurrent invocations.
package wire
