// Package bebop compiles schema documents for a compact little-endian binary
// wire format into Go source, and encodes and decodes wire values dynamically
// without generated code.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	bebop/           Root package with the high-level compile and codec API
//	├── schema/      Type graph: definitions, types, literals, document loader
//	├── lower/       Type-directed lowering: strategies and record plans
//	├── codec/       Dynamic encoder/decoder executing record plans
//	├── gen/         Go source renderer over the same record plans
//	├── wire/        Cursor-based wire reader and writer primitives
//	├── errors/      Structured error types for every phase
//	└── cmd/bebopc/  Command line compiler
//
// # Quick Start
//
// Compile a schema document to Go source:
//
//	src, err := bebop.Generate(doc, gen.Options{Package: "library"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("library.gen.go", src, 0o644)
//
// Or work with wire values dynamically:
//
//	c, err := bebop.NewCodec(doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	buf, err := c.Encode("song", map[string]any{"title": "Donna Lee"})
//	value, err := c.Decode("song", buf)
//
// # Wire Format
//
// All multi-byte scalars are little-endian. Structs concatenate fields in
// declaration order with no framing. Messages and unions carry a 4-byte
// length frame, which lets a decoder skip content it does not understand:
// an unknown message tag or union discriminator moves the cursor to the end
// of the frame instead of failing mid-buffer.
//
// # Thread Safety
//
// Schema, plans, and Codec are immutable after construction and safe for
// concurrent use. Generator is single-use: build one per Generate call.
package bebop
