package bebop

import (
	"github.com/synoet/bebop/codec"
	"github.com/synoet/bebop/gen"
	"github.com/synoet/bebop/schema"
)

// Generate compiles a schema document into a single Go source file.
func Generate(doc []byte, opts gen.Options) ([]byte, error) {
	sch, err := schema.Load(doc)
	if err != nil {
		return nil, err
	}
	g, err := gen.NewGenerator(sch, opts)
	if err != nil {
		return nil, err
	}
	return g.Generate()
}

// NewCodec loads a schema document and returns a dynamic codec over its
// records.
func NewCodec(doc []byte) (*codec.Codec, error) {
	sch, err := schema.Load(doc)
	if err != nil {
		return nil, err
	}
	return codec.New(sch)
}
