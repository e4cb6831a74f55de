// Package codecgen compiles a compact schema language into reflection-free Go
// codecs, and provides the small runtime those codecs are written against.
//
// Compile side:
//
//	src, err := os.ReadFile("sample.schema")
//	out, err := codecgen.Compile(src, codecgen.CompileOptions{Class: "sample.Serializer", MakeTypes: true})
//
// Runtime side (used by generated code):
//
//   - Reader / Writer: a forward-only token stream, JSON backed by goccy/go-json
//   - Dict: an insertion-ordered map for wildcard fields
//   - Codec: the encode/decode pair generated for each concrete type
//
// Typical usage of generated code:
//
//	v := new(sample.Sample)
//	err := codecgen.Unmarshal(sample.SampleCodec, data, v)
//	out, err := codecgen.Marshal(sample.SampleCodec, v)
//
// Design policy:
//   - Keep only public APIs in the root package; put the compiler under internal/.
//   - Place alternative token sources under source/ and the CLI under cmd/codecgen.
package codecgen
