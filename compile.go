package codecgen

import (
	"github.com/rs/zerolog"

	"github.com/reoring/codecgen/internal/gen"
	"github.com/reoring/codecgen/internal/resolve"
	"github.com/reoring/codecgen/internal/schema"
)

// CompileOptions configures Compile.
type CompileOptions struct {
	// Class is the qualified serializer name, "pkg.Serializer". The last
	// segment before the final dot, lowercased, becomes the package clause.
	Class string
	// Access is "public" (default), "internal" or "private". Internal and
	// private generate unexported identifiers.
	Access string
	// MakeTypes also emits the data holder types.
	MakeTypes bool
	// Source names the schema in the generated header.
	Source string
	// Logger receives debug events; nil disables logging.
	Logger *zerolog.Logger
}

// Compile turns schema text into a formatted Go source file.
//
// Errors are one of *SchemaSyntaxError, *UnresolvedTypeError,
// *UnsupportedFeatureError, *DuplicateFieldError or *GenerateError, except
// for malformed options.
func Compile(src []byte, opt CompileOptions) ([]byte, error) {
	log := zerolog.Nop()
	if opt.Logger != nil {
		log = *opt.Logger
	}
	pkg, serializer, err := resolve.SplitClass(opt.Class)
	if err != nil {
		return nil, err
	}
	access, err := resolve.ParseAccess(opt.Access)
	if err != nil {
		return nil, err
	}

	objs, err := schema.ParseBytes(src)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("source", opt.Source).Int("objects", len(objs)).Msg("parsed schema")

	root, err := resolve.Resolve(objs, resolve.Options{
		Package:    pkg,
		Serializer: serializer,
		Access:     access,
		MakeTypes:  opt.MakeTypes,
	})
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("package", root.Package).
		Int("objects", len(root.Objects)).
		Int("array_codecs", len(root.Arrays)).
		Int("aggregates", len(root.Aggregates)).
		Msg("resolved schema")

	out, err := gen.GenerateWith(root, gen.Options{Source: opt.Source})
	if err != nil {
		return nil, err
	}
	log.Debug().Int("bytes", len(out)).Msg("generated source")
	return out, nil
}
