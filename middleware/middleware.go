// Package middleware decodes HTTP request bodies with generated codecs.
//
//	r := chi.NewRouter()
//	r.With(middleware.Decode(sample.SampleCodec, middleware.DefaultReadOptions())).
//		Post("/samples", func(w http.ResponseWriter, r *http.Request) {
//			v, _ := middleware.DecodedFromContext[sample.Sample](r.Context())
//			...
//		})
package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/reoring/codecgen"
)

// ctxKeyDecoded is a typed context key for storing a decoded *T.
// Using a generic struct type ensures uniqueness per T.
type ctxKeyDecoded[T any] struct{}

// ContextWithDecoded attaches v to the context.
func ContextWithDecoded[T any](ctx context.Context, v *T) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded[T]{}, v)
}

// DecodedFromContext retrieves the value stored by ContextWithDecoded.
func DecodedFromContext[T any](ctx context.Context) (*T, bool) {
	v, ok := ctx.Value(ctxKeyDecoded[T]{}).(*T)
	return v, ok
}

// DefaultReadOptions returns a recommended default for HTTP JSON boundaries.
// - Duplicate keys are errors
// - Nesting is capped at 64 containers
func DefaultReadOptions() codecgen.ReadOptions {
	return codecgen.ReadOptions{MaxDepth: 64, RejectDuplicateKeys: true}
}

// Decode returns middleware that decodes the request body with c and stores
// the result in the request context. A body that fails to decode is answered
// with 400 and an error payload; the next handler is not called. A null body
// stores a zero value.
func Decode[T any](c codecgen.Codec[T], opt codecgen.ReadOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := new(T)
			if err := codecgen.UnmarshalFrom(c, r.Body, opt, v); err != nil {
				WriteError(w, http.StatusBadRequest, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithDecoded(r.Context(), v)))
		})
	}
}

// Write encodes v with c as the JSON response body.
func Write[T any](w http.ResponseWriter, status int, c codecgen.Codec[T], v *T) error {
	data, err := codecgen.Marshal(c, v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(data)
	return err
}

// WriteError answers with status and a payload describing err:
//
//	{"error":"unexpected token type for Id: String","field":"Id"}
//
// field is present when err names the offending field.
func WriteError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = ErrorPayload(w, err)
}

// ErrorPayload writes the JSON error object for err to out.
func ErrorPayload(out io.Writer, err error) error {
	jw := codecgen.NewJSONWriter(out)
	if err := jw.WriteStartObject(); err != nil {
		return err
	}
	if err := jw.WriteFieldName("error"); err != nil {
		return err
	}
	if err := jw.WriteString(err.Error()); err != nil {
		return err
	}
	if field := fieldOf(err); field != "" {
		if err := jw.WriteFieldName("field"); err != nil {
			return err
		}
		if err := jw.WriteString(field); err != nil {
			return err
		}
	}
	return jw.WriteEndObject()
}

func fieldOf(err error) string {
	var ut *codecgen.UnexpectedTokenError
	if errors.As(err, &ut) {
		return ut.Field
	}
	var ne *codecgen.NullElementError
	if errors.As(err, &ne) {
		return ne.Field
	}
	var fe *codecgen.FieldError
	if errors.As(err, &fe) {
		return fe.Field
	}
	return ""
}
