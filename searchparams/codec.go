package searchparams

import (
	"fmt"
	"net/url"
	"strings"
)

// Codec maps a request type R to and from tokens using its field table.
// A Codec is immutable after construction and safe for concurrent use.
type Codec[R any] struct {
	fields []Field[R]
	byKey  map[string]int
	root   func() R
}

// NewCodec builds a codec. root returns the view a caller gets when a token
// or parameter map carries nothing but defaults.
func NewCodec[R any](root func() R, fields ...Field[R]) *Codec[R] {
	c := &Codec[R]{
		fields: fields,
		byKey:  make(map[string]int, len(fields)),
		root:   root,
	}
	for i, f := range fields {
		if _, dup := c.byKey[f.Key]; dup {
			panic(fmt.Sprintf("searchparams: duplicate short name %q", f.Key))
		}
		c.byKey[f.Key] = i
	}
	return c
}

// Fields returns the field table in wire order.
func (c *Codec[R]) Fields() []Field[R] {
	out := make([]Field[R], len(c.fields))
	copy(out, c.fields)
	return out
}

// Defaults returns a request with every field at its declared default.
func (c *Codec[R]) Defaults() R {
	var r R
	for _, f := range c.fields {
		f.reset(&r)
	}
	return r
}

// Root returns the root view.
func (c *Codec[R]) Root() R {
	return c.root()
}

// IsDefault reports whether every field of r equals its default.
func (c *Codec[R]) IsDefault(r R) bool {
	for _, f := range c.fields {
		if _, isDef := f.format(&r); !isDef {
			return false
		}
	}
	return true
}

// Encode writes every non-default InToken field as key=value, in table
// order, joined with '&'. An all-default request encodes to "".
//
// Two requests with the same non-default fields always produce the same
// token, so the token doubles as an identity key for caching and for
// collapsing duplicate in-flight searches.
func (c *Codec[R]) Encode(r R) string {
	var b strings.Builder
	for _, f := range c.fields {
		if f.Policy&InToken == 0 {
			continue
		}
		v, isDef := f.format(&r)
		if isDef {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(v)
	}
	return b.String()
}

// Decode parses a token. It never fails: unknown names are skipped, a
// malformed value leaves its field at the default, and a token that yields
// only defaults returns the root view. A leading '#' or '?' is ignored so
// raw URL fragments can be passed straight in.
func (c *Codec[R]) Decode(token string) R {
	token = strings.TrimSpace(token)
	token = strings.TrimLeft(token, "#?")

	r := c.Defaults()
	if token == "" {
		return c.root()
	}

	for _, piece := range strings.Split(token, "&") {
		if piece == "" {
			continue
		}
		key, raw, _ := strings.Cut(piece, "=")
		i, ok := c.byKey[key]
		if !ok {
			continue
		}
		f := c.fields[i]
		if f.Policy&InToken == 0 {
			continue
		}
		f.parse(&r, raw)
	}

	if c.IsDefault(r) {
		return c.root()
	}
	return r
}

// DecodeValues reads a request from a multi-valued parameter map such as
// r.URL.Query(). Only the first value of each name is used and only
// InParams fields are read. Values arrive already unescaped.
func (c *Codec[R]) DecodeValues(values url.Values) R {
	r := c.Defaults()
	for _, f := range c.fields {
		if f.Policy&InParams == 0 {
			continue
		}
		vs, ok := values[f.Key]
		if !ok || len(vs) == 0 {
			continue
		}
		if f.Kind == KindString {
			// parse expects the escaped form
			f.parse(&r, url.QueryEscape(vs[0]))
			continue
		}
		f.parse(&r, strings.TrimSpace(vs[0]))
	}

	if c.IsDefault(r) {
		return c.root()
	}
	return r
}

// Set assigns a single field by short name. Unlike Decode it reports
// unknown names and unparsable values, which makes it suitable for
// building requests from trusted input such as command-line flags.
// raw is the unescaped value.
func (c *Codec[R]) Set(r *R, key, raw string) error {
	i, ok := c.byKey[key]
	if !ok {
		return fmt.Errorf("unknown field %q", key)
	}
	f := c.fields[i]
	if f.Kind == KindString {
		raw = url.QueryEscape(raw)
	}
	if !f.parse(r, raw) {
		return fmt.Errorf("invalid %s value for %q", f.Kind, key)
	}
	return nil
}
