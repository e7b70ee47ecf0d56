// Package searchparams encodes search requests into URL-safe tokens and
// decodes them back.
//
// Every request kind (forum, user, top-10) is a flat struct described by a
// field table. A field has a long name, a fixed short wire name, a kind, a
// default value and a serialization policy. The shared Codec walks the
// table in declared order, so every kind gets the same behavior:
//
//   - a field is written to the token only when it differs from its default
//   - unknown names are ignored when decoding
//   - a malformed value falls back to the field default
//   - a token that decodes to nothing but defaults yields the kind's root view
//
// Short names are part of the public URL format. Bookmarked links and
// browser history entries depend on them, so they never change.
package searchparams

import (
	"net/url"
	"strconv"
)

// Kind, the wire type of a field.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// Policy says which decode paths a field takes part in.
//
// InToken fields are written by Encode and read by Decode (history tokens,
// redirect URLs). InParams fields are read by DecodeValues (query strings
// sent by clients). A server-assigned field is InToken only: it survives a
// round-trip through a URL the server built, but a client cannot set it on
// an API call.
type Policy uint8

const (
	InToken Policy = 1 << iota
	InParams

	Everywhere = InToken | InParams
)

// Field describes one wire field of the request type R.
type Field[R any] struct {
	Name   string
	Key    string
	Kind   Kind
	Policy Policy

	// format renders the current value and reports whether it equals the default.
	format func(r *R) (string, bool)
	// parse assigns raw to the field. It returns false and leaves the field
	// untouched when raw cannot be parsed.
	parse func(r *R, raw string) bool
	reset func(r *R)
}

// StringField declares a free-text field. Values are percent-encoded on the wire.
func StringField[R any](name, key, def string, policy Policy, ptr func(*R) *string) Field[R] {
	return Field[R]{
		Name:   name,
		Key:    key,
		Kind:   KindString,
		Policy: policy,
		format: func(r *R) (string, bool) {
			v := *ptr(r)
			return url.QueryEscape(v), v == def
		},
		parse: func(r *R, raw string) bool {
			v, err := url.QueryUnescape(raw)
			if err != nil {
				return false
			}
			*ptr(r) = v
			return true
		},
		reset: func(r *R) { *ptr(r) = def },
	}
}

// IntField declares a decimal integer field.
func IntField[R any, N ~int | ~int64](name, key string, def N, policy Policy, ptr func(*R) *N) Field[R] {
	return Field[R]{
		Name:   name,
		Key:    key,
		Kind:   KindInt,
		Policy: policy,
		format: func(r *R) (string, bool) {
			v := *ptr(r)
			return strconv.FormatInt(int64(v), 10), v == def
		},
		parse: func(r *R, raw string) bool {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return false
			}
			*ptr(r) = N(v)
			return true
		},
		reset: func(r *R) { *ptr(r) = def },
	}
}

// BoolField declares a flag. Written as "1"/"0"; any strconv.ParseBool
// spelling is accepted when reading.
func BoolField[R any](name, key string, def bool, policy Policy, ptr func(*R) *bool) Field[R] {
	return Field[R]{
		Name:   name,
		Key:    key,
		Kind:   KindBool,
		Policy: policy,
		format: func(r *R) (string, bool) {
			v := *ptr(r)
			if v {
				return "1", v == def
			}
			return "0", v == def
		},
		parse: func(r *R, raw string) bool {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return false
			}
			*ptr(r) = v
			return true
		},
		reset: func(r *R) { *ptr(r) = def },
	}
}
