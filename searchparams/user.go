package searchparams

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const MaxUserQueryLength = 50

// UserSearch looks up members by login or display name.
type UserSearch struct {
	SearchText string `json:"searchText"`
	PageIndex  int    `json:"pageIndex"`
	OnlyOnline bool   `json:"onlyOnline"`
}

var UserCodec = NewCodec(userRoot,
	StringField("searchText", "ss", "", Everywhere, func(s *UserSearch) *string { return &s.SearchText }),
	IntField("pageIndex", "pi", DefaultPageIndex, Everywhere, func(s *UserSearch) *int { return &s.PageIndex }),
	BoolField("onlyOnline", "ion", false, Everywhere, func(s *UserSearch) *bool { return &s.OnlyOnline }),
)

// userRoot lists every member, first page.
func userRoot() UserSearch {
	return UserSearch{PageIndex: DefaultPageIndex}
}

func NewUserSearch() UserSearch { return userRoot() }

func EncodeUser(s UserSearch) string               { return UserCodec.Encode(s) }
func DecodeUser(token string) UserSearch           { return UserCodec.Decode(token) }
func DecodeUserValues(values url.Values) UserSearch { return UserCodec.DecodeValues(values) }

func (s UserSearch) Token() string { return UserCodec.Encode(s) }

func (s UserSearch) Clone() UserSearch {
	return UserSearch{
		SearchText: s.SearchText,
		PageIndex:  s.PageIndex,
		OnlyOnline: s.OnlyOnline,
	}
}

// Validate trims the search text and rejects it when longer than
// MaxUserQueryLength.
func (s *UserSearch) Validate() error {
	s.SearchText = strings.TrimSpace(s.SearchText)
	if n := utf8.RuneCountInString(s.SearchText); n > MaxUserQueryLength {
		return &ValidationError{Field: "searchText", Limit: MaxUserQueryLength, Length: n}
	}
	return nil
}
