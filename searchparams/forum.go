package searchparams

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	// UnknownID marks an id field that is not set.
	UnknownID int64 = -1
	// RootMessageID is the parent id of every topic.
	RootMessageID int64 = 0

	DefaultPageIndex    = 1
	MaxForumQueryLength = 90
)

// View classifies a forum request by the rendering path it needs.
type View string

const (
	ViewSearch        View = "search"
	ViewNavigation    View = "navigation"
	ViewSingleMessage View = "single_message"
	ViewApproved      View = "approved"
)

// ForumSearch is a forum search or navigation request.
type ForumSearch struct {
	SearchText         string `json:"searchText"`
	ByUserLoginName    string `json:"byUserLoginName"`
	ByUserID           int64  `json:"byUserId"`
	PageIndex          int    `json:"pageIndex"`
	BaseMessageID      int64  `json:"baseMessageId"`
	OnlyTopics         bool   `json:"onlyTopics"`
	OnlyInCurrentTopic bool   `json:"onlyInCurrentTopic"`
	OnlyOneMessage     bool   `json:"onlyOneMessage"`
	IsApprovedOnly     bool   `json:"isApprovedOnly"`
}

// ForumCodec is the forum field table. IsApprovedOnly is assigned by the
// server, so it travels in tokens the server builds but is never read from
// client query parameters.
var ForumCodec = NewCodec(BrowseRoot,
	StringField("searchText", "ss", "", Everywhere, func(s *ForumSearch) *string { return &s.SearchText }),
	StringField("byUserLoginName", "ul", "", Everywhere, func(s *ForumSearch) *string { return &s.ByUserLoginName }),
	IntField("byUserId", "uis", UnknownID, Everywhere, func(s *ForumSearch) *int64 { return &s.ByUserID }),
	IntField("pageIndex", "pi", DefaultPageIndex, Everywhere, func(s *ForumSearch) *int { return &s.PageIndex }),
	IntField("baseMessageId", "bmid", UnknownID, Everywhere, func(s *ForumSearch) *int64 { return &s.BaseMessageID }),
	BoolField("onlyTopics", "iot", false, Everywhere, func(s *ForumSearch) *bool { return &s.OnlyTopics }),
	BoolField("onlyInCurrentTopic", "ioict", false, Everywhere, func(s *ForumSearch) *bool { return &s.OnlyInCurrentTopic }),
	BoolField("onlyOneMessage", "iom", false, Everywhere, func(s *ForumSearch) *bool { return &s.OnlyOneMessage }),
	BoolField("isApprovedOnly", "iap", false, InToken, func(s *ForumSearch) *bool { return &s.IsApprovedOnly }),
)

// NewForumSearch returns a request with every field at its default.
func NewForumSearch() ForumSearch {
	return ForumCodec.Defaults()
}

// BrowseRoot is the view shown when a request carries no filters: the
// topic list under the forum root, first page.
func BrowseRoot() ForumSearch {
	return ForumSearch{
		ByUserID:      UnknownID,
		PageIndex:     DefaultPageIndex,
		BaseMessageID: RootMessageID,
	}
}

// EncodeForum is ForumCodec.Encode.
func EncodeForum(s ForumSearch) string { return ForumCodec.Encode(s) }

// DecodeForum is ForumCodec.Decode.
func DecodeForum(token string) ForumSearch { return ForumCodec.Decode(token) }

// DecodeForumValues is ForumCodec.DecodeValues.
func DecodeForumValues(values url.Values) ForumSearch { return ForumCodec.DecodeValues(values) }

// Token returns the canonical encoding of s.
func (s ForumSearch) Token() string { return ForumCodec.Encode(s) }

// Clone returns a copy of s. Every field is a value, so the copy shares nothing.
func (s ForumSearch) Clone() ForumSearch {
	return ForumSearch{
		SearchText:         s.SearchText,
		ByUserLoginName:    s.ByUserLoginName,
		ByUserID:           s.ByUserID,
		PageIndex:          s.PageIndex,
		BaseMessageID:      s.BaseMessageID,
		OnlyTopics:         s.OnlyTopics,
		OnlyInCurrentTopic: s.OnlyInCurrentTopic,
		OnlyOneMessage:     s.OnlyOneMessage,
		IsApprovedOnly:     s.IsApprovedOnly,
	}
}

// WithPage returns a copy of s pointing at pageIndex.
func (s ForumSearch) WithPage(pageIndex int) ForumSearch {
	c := s.Clone()
	c.PageIndex = pageIndex
	return c
}

// Validate trims the free-text fields and rejects an overlong search text.
func (s *ForumSearch) Validate() error {
	s.SearchText = strings.TrimSpace(s.SearchText)
	s.ByUserLoginName = strings.TrimSpace(s.ByUserLoginName)

	if n := utf8.RuneCountInString(s.SearchText); n > MaxForumQueryLength {
		return &ValidationError{Field: "searchText", Limit: MaxForumQueryLength, Length: n}
	}
	return nil
}

func (s ForumSearch) filtersAtDefault() bool {
	return s.SearchText == "" && s.ByUserLoginName == "" && s.ByUserID == UnknownID
}

// IsNavigationView reports whether s browses the children of a message.
func (s ForumSearch) IsNavigationView() bool {
	return s.BaseMessageID != UnknownID &&
		!s.OnlyOneMessage &&
		!s.IsApprovedOnly &&
		s.filtersAtDefault()
}

// IsSingleMessageView reports whether s shows exactly one message.
func (s ForumSearch) IsSingleMessageView() bool {
	return s.BaseMessageID != UnknownID &&
		s.OnlyOneMessage &&
		!s.IsApprovedOnly &&
		s.filtersAtDefault()
}

// IsApprovedView reports whether s lists approved (news) messages.
func (s ForumSearch) IsApprovedView() bool {
	return s.IsApprovedOnly &&
		s.BaseMessageID == UnknownID &&
		!s.OnlyOneMessage &&
		s.filtersAtDefault()
}

// IsBrowsingDefaultView reports whether s is the topic list under the root.
func (s ForumSearch) IsBrowsingDefaultView() bool {
	return s.IsNavigationView() && s.BaseMessageID == RootMessageID
}

// View returns the rendering path for s. Anything that is not one of the
// three browsing views is a search.
func (s ForumSearch) View() View {
	switch {
	case s.IsNavigationView():
		return ViewNavigation
	case s.IsSingleMessageView():
		return ViewSingleMessage
	case s.IsApprovedView():
		return ViewApproved
	default:
		return ViewSearch
	}
}
