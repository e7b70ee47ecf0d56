package searchparams

import "net/url"

// Top-10 ranking criteria.
const (
	Top10ByPosts  = "posts"
	Top10ByLogins = "logins"
)

// Top10Search ranks members by activity.
type Top10Search struct {
	Criterion string `json:"criterion"`
	// SinceDays limits the ranking to the last N days; 0 means all time.
	SinceDays int `json:"sinceDays"`
}

var Top10Codec = NewCodec(top10Root,
	StringField("criterion", "tc", Top10ByPosts, Everywhere, func(s *Top10Search) *string { return &s.Criterion }),
	IntField("sinceDays", "sd", 0, Everywhere, func(s *Top10Search) *int { return &s.SinceDays }),
)

func top10Root() Top10Search {
	return Top10Search{Criterion: Top10ByPosts}
}

func NewTop10Search() Top10Search { return top10Root() }

func EncodeTop10(s Top10Search) string                { return Top10Codec.Encode(s) }
func DecodeTop10(token string) Top10Search            { return Top10Codec.Decode(token) }
func DecodeTop10Values(values url.Values) Top10Search { return Top10Codec.DecodeValues(values) }

func (s Top10Search) Token() string { return Top10Codec.Encode(s) }

func (s Top10Search) Clone() Top10Search {
	return Top10Search{Criterion: s.Criterion, SinceDays: s.SinceDays}
}

// Normalize makes any request usable: an unknown criterion falls back to
// posts and a negative window means all time.
func (s *Top10Search) Normalize() {
	switch s.Criterion {
	case Top10ByPosts, Top10ByLogins:
	default:
		s.Criterion = Top10ByPosts
	}
	if s.SinceDays < 0 {
		s.SinceDays = 0
	}
}
