package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ForumMessage is a topic or a reply.
//
// Topics hang off the forum root (ParentID == 0) and are their own topic
// (TopicID == ID). Replies point at any message of the topic through
// ParentID and share the topic's TopicID, so a whole thread is one
// indexed lookup.
type ForumMessage struct {
	ID         int64     `json:"id"`
	ParentID   int64     `json:"parent_id"`
	TopicID    int64     `json:"topic_id"`
	AuthorID   int64     `json:"author_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	IsApproved bool      `json:"is_approved"`
	ReplyCount int       `json:"reply_count"`
	CreatedAt  time.Time `json:"created_at"`
	Author     *User     `json:"author,omitempty"`
}

// IsTopic reports whether m starts a thread.
func (m *ForumMessage) IsTopic() bool {
	return m.ParentID == 0
}

// CreateForumMessageRequest is the payload of POST /api/forum/messages.
// ParentID 0 starts a new topic.
type CreateForumMessageRequest struct {
	ParentID int64  `json:"parent_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// Validate trims the payload. A topic needs a 1-120 character title; a
// reply may omit it. Content is 1-4000 characters.
func (r *CreateForumMessageRequest) Validate() error {
	if r.ParentID < 0 {
		return fmt.Errorf("invalid parent message")
	}

	r.Title = strings.TrimSpace(r.Title)
	titleLen := utf8.RuneCountInString(r.Title)
	if r.ParentID == 0 && titleLen < 1 {
		return fmt.Errorf("topic title is required")
	}
	if titleLen > 120 {
		return fmt.Errorf("title must be at most 120 characters")
	}

	r.Content = strings.TrimSpace(r.Content)
	contentLen := utf8.RuneCountInString(r.Content)
	if contentLen < 1 {
		return fmt.Errorf("message content is required")
	}
	if contentLen > 4000 {
		return fmt.Errorf("message content must be at most 4000 characters")
	}
	return nil
}
