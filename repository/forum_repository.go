package repository

import (
	"context"

	"github.com/akinalp/forum/models"
)

// ForumCriteria narrows a forum message listing. Nil pointers and zero
// values mean "no filter".
type ForumCriteria struct {
	// Text is raw user input; it is turned into a prefix FTS5 query.
	Text      string
	AuthorID  *int64
	ParentID  *int64
	MessageID *int64
	// TopicOf restricts to the topic that contains this message.
	TopicOf      *int64
	OnlyTopics   bool
	ApprovedOnly bool
	NewestFirst  bool
}

// ForumRepository stores topics and replies.
type ForumRepository interface {
	// Create inserts msg and fills ID, TopicID and CreatedAt. A topic
	// (ParentID 0) becomes its own topic; a reply inherits its parent's.
	Create(ctx context.Context, msg *models.ForumMessage) error
	GetByID(ctx context.Context, id int64) (*models.ForumMessage, error)
	IncrementReplyCount(ctx context.Context, topicID int64) error
	Approve(ctx context.Context, id int64) error
	Search(ctx context.Context, c ForumCriteria, limit, offset int) ([]models.ForumMessage, error)
	Count(ctx context.Context, c ForumCriteria) (int, error)
}
