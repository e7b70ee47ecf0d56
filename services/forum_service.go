package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/akinalp/forum/database"
	"github.com/akinalp/forum/models"
	"github.com/akinalp/forum/pkg"
	"github.com/akinalp/forum/pkg/cache"
	applog "github.com/akinalp/forum/pkg/log"
	"github.com/akinalp/forum/repository"
	"github.com/akinalp/forum/searchparams"
	"github.com/akinalp/forum/ws"
)

// ForumSearchResult is one page of a forum listing.
type ForumSearchResult struct {
	Request    searchparams.ForumSearch `json:"request"`
	Token      string                   `json:"token"`
	View       searchparams.View        `json:"view"`
	PageIndex  int                      `json:"page_index"`
	PageCount  int                      `json:"page_count"`
	TotalCount int                      `json:"total_count"`
	Messages   []models.ForumMessage    `json:"messages"`
}

// ForumService runs forum searches and posts messages.
type ForumService interface {
	Search(ctx context.Context, req searchparams.ForumSearch) (*ForumSearchResult, error)
	// News lists approved messages, newest first.
	News(ctx context.Context, pageIndex int) (*ForumSearchResult, error)
	GetMessage(ctx context.Context, id int64) (*models.ForumMessage, error)
	Post(ctx context.Context, authorID int64, req *models.CreateForumMessageRequest) (*models.ForumMessage, error)
	Approve(ctx context.Context, moderatorID, messageID int64) (*models.ForumMessage, error)
}

type forumService struct {
	db        *sql.DB
	forumRepo repository.ForumRepository
	userRepo  repository.UserRepository
	hub       ws.EventPublisher
	results   cache.ResultCache[*ForumSearchResult]
	sf        singleflight.Group
}

// NewForumService wires the service. db is needed for the posting
// transaction; forumRepo and userRepo serve the reads.
func NewForumService(
	db *sql.DB,
	forumRepo repository.ForumRepository,
	userRepo repository.UserRepository,
	hub ws.EventPublisher,
	results cache.ResultCache[*ForumSearchResult],
) ForumService {
	return &forumService{
		db:        db,
		forumRepo: forumRepo,
		userRepo:  userRepo,
		hub:       hub,
		results:   results,
	}
}

// Search validates req, then serves it from the result cache or the
// database. Identical concurrent searches (same canonical token) share one
// database round trip.
func (s *forumService) Search(ctx context.Context, req searchparams.ForumSearch) (*ForumSearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", pkg.ErrBadRequest, err)
	}
	req.PageIndex = searchparams.ForumPaging.ClampPage(req.PageIndex)

	key := "forum:" + req.Token()

	v, err, shared := s.sf.Do(key, func() (any, error) {
		// the result is shared: one caller going away must not cancel it
		ctx := context.WithoutCancel(ctx)

		gen := s.results.Generation(ctx)
		if cached, ok := s.results.Get(ctx, key); ok {
			return cached, nil
		}

		result, err := s.search(ctx, req)
		if err != nil {
			return nil, err
		}
		s.results.Set(ctx, gen, key, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		l := applog.Ctx(ctx)
		l.Debug().Str(applog.FieldToken, key).Msg("forum search shared in-flight result")
	}

	result, ok := v.(*ForumSearchResult)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight")
	}
	return result, nil
}

func (s *forumService) search(ctx context.Context, req searchparams.ForumSearch) (*ForumSearchResult, error) {
	result := &ForumSearchResult{
		PageIndex: req.PageIndex,
		Messages:  []models.ForumMessage{},
	}

	if req.ByUserLoginName != "" && req.ByUserID == searchparams.UnknownID {
		user, err := s.userRepo.GetByUsername(ctx, req.ByUserLoginName)
		switch {
		case errors.Is(err, pkg.ErrNotFound):
			// nobody by that name: nothing can match
			s.describe(result, req)
			return result, nil
		case err != nil:
			return nil, err
		}
		req.ByUserID = user.ID
	}

	criteria := forumCriteria(req)
	paging := searchparams.ForumPaging

	var total int
	var messages []models.ForumMessage

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.forumRepo.Count(gCtx, criteria)
		return err
	})
	g.Go(func() error {
		var err error
		messages, err = s.forumRepo.Search(gCtx, criteria, paging.PageSize, paging.Offset(req.PageIndex))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.describe(result, req)
	result.TotalCount = total
	result.PageCount = paging.PageCount(total)
	result.Messages = messages
	return result, nil
}

func (s *forumService) describe(result *ForumSearchResult, req searchparams.ForumSearch) {
	result.Request = req
	result.Token = req.Token()
	result.View = req.View()
}

// forumCriteria maps a validated request to repository filters. The three
// browsing views ignore free-text fields (they are empty by definition);
// everything else is a search, newest first.
func forumCriteria(req searchparams.ForumSearch) repository.ForumCriteria {
	base := req.BaseMessageID

	switch req.View() {
	case searchparams.ViewNavigation:
		return repository.ForumCriteria{ParentID: &base, OnlyTopics: req.OnlyTopics}
	case searchparams.ViewSingleMessage:
		return repository.ForumCriteria{MessageID: &base}
	case searchparams.ViewApproved:
		return repository.ForumCriteria{ApprovedOnly: true, NewestFirst: true}
	}

	c := repository.ForumCriteria{
		Text:         req.SearchText,
		OnlyTopics:   req.OnlyTopics,
		ApprovedOnly: req.IsApprovedOnly,
		NewestFirst:  true,
	}
	if req.ByUserID != searchparams.UnknownID {
		author := req.ByUserID
		c.AuthorID = &author
	}
	if base != searchparams.UnknownID {
		switch {
		case req.OnlyOneMessage:
			c.MessageID = &base
		case req.OnlyInCurrentTopic:
			c.TopicOf = &base
		}
	}
	return c
}

func (s *forumService) News(ctx context.Context, pageIndex int) (*ForumSearchResult, error) {
	req := searchparams.NewForumSearch()
	req.IsApprovedOnly = true
	req.PageIndex = pageIndex
	return s.Search(ctx, req)
}

func (s *forumService) GetMessage(ctx context.Context, id int64) (*models.ForumMessage, error) {
	return s.forumRepo.GetByID(ctx, id)
}

// Post stores a topic or reply. A reply also bumps its topic's reply count
// and the author's post count in the same transaction.
func (s *forumService) Post(ctx context.Context, authorID int64, req *models.CreateForumMessageRequest) (*models.ForumMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	msg := &models.ForumMessage{
		ParentID: req.ParentID,
		AuthorID: authorID,
		Title:    req.Title,
		Content:  req.Content,
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txForumRepo := repository.NewSQLiteForumRepo(tx)
		txUserRepo := repository.NewSQLiteUserRepo(tx)

		if err := txForumRepo.Create(ctx, msg); err != nil {
			return err
		}
		if !msg.IsTopic() {
			if err := txForumRepo.IncrementReplyCount(ctx, msg.TopicID); err != nil {
				return fmt.Errorf("failed to update topic: %w", err)
			}
		}
		return txUserRepo.IncrementPostCount(ctx, authorID)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.forumRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	s.results.Purge(ctx)
	s.hub.BroadcastToAll(ws.Event{Op: ws.OpForumMessageCreate, Data: messageEventData(created)})

	return created, nil
}

// Approve promotes a message to the news list. Only moderators may do it;
// approving twice is not an error.
func (s *forumService) Approve(ctx context.Context, moderatorID, messageID int64) (*models.ForumMessage, error) {
	moderator, err := s.userRepo.GetByID(ctx, moderatorID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user", pkg.ErrUnauthorized)
		}
		return nil, err
	}
	if !moderator.IsModerator {
		return nil, fmt.Errorf("%w: moderators only", pkg.ErrForbidden)
	}

	if err := s.forumRepo.Approve(ctx, messageID); err != nil {
		return nil, err
	}

	msg, err := s.forumRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	s.results.Purge(ctx)
	s.hub.BroadcastToAll(ws.Event{Op: ws.OpForumMessageApprove, Data: messageEventData(msg)})

	return msg, nil
}

func messageEventData(m *models.ForumMessage) ws.ForumMessageData {
	return ws.ForumMessageData{
		ID:       m.ID,
		ParentID: m.ParentID,
		TopicID:  m.TopicID,
		AuthorID: m.AuthorID,
		Title:    m.Title,
	}
}
