package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/forum/models"
	"github.com/akinalp/forum/pkg/cache"
	"github.com/akinalp/forum/repository"
	"github.com/akinalp/forum/searchparams"
)

// pausingForumRepo holds one Search call after it has read its page until
// the test releases it, then reports the caller's context error if any.
type pausingForumRepo struct {
	repository.ForumRepository
	armed   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func (r *pausingForumRepo) Search(ctx context.Context, c repository.ForumCriteria, limit, offset int) ([]models.ForumMessage, error) {
	msgs, err := r.ForumRepository.Search(ctx, c, limit, offset)
	if r.armed.CompareAndSwap(true, false) {
		r.read <- struct{}{}
		<-r.release
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
	}
	return msgs, err
}

type pausedSearch struct {
	svc   ForumService
	repo  *pausingForumRepo
	alice *models.User
}

func newPausedSearch(t *testing.T) *pausedSearch {
	t.Helper()
	db := openTestDB(t)

	users := repository.NewSQLiteUserRepo(db.Conn)
	repo := &pausingForumRepo{
		ForumRepository: repository.NewSQLiteForumRepo(db.Conn),
		read:            make(chan struct{}),
		release:         make(chan struct{}),
	}
	results := cache.NewMemoryResultCache[*ForumSearchResult](time.Minute)
	t.Cleanup(func() { results.Close() })

	p := &pausedSearch{
		svc:   NewForumService(db.Conn, repo, users, &recorder{}, results),
		repo:  repo,
		alice: seedUser(t, users, "alice"),
	}
	_, err := p.svc.Post(context.Background(), p.alice.ID, &models.CreateForumMessageRequest{Title: "First", Content: "one"})
	require.NoError(t, err)
	return p
}

type searchOutcome struct {
	result *ForumSearchResult
	err    error
}

func (p *pausedSearch) start(ctx context.Context) <-chan searchOutcome {
	p.repo.armed.Store(true)
	done := make(chan searchOutcome, 1)
	go func() {
		res, err := p.svc.Search(ctx, searchparams.BrowseRoot())
		done <- searchOutcome{res, err}
	}()
	<-p.repo.read
	return done
}

func TestSearchDoesNotCacheResultReadBeforePost(t *testing.T) {
	p := newPausedSearch(t)
	ctx := context.Background()

	done := p.start(ctx)

	_, err := p.svc.Post(ctx, p.alice.ID, &models.CreateForumMessageRequest{Title: "Second", Content: "two"})
	require.NoError(t, err)

	close(p.repo.release)
	first := <-done
	require.NoError(t, first.err)
	assert.Len(t, first.result.Messages, 1, "the paused search read before the post")

	res, err := p.svc.Search(ctx, searchparams.BrowseRoot())
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)
	assert.Len(t, res.Messages, 2)
}

func TestSharedSearchSurvivesCallerCancel(t *testing.T) {
	p := newPausedSearch(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := p.start(ctx)

	cancel()
	close(p.repo.release)

	out := <-done
	require.NoError(t, out.err)
	assert.Len(t, out.result.Messages, 1)
}
