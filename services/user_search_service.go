package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/akinalp/forum/models"
	"github.com/akinalp/forum/pkg"
	"github.com/akinalp/forum/pkg/cache"
	"github.com/akinalp/forum/repository"
	"github.com/akinalp/forum/searchparams"
)

const top10Size = 10

// UserSearchResult is one page of the member directory.
type UserSearchResult struct {
	Request    searchparams.UserSearch `json:"request"`
	Token      string                  `json:"token"`
	PageIndex  int                     `json:"page_index"`
	PageCount  int                     `json:"page_count"`
	TotalCount int                     `json:"total_count"`
	Users      []models.User           `json:"users"`
}

// Top10Result is a member ranking.
type Top10Result struct {
	Request searchparams.Top10Search `json:"request"`
	Token   string                   `json:"token"`
	Users   []models.UserStat        `json:"users"`
}

type UserSearchService interface {
	Search(ctx context.Context, req searchparams.UserSearch) (*UserSearchResult, error)
	Top10(ctx context.Context, req searchparams.Top10Search) (*Top10Result, error)
}

type userSearchService struct {
	userRepo repository.UserRepository
	rankings cache.ResultCache[*Top10Result]
	sf       singleflight.Group
}

// NewUserSearchService caches only the rankings: the directory depends on
// presence, which changes too often to cache.
func NewUserSearchService(userRepo repository.UserRepository, rankings cache.ResultCache[*Top10Result]) UserSearchService {
	return &userSearchService{
		userRepo: userRepo,
		rankings: rankings,
	}
}

func (s *userSearchService) Search(ctx context.Context, req searchparams.UserSearch) (*UserSearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", pkg.ErrBadRequest, err)
	}

	paging := searchparams.UserPaging
	req.PageIndex = paging.ClampPage(req.PageIndex)
	criteria := repository.UserCriteria{Text: req.SearchText, OnlyOnline: req.OnlyOnline}

	var total int
	var users []models.User

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.userRepo.CountMatching(gCtx, criteria)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.userRepo.Search(gCtx, criteria, paging.PageSize, paging.Offset(req.PageIndex))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &UserSearchResult{
		Request:    req,
		Token:      req.Token(),
		PageIndex:  req.PageIndex,
		PageCount:  paging.PageCount(total),
		TotalCount: total,
		Users:      users,
	}, nil
}

func (s *userSearchService) Top10(ctx context.Context, req searchparams.Top10Search) (*Top10Result, error) {
	req.Normalize()
	key := "top10:" + req.Token()

	v, err, _ := s.sf.Do(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)

		gen := s.rankings.Generation(ctx)
		if cached, ok := s.rankings.Get(ctx, key); ok {
			return cached, nil
		}

		var users []models.UserStat
		var err error
		switch req.Criterion {
		case searchparams.Top10ByLogins:
			users, err = s.userRepo.TopByLogins(ctx, req.SinceDays, top10Size)
		default:
			users, err = s.userRepo.TopByPosts(ctx, req.SinceDays, top10Size)
		}
		if err != nil {
			return nil, err
		}

		result := &Top10Result{Request: req, Token: req.Token(), Users: users}
		s.rankings.Set(ctx, gen, key, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}

	result, ok := v.(*Top10Result)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight")
	}
	return result, nil
}
