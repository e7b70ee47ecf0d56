package services

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/forum/models"
	"github.com/akinalp/forum/pkg/cache"
	"github.com/akinalp/forum/pkg/i18n"
)

// CaptchaService issues and checks arithmetic challenges. Rendering the
// question as an image is left to the client.
type CaptchaService interface {
	Generate(lang string) *models.CaptchaChallenge
	// Verify consumes the challenge whether or not the answer is right.
	Verify(id, answer string) bool
	Close()
}

type captchaService struct {
	answers *cache.TTLCache[string, int]
	ttl     time.Duration
	intn    func(n int) int
}

func NewCaptchaService(ttl time.Duration) CaptchaService {
	return &captchaService{
		answers: cache.New[string, int](ttl, time.Minute),
		ttl:     ttl,
		intn:    rand.IntN,
	}
}

func (s *captchaService) Generate(lang string) *models.CaptchaChallenge {
	a := s.intn(9) + 1
	b := s.intn(9) + 1
	op, answer := "+", a+b
	if s.intn(2) == 1 {
		if a < b {
			a, b = b, a
		}
		op, answer = "-", a-b
	}

	id := uuid.NewString()
	s.answers.Set(id, answer)

	question := i18n.NewLocalizer(lang).TWithParams("captcha.question", map[string]string{
		"a":  strconv.Itoa(a),
		"op": op,
		"b":  strconv.Itoa(b),
	})

	return &models.CaptchaChallenge{
		ID:        id,
		Question:  question,
		ExpiresAt: time.Now().Add(s.ttl),
	}
}

func (s *captchaService) Verify(id, answer string) bool {
	expected, ok := s.answers.Take(id)
	if !ok {
		return false
	}
	got, err := strconv.Atoi(strings.TrimSpace(answer))
	return err == nil && got == expected
}

func (s *captchaService) Close() {
	s.answers.Close()
}
