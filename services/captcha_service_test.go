package services

import (
	"io/fs"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/forum/pkg/i18n"
)

// fixedIntn returns the queued values in order.
func fixedIntn(values ...int) func(int) int {
	return func(int) int {
		v := values[0]
		values = values[1:]
		return v
	}
}

func newTestCaptcha(t *testing.T, values ...int) *captchaService {
	t.Helper()
	locales, err := fs.Sub(i18n.EmbeddedLocales, "locales")
	require.NoError(t, err)
	require.NoError(t, i18n.Load(locales))

	svc := NewCaptchaService(time.Minute).(*captchaService)
	svc.intn = fixedIntn(values...)
	t.Cleanup(svc.Close)
	return svc
}

func TestCaptchaAddition(t *testing.T) {
	// a=3, b=5, op=+
	svc := newTestCaptcha(t, 2, 4, 0)

	c := svc.Generate("en")
	require.NotEmpty(t, c.ID)
	assert.Contains(t, c.Question, "3")
	assert.Contains(t, c.Question, "5")
	assert.True(t, c.ExpiresAt.After(time.Now()))

	assert.True(t, svc.Verify(c.ID, " 8 "))
}

func TestCaptchaSubtractionNeverNegative(t *testing.T) {
	// a=2, b=7, op=- swaps to 7-2
	svc := newTestCaptcha(t, 1, 6, 1)

	c := svc.Generate("en")
	assert.True(t, svc.Verify(c.ID, strconv.Itoa(5)))
}

func TestCaptchaIsOneShot(t *testing.T) {
	svc := newTestCaptcha(t, 0, 0, 0, 0, 0, 0)

	c := svc.Generate("en")
	assert.False(t, svc.Verify(c.ID, "3"))
	assert.False(t, svc.Verify(c.ID, "2"), "a wrong answer burns the challenge")

	c = svc.Generate("tr")
	assert.False(t, svc.Verify(c.ID, "two"))
	assert.False(t, svc.Verify("missing", "2"))
}
