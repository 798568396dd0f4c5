package jwt_test

import (
	"strings"
	"testing"
	"time"

	gojwt "github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/prepquiz/internal/domain"
	customjwt "github.com/smallbiznis/prepquiz/internal/jwt"
)

var (
	accessSecret  = []byte(strings.Repeat("a", 32))
	refreshSecret = []byte(strings.Repeat("r", 32))
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newIssuer(t *testing.T, c *clock) *customjwt.Issuer {
	t.Helper()
	issuer, err := customjwt.NewIssuer(customjwt.Options{
		Issuer:  "prepquiz",
		Access:  customjwt.KeyConfig{Secret: accessSecret, TTL: time.Hour},
		Refresh: customjwt.KeyConfig{Secret: refreshSecret, TTL: 24 * time.Hour},
		Now:     c.Now,
	})
	require.NoError(t, err)
	return issuer
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	c := &clock{now: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newIssuer(t, c)
	identity := domain.Identity{Name: "Ada", Email: "ada@example.com"}

	for _, kind := range []customjwt.Kind{customjwt.Access, customjwt.Refresh} {
		token, err := issuer.Issue(identity, kind)
		require.NoError(t, err)

		got, err := issuer.Verify(token, kind)
		require.NoError(t, err, kind.String())
		require.Equal(t, identity, got)
	}
}

func TestAccessTokenExpiresAfterTTL(t *testing.T) {
	c := &clock{now: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newIssuer(t, c)

	token, err := issuer.Issue(domain.Identity{Name: "Ada", Email: "ada@example.com"}, customjwt.Access)
	require.NoError(t, err)

	c.now = c.now.Add(59 * time.Minute)
	_, err = issuer.Verify(token, customjwt.Access)
	require.NoError(t, err)

	c.now = c.now.Add(2 * time.Minute)
	_, err = issuer.Verify(token, customjwt.Access)
	require.ErrorIs(t, err, gojwt.ErrExpired)
	require.ErrorIs(t, err, customjwt.ErrExpired)

	_, err = issuer.Verify(token, customjwt.Refresh)
	require.NotErrorIs(t, err, customjwt.ErrExpired)
}

func TestRefreshTokenOutlivesAccessToken(t *testing.T) {
	c := &clock{now: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newIssuer(t, c)

	token, err := issuer.Issue(domain.Identity{Name: "Ada", Email: "ada@example.com"}, customjwt.Refresh)
	require.NoError(t, err)

	c.now = c.now.Add(23 * time.Hour)
	_, err = issuer.Verify(token, customjwt.Refresh)
	require.NoError(t, err)

	c.now = c.now.Add(2 * time.Hour)
	_, err = issuer.Verify(token, customjwt.Refresh)
	require.ErrorIs(t, err, gojwt.ErrExpired)
}

func TestVerifyRejectsOtherKindSecret(t *testing.T) {
	issuer := newIssuer(t, &clock{now: time.Now()})

	refresh, err := issuer.Issue(domain.Identity{Name: "Ada", Email: "ada@example.com"}, customjwt.Refresh)
	require.NoError(t, err)

	_, err = issuer.Verify(refresh, customjwt.Access)
	require.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := newIssuer(t, &clock{now: time.Now()})

	_, err := issuer.Verify("not-a-jwt", customjwt.Access)
	require.Error(t, err)
}

func TestIssueRequiresBothClaims(t *testing.T) {
	issuer := newIssuer(t, &clock{now: time.Now()})

	_, err := issuer.Issue(domain.Identity{Email: "ada@example.com"}, customjwt.Access)
	require.ErrorIs(t, err, customjwt.ErrMissingClaims)

	_, err = issuer.Issue(domain.Identity{Name: "Ada"}, customjwt.Refresh)
	require.ErrorIs(t, err, customjwt.ErrMissingClaims)
}

func TestNewIssuerValidatesSecrets(t *testing.T) {
	_, err := customjwt.NewIssuer(customjwt.Options{
		Access:  customjwt.KeyConfig{Secret: []byte("short"), TTL: time.Hour},
		Refresh: customjwt.KeyConfig{Secret: refreshSecret, TTL: time.Hour},
	})
	require.Error(t, err)

	_, err = customjwt.NewIssuer(customjwt.Options{
		Access:  customjwt.KeyConfig{Secret: accessSecret, TTL: time.Hour},
		Refresh: customjwt.KeyConfig{Secret: accessSecret, TTL: time.Hour},
	})
	require.Error(t, err)

	_, err = customjwt.NewIssuer(customjwt.Options{
		Access:  customjwt.KeyConfig{Secret: accessSecret},
		Refresh: customjwt.KeyConfig{Secret: refreshSecret, TTL: time.Hour},
	})
	require.Error(t, err)
}
