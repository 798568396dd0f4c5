package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"

	"github.com/smallbiznis/prepquiz/internal/domain"
)

// MinSecretLength is the shortest accepted HS256 secret, in bytes.
const MinSecretLength = 32

// Kind selects the secret and lifetime used for a token.
type Kind int

const (
	Access Kind = iota
	Refresh
)

func (k Kind) String() string {
	switch k {
	case Access:
		return "access"
	case Refresh:
		return "refresh"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var (
	// ErrExpired is matched by Verify errors for correctly signed tokens
	// whose expiry has passed.
	ErrExpired = gojwt.ErrExpired
	// ErrMissingClaims is returned when the identity lacks a name or email.
	ErrMissingClaims = errors.New("jwt: name and email claims are required")
	// ErrUnknownKind is returned for a Kind the issuer was not configured with.
	ErrUnknownKind = errors.New("jwt: unknown token kind")
)

// KeyConfig holds the secret and lifetime for one token kind.
type KeyConfig struct {
	Secret []byte
	TTL    time.Duration
}

// Options configures an Issuer.
type Options struct {
	Issuer  string
	Access  KeyConfig
	Refresh KeyConfig
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Issuer signs and verifies identity tokens.
type Issuer struct {
	issuer string
	keys   map[Kind]KeyConfig
	now    func() time.Time
}

// identityClaims is the private claim set carried next to the registered claims.
type identityClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewIssuer validates the secrets and constructs an Issuer.
func NewIssuer(opts Options) (*Issuer, error) {
	for kind, key := range map[Kind]KeyConfig{Access: opts.Access, Refresh: opts.Refresh} {
		if len(key.Secret) < MinSecretLength {
			return nil, fmt.Errorf("%s secret must be at least %d bytes", kind, MinSecretLength)
		}
		if key.TTL <= 0 {
			return nil, fmt.Errorf("%s ttl must be positive", kind)
		}
	}
	if string(opts.Access.Secret) == string(opts.Refresh.Secret) {
		return nil, errors.New("access and refresh secrets must differ")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Issuer{
		issuer: opts.Issuer,
		keys:   map[Kind]KeyConfig{Access: opts.Access, Refresh: opts.Refresh},
		now:    now,
	}, nil
}

// TTL returns the configured lifetime for kind.
func (i *Issuer) TTL(kind Kind) time.Duration {
	return i.keys[kind].TTL
}

// Issue signs identity as a token of the given kind.
func (i *Issuer) Issue(identity domain.Identity, kind Kind) (string, error) {
	if strings.TrimSpace(identity.Name) == "" || strings.TrimSpace(identity.Email) == "" {
		return "", ErrMissingClaims
	}
	key, ok := i.keys[kind]
	if !ok {
		return "", ErrUnknownKind
	}

	signer, err := gojose.NewSigner(gojose.SigningKey{Algorithm: gojose.HS256, Key: key.Secret}, (&gojose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return "", fmt.Errorf("new signer: %w", err)
	}

	now := i.now().UTC()
	std := gojwt.Claims{
		Subject:   identity.Email,
		Issuer:    i.issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		NotBefore: gojwt.NewNumericDate(now),
		Expiry:    gojwt.NewNumericDate(now.Add(key.TTL)),
	}
	custom := identityClaims{Name: identity.Name, Email: identity.Email}

	token, err := gojwt.Signed(signer).Claims(std).Claims(custom).Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize jwt: %w", err)
	}
	return token, nil
}

// Verify checks the signature, issuer and expiry of token against the
// secret for kind and returns the identity it carries.
func (i *Issuer) Verify(token string, kind Kind) (domain.Identity, error) {
	key, ok := i.keys[kind]
	if !ok {
		return domain.Identity{}, ErrUnknownKind
	}

	parsed, err := gojwt.ParseSigned(token, []gojose.SignatureAlgorithm{gojose.HS256})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("parse token: %w", err)
	}

	var (
		std    gojwt.Claims
		custom identityClaims
	)
	if err := parsed.Claims(key.Secret, &std, &custom); err != nil {
		return domain.Identity{}, fmt.Errorf("verify token: %w", err)
	}
	if err := std.ValidateWithLeeway(gojwt.Expected{Issuer: i.issuer, Time: i.now()}, 0); err != nil {
		return domain.Identity{}, fmt.Errorf("validate claims: %w", err)
	}
	if custom.Name == "" || custom.Email == "" {
		return domain.Identity{}, ErrMissingClaims
	}

	return domain.Identity{Name: custom.Name, Email: custom.Email}, nil
}
