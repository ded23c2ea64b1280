package token

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod defines a public type used by credauth APIs.
//
// SigningMethod instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SigningMethod string

const (
	// MethodHS256 is an exported constant or variable used by the token codec.
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 is an exported constant or variable used by the token codec.
	MethodEd25519 SigningMethod = "ed25519"
)

// Kind distinguishes the two token shapes the codec issues.
type Kind string

const (
	// KindAccess is an exported constant or variable used by the token codec.
	KindAccess Kind = "access"
	// KindRefresh is an exported constant or variable used by the token codec.
	KindRefresh Kind = "refresh"
)

var (
	// ErrInvalid indicates a token whose signature does not verify against
	// the current key, or that is structurally malformed, or whose kind does
	// not match the operation. Clients must force a re-login.
	ErrInvalid = errors.New("token invalid")
	// ErrExpired indicates a structurally valid, correctly signed token
	// whose expiry has passed. Clients may silently refresh.
	ErrExpired = errors.New("token expired")
)

// Config defines a public type used by credauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
	Roles         []string // optional static roles claim, not interpreted here

	// Now overrides the codec clock. Nil means time.Now. Issue and verify
	// both consult it so expiry behavior is fully testable.
	Now func() time.Time
}

// Claims is the claim set carried by every credauth token.
type Claims struct {
	Kind  Kind     `json:"knd"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies compact, self-contained session tokens. A codec
// uses one fixed signing method and key for its whole lifetime; key rotation
// means constructing a new codec.
//
// Codec instances are safe for concurrent use.
type Codec struct {
	config Config
	now    func() time.Time
}

// NewCodec validates cfg and constructs a Codec.
//
// NewCodec may return an error when TTLs are non-positive, the signing
// method is unsupported, or the key material does not fit the method.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid AccessTTL configuration")
	}
	if cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid RefreshTTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires signing key")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key")
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Codec{config: cfg, now: now}, nil
}

// IssueAccess signs a short-lived access token asserting accountID.
func (c *Codec) IssueAccess(accountID string) (string, error) {
	return c.issue(accountID, KindAccess, c.config.AccessTTL)
}

// IssueRefresh signs a long-lived refresh token asserting accountID.
func (c *Codec) IssueRefresh(accountID string) (string, error) {
	return c.issue(accountID, KindRefresh, c.config.RefreshTTL)
}

func (c *Codec) issue(accountID string, kind Kind, ttl time.Duration) (string, error) {
	if strings.TrimSpace(accountID) == "" {
		return "", errors.New("empty token subject")
	}

	now := c.now()
	claims := Claims{
		Kind:  kind,
		Roles: c.config.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    c.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(c.getMethod(), claims)

	signKey, err := c.getSignKey()
	if err != nil {
		return "", err
	}
	return tok.SignedString(signKey)
}

// Verify checks signature and expiry and returns the asserted account
// identifier and token kind. Failure is always ErrExpired or ErrInvalid;
// the two are disjoint so callers can branch on errors.Is.
func (c *Codec) Verify(tokenStr string) (string, Kind, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.getMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.getMethod().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return c.getVerifyKey()
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrExpired
		}
		return "", "", ErrInvalid
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return "", "", ErrInvalid
	}
	if claims.Subject == "" {
		return "", "", ErrInvalid
	}
	switch claims.Kind {
	case KindAccess, KindRefresh:
	default:
		return "", "", ErrInvalid
	}

	return claims.Subject, claims.Kind, nil
}

// RefreshAccess verifies refreshToken and issues a new access token for the
// recovered subject. The refresh token itself is returned to the caller
// unchanged and stays valid until its own expiry (no rotation).
func (c *Codec) RefreshAccess(refreshToken string) (string, error) {
	subject, kind, err := c.Verify(refreshToken)
	if err != nil {
		return "", err
	}
	if kind != KindRefresh {
		return "", ErrInvalid
	}
	return c.IssueAccess(subject)
}

func (c *Codec) getMethod() jwt.SigningMethod {
	switch c.config.SigningMethod {
	case MethodEd25519:
		return jwt.SigningMethodEdDSA
	default:
		return jwt.SigningMethodHS256
	}
}

func (c *Codec) getSignKey() (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodEd25519:
		return parseEdPrivateKey(c.config.PrivateKey)
	default:
		return c.config.PrivateKey, nil
	}
}

func (c *Codec) getVerifyKey() (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodEd25519:
		return parseEdPublicKey(c.config.PublicKey)
	default:
		return c.config.PrivateKey, nil
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
