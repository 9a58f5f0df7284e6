package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	DefaultAccessTTL  = 24 * time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// ErrInvalid indicates a token failed signature, structure, type or expiry checks.
var ErrInvalid = errors.New("invalid token")

// Subject is the identity an access token is issued for.
type Subject struct {
	ID          string
	Email       string
	Role        string
	Permissions []string
}

// Claims is the claim set carried by both token kinds. Refresh tokens only
// populate the subject and the type.
type Claims struct {
	Email       string   `json:"email,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Type        string   `json:"type"`
	jwt.RegisteredClaims
}

// Identity returns the subject encoded in the claims.
func (c *Claims) Identity() Subject {
	return Subject{
		ID:          c.RegisteredClaims.Subject,
		Email:       c.Email,
		Role:        c.Role,
		Permissions: c.Permissions,
	}
}

// Config configures an Issuer. Zero TTLs select the defaults; a negative TTL
// produces tokens that are already expired.
//
// To build an expired token use a negative TTL, not zero.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// Issuer signs and verifies access and refresh tokens. It holds no mutable
// state and is safe for concurrent use.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// NewIssuer validates cfg and returns an Issuer.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}

	i := &Issuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           cfg.Now,
	}
	if i.accessTTL == 0 {
		i.accessTTL = DefaultAccessTTL
	}
	if i.refreshTTL == 0 {
		i.refreshTTL = DefaultRefreshTTL
	}
	if i.now == nil {
		i.now = time.Now
	}
	return i, nil
}

// AccessTTL returns the lifetime of issued access tokens.
func (i *Issuer) AccessTTL() time.Duration {
	return i.accessTTL
}

// IssueAccessToken returns a signed access token for s.
func (i *Issuer) IssueAccessToken(s Subject) (string, error) {
	if s.ID == "" {
		return "", errors.New("subject id is required")
	}
	claims := &Claims{
		Email:            s.Email,
		Role:             s.Role,
		Permissions:      s.Permissions,
		Type:             TypeAccess,
		RegisteredClaims: i.registered(s.ID, i.accessTTL),
	}
	return i.sign(claims, i.accessSecret)
}

// IssueRefreshToken returns a signed refresh token for the subject id. It is
// signed with the refresh secret.
func (i *Issuer) IssueRefreshToken(subjectID string) (string, error) {
	if subjectID == "" {
		return "", errors.New("subject id is required")
	}
	claims := &Claims{
		Type:             TypeRefresh,
		RegisteredClaims: i.registered(subjectID, i.refreshTTL),
	}
	return i.sign(claims, i.refreshSecret)
}

// Verify checks tokenString against secret. It fails closed: the claims are
// only returned when the signature, the structure and the expiry are all valid.
func (i *Issuer) Verify(tokenString, secret string) (*Claims, bool) {
	claims, err := i.parse(tokenString, []byte(secret))
	if err != nil {
		return nil, false
	}
	return claims, true
}

// VerifyAccess verifies an access token with the access secret.
func (i *Issuer) VerifyAccess(tokenString string) (*Claims, error) {
	return i.verifyType(tokenString, i.accessSecret, TypeAccess)
}

// VerifyRefresh verifies a refresh token with the refresh secret.
func (i *Issuer) VerifyRefresh(tokenString string) (*Claims, error) {
	return i.verifyType(tokenString, i.refreshSecret, TypeRefresh)
}

func (i *Issuer) verifyType(tokenString string, secret []byte, typ string) (*Claims, error) {
	claims, err := i.parse(tokenString, secret)
	if err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalid, typ, claims.Type)
	}
	return claims, nil
}

func (i *Issuer) parse(tokenString string, secret []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalid)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)

	claims := &Claims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !tok.Valid || claims.RegisteredClaims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalid)
	}
	return claims, nil
}

func (i *Issuer) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := i.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (i *Issuer) sign(claims *Claims, secret []byte) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
