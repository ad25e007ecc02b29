package api

import (
	"errors"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
)

var (
	errNoIssuer        = errors.New("token issuance requires a shared secret")
	errMissingExpiry   = errors.New("token has no expiry")
	errMissingSubject  = errors.New("missing sub")
	errInvalidAudience = errors.New("invalid audience")
	errInvalidIssuer   = errors.New("invalid issuer")
)

// Auth issues and validates JWT identity tokens. The default mode signs and
// verifies HS256 tokens with a shared secret; deployments delegating identity
// to an external provider verify RS256 tokens against its JWKS instead and
// issue nothing.
type Auth struct {
	secret   []byte
	ttl      time.Duration
	jwks     *keyfunc.JWKS
	audience string
	issuer   string
	parser   *jwt.Parser
}

// NewAuth creates an Auth that signs its own HS256 tokens valid for ttl.
func NewAuth(secret []byte, ttl time.Duration) *Auth {
	return &Auth{
		secret: secret,
		ttl:    ttl,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
	}
}

// NewJWKSAuth creates a verify-only Auth backed by an external provider's
// key set.
func NewJWKSAuth(jwks *keyfunc.JWKS, audience, issuer string) *Auth {
	return &Auth{
		jwks:     jwks,
		audience: audience,
		issuer:   issuer,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{"RS256"})),
	}
}

// IssueToken signs a token identifying userID and returns it with its expiry.
func (a *Auth) IssueToken(userID string) (string, time.Time, error) {
	if len(a.secret) == 0 {
		return "", time.Time{}, errNoIssuer
	}
	now := time.Now()
	expiresAt := now.Add(a.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifyToken validates the token and returns the user identity it carries
// along with its expiry.
func (a *Auth) VerifyToken(tokenStr string) (string, time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := a.parser.ParseWithClaims(tokenStr, claims, a.keyForToken)
	if err != nil {
		return "", time.Time{}, err
	}
	if !parsed.Valid {
		return "", time.Time{}, jwt.ErrTokenUnverifiable
	}
	if claims.ExpiresAt == nil {
		return "", time.Time{}, errMissingExpiry
	}
	if a.audience != "" && !verifyAudience(claims.Audience, a.audience) {
		return "", time.Time{}, errInvalidAudience
	}
	if a.issuer != "" && claims.Issuer != a.issuer {
		return "", time.Time{}, errInvalidIssuer
	}
	if claims.Subject == "" {
		return "", time.Time{}, errMissingSubject
	}
	return claims.Subject, claims.ExpiresAt.Time, nil
}

func (a *Auth) keyForToken(token *jwt.Token) (any, error) {
	if a.jwks != nil {
		return a.jwks.Keyfunc(token)
	}
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("invalid signing method")
	}
	return a.secret, nil
}

func verifyAudience(audience jwt.ClaimStrings, expected string) bool {
	for _, aud := range audience {
		if aud == expected {
			return true
		}
	}
	return false
}
