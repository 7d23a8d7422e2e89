package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired indicates a well-formed token whose expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers every other verification failure: malformed
	// token, wrong algorithm, or tampered signature.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrMissingAuthHeader indicates the Authorization header was absent.
	ErrMissingAuthHeader = errors.New("missing authorization header")
	// ErrInvalidAuthScheme indicates an Authorization scheme other than Bearer.
	ErrInvalidAuthScheme = errors.New("invalid authorization scheme")
)

// Claims is the signed payload carried inside a session token.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// UserID returns the token subject as a numeric user id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return id, nil
}

// TokenService issues and verifies signed, time-limited identity tokens.
// Tokens are self-contained; nothing is stored server-side.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token asserting (userID, username) valid for the service TTL.
func (s *TokenService) Issue(userID int64, username string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
		},
		Username: username,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token, returning its claims. Surrounding
// whitespace is stripped first; tokens arriving via headers sometimes carry
// stray spaces. Expired tokens yield ErrTokenExpired, everything else
// ErrTokenInvalid.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ExtractBearer pulls the token out of an Authorization header value.
// The scheme is matched case-insensitively and the remainder is trimmed,
// so "Bearer  abc" yields "abc".
func ExtractBearer(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", ErrMissingAuthHeader
	}
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidAuthScheme
	}
	return strings.TrimSpace(token), nil
}
