package tokens

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNoSecret = errors.New("signing secret is not configured")
	ErrInvalid  = errors.New("invalid token")
	ErrExpired  = errors.New("token expired")
)

const DefaultTTL = 24 * time.Hour

type SessionClaims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// UserID parses the subject back into the repository id.
func (c *SessionClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}
	return uint(id), nil
}

// Codec signs and verifies self-contained session tokens. Sessions are fully
// stateless: the token carries the claims and its own expiry, nothing is
// stored server-side.
type Codec struct {
	Secret []byte
	TTL    time.Duration
}

func (cd *Codec) ttl() time.Duration {
	if cd.TTL != 0 {
		return cd.TTL
	}
	return DefaultTTL
}

func (cd *Codec) Issue(userID uint, username string, isAdmin bool) (string, error) {
	if len(cd.Secret) == 0 {
		return "", ErrNoSecret
	}

	now := time.Now()
	claims := SessionClaims{
		Username: username,
		IsAdmin:  isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cd.ttl())),
			ID:        uuid.NewString(),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(cd.Secret)
}

func (cd *Codec) Verify(raw string) (*SessionClaims, error) {
	if len(cd.Secret) == 0 {
		return nil, ErrNoSecret
	}

	var claims SessionClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return cd.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tkn.Valid {
		return nil, ErrInvalid
	}
	return &claims, nil
}
