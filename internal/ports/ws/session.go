package ws

import (
	"errors"
	"fmt"
	"time"

	"coinche/internal/app"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

const sessionTTL = 24 * time.Hour

var (
	ErrNoSessionSecret = errors.New("session secret is empty")
	ErrInvalidSession  = errors.New("invalid session token")
)

// Identity is the player behind a session token.
type Identity struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// SessionIssuer signs and verifies HS256 session tokens.
type SessionIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewSessionIssuer(secret string) *SessionIssuer {
	return &SessionIssuer{secret: []byte(secret), now: time.Now}
}

// Issue creates a new identity for name and signs it.
func (s *SessionIssuer) Issue(name string) (string, Identity, error) {
	if len(s.secret) == 0 {
		return "", Identity{}, ErrNoSessionSecret
	}
	id := Identity{UserID: uuid.NewString(), Name: app.CleanName(name)}
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  id.UserID,
		"name": id.Name,
		"iat":  now.Unix(),
		"exp":  now.Add(sessionTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", Identity{}, fmt.Errorf("sign session: %w", err)
	}
	return token, id, nil
}

// Verify checks the token signature and expiry and returns its identity.
func (s *SessionIssuer) Verify(tokenString string) (Identity, error) {
	if len(s.secret) == 0 {
		return Identity{}, ErrNoSessionSecret
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidSession
	}
	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	if sub == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidSession)
	}
	return Identity{UserID: sub, Name: app.CleanName(name)}, nil
}
