package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// SessionCookieName is the cookie that carries the signed session token.
	SessionCookieName = "inkwell_session"

	tokenIssuer   = "inkwell"
	tokenAudience = "inkwell-web"
)

// ErrInvalidSession is returned for missing, expired or tampered session tokens.
var ErrInvalidSession = errors.New("invalid session")

// Identity is the authenticated user behind a request. A nil *Identity means anonymous.
type Identity struct {
	UserID    uint
	Username  string
	Email     string
	SessionID string
	ExpiresAt time.Time
}

// Authenticated reports whether i carries a logged-in user.
func (i *Identity) Authenticated() bool {
	return i != nil && i.UserID != 0
}

// SessionManager signs and verifies session tokens with an HMAC secret.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued sessions.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a signed token for user.
func (m *SessionManager) Issue(user *models.User) (string, *Identity, error) {
	now := m.now()
	id := &Identity{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		SessionID: uuid.NewString(),
		ExpiresAt: now.Add(m.ttl),
	}

	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"email":    user.Email,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      id.ExpiresAt.Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      id.SessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	return signed, id, nil
}

// Parse verifies tokenString and returns the identity it carries.
func (m *SessionManager) Parse(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrInvalidSession
	}

	token, err := jwt.Parse(tokenString, func(_ *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidSession
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidSession
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, ErrInvalidSession
	}
	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidSession
	}

	return &Identity{
		UserID:    uint(userID),
		Username:  username,
		Email:     email,
		SessionID: jti,
		ExpiresAt: exp.Time,
	}, nil
}
