package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTokenPurpose = "session"

var (
	ErrSessionTokenMissing = errors.New("missing session token")
	ErrSessionTokenInvalid = errors.New("invalid session token")
)

// SessionClaims is the signed cookie payload. SessionID is the opaque key of
// the auth_sessions row.
type SessionClaims struct {
	SessionID string `json:"sid"`
	Purpose   string `json:"purpose"`
	jwt.RegisteredClaims
}

func BuildSessionToken(secretKey []byte, sessionID string, expiresAt time.Time, now time.Time) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrSessionTokenInvalid
	}
	claims := SessionClaims{
		SessionID: sessionID,
		Purpose:   sessionTokenPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// ParseSessionToken verifies the signature and returns the session id. The
// row itself decides whether the session is still alive, so the JWT expiry
// is checked by the library only.
func ParseSessionToken(secretKey []byte, rawToken string) (string, error) {
	if strings.TrimSpace(rawToken) == "" {
		return "", ErrSessionTokenMissing
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return secretKey, nil
	})
	if err != nil || !token.Valid {
		return "", ErrSessionTokenInvalid
	}
	if claims.Purpose != sessionTokenPurpose || strings.TrimSpace(claims.SessionID) == "" {
		return "", ErrSessionTokenInvalid
	}
	return claims.SessionID, nil
}
