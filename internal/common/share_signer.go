package common

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ShareToken is a validated share-link token for one record's GeoJSON.
type ShareToken struct {
	RecordID  string
	TokenID   string
	ExpiresAt time.Time
}

// ErrTokenUsed is returned when a share token has already been consumed.
var ErrTokenUsed = errors.New("token already used")

// ShareSignerService mints and validates presigned GeoJSON share links.
// Tokens are single-use; consumed token IDs are tracked in the cache
// (Redis in production) until they would have expired anyway. The mutex
// makes the check-then-mark in Consume atomic within this process.
type ShareSignerService struct {
	secretKey []byte
	used      CacheInterface

	mu sync.Mutex
}

func NewShareSignerService(secretKey []byte, used CacheInterface) *ShareSignerService {
	return &ShareSignerService{
		secretKey: secretKey,
		used:      used,
	}
}

// Sign generates a share token for a record
func (s *ShareSignerService) Sign(recordID string, ttl time.Duration) (string, error) {
	tokenID := uuid.New().String()
	expiresAt := time.Now().Add(ttl)

	claims := jwt.MapClaims{
		"record_id": recordID,
		"jti":       tokenID,
		"exp":       expiresAt.Unix(),
		"iat":       time.Now().Unix(),
	}

	// Sign with HMAC
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate parses a share token and enforces expiry and single use.
func (s *ShareSignerService) Validate(tokenString string) (*ShareToken, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	recordID, ok := (*claims)["record_id"].(string)
	if !ok {
		return nil, errors.New("missing or invalid record_id claim")
	}

	tokenID, ok := (*claims)["jti"].(string)
	if !ok {
		return nil, errors.New("missing or invalid jti claim")
	}

	expFloat, ok := (*claims)["exp"].(float64)
	if !ok {
		return nil, errors.New("missing or invalid exp claim")
	}
	expiresAt := time.Unix(int64(expFloat), 0)

	if time.Now().After(expiresAt) {
		return nil, errors.New("token expired")
	}

	if _, found := s.used.Get("used_token:" + tokenID); found {
		return nil, ErrTokenUsed
	}

	return &ShareToken{
		RecordID:  recordID,
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
	}, nil
}

// Consume marks a token as used, failing if it already was. The check and
// the mark happen under one lock so two concurrent requests with the same
// token cannot both succeed.
func (s *ShareSignerService) Consume(tok *ShareToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.used.Get("used_token:" + tok.TokenID); found {
		return ErrTokenUsed
	}

	ttl := time.Until(tok.ExpiresAt)
	if ttl < time.Minute {
		ttl = time.Minute
	}
	s.used.Set("used_token:"+tok.TokenID, "1", ttl)
	return nil
}

// Release returns a consumed token, for when serving the document failed
// after Consume and the link should stay valid.
func (s *ShareSignerService) Release(tok *ShareToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used.Delete("used_token:" + tok.TokenID)
}
