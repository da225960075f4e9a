package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/shared"
)

const (
	TokenKey          = "reddit_auth_token"
	TokenTimestampKey = "reddit_auth_timestamp"
)

// TokenStore persists the single authorization token record.
type TokenStore struct {
	settings *SettingsRepository
	now      func() time.Time
	logger   *log.Logger
}

// NewTokenStore creates a store over settings. A nil clock uses [time.Now].
func NewTokenStore(settings *SettingsRepository, now func() time.Time, logger *log.Logger) *TokenStore {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TokenStore{settings: settings, now: now, logger: logger}
}

// Save stores tok with the current time as its issue timestamp.
func (s *TokenStore) Save(tok models.AuthToken) error {
	if tok.AccessToken == "" {
		return fmt.Errorf("%w: access token is empty", shared.ErrInvalidInput)
	}
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return s.settings.SetMany(map[string]string{
		TokenKey:          string(raw),
		TokenTimestampKey: strconv.FormatInt(s.now().UnixMilli(), 10),
	})
}

// Get returns the stored token, or nil when none is stored or it has expired.
//
// An expired or unreadable record is cleared as a side effect.
func (s *TokenStore) Get() (*models.AuthToken, error) {
	raw, err := s.settings.Get(TokenKey)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	stamp, err := s.settings.Get(TokenTimestampKey)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	var tok models.AuthToken
	issued, perr := strconv.ParseInt(stamp, 10, 64)
	if err != nil || perr != nil || json.Unmarshal([]byte(raw), &tok) != nil {
		s.logger.Warn("discarding unreadable auth token")
		return nil, s.Clear()
	}

	age := s.now().Sub(time.UnixMilli(issued))
	if age > time.Duration(tok.ExpiresIn)*time.Second {
		s.logger.Debug("auth token expired", "age", age)
		return nil, s.Clear()
	}
	return &tok, nil
}

// IssuedAt returns when the stored token was saved.
func (s *TokenStore) IssuedAt() (time.Time, error) {
	stamp, err := s.settings.Get(TokenTimestampKey)
	if err != nil {
		return time.Time{}, err
	}
	ms, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid token timestamp: %w", err)
	}
	return time.UnixMilli(ms), nil
}

// Clear removes both token keys.
func (s *TokenStore) Clear() error {
	return s.settings.Delete(TokenKey, TokenTimestampKey)
}
