// SoundCloud resolve client
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/shared"
	"golang.org/x/time/rate"
)

// SoundCloudTrack is the subset of a resolved track the player uses.
type SoundCloudTrack struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	ArtworkURL   string `json:"artwork_url"`
	DurationMS   int64  `json:"duration"`
	PermalinkURL string `json:"permalink_url"`
	User         struct {
		Username string `json:"username"`
	} `json:"user"`
}

// SoundCloudService resolves SoundCloud URLs to track metadata.
type SoundCloudService struct {
	client
	clientID string
}

// NewSoundCloudService creates a resolver. An empty client id is allowed; Resolve then reports [shared.ErrConfigMissing].
func NewSoundCloudService(cfg shared.SoundCloudConfig, httpClient *http.Client, limiter *rate.Limiter) *SoundCloudService {
	return &SoundCloudService{
		client:   newClient(strings.TrimRight(cfg.APIURL, "/"), "", httpClient, limiter),
		clientID: cfg.ClientID,
	}
}

// Name returns the name of the service.
func (s *SoundCloudService) Name() string { return "SoundCloud" }

// Configured reports whether a client id is present.
func (s *SoundCloudService) Configured() bool { return s.clientID != "" }

// Resolve looks up the track behind trackURL.
func (s *SoundCloudService) Resolve(ctx context.Context, trackURL string) (*models.MediaInfo, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("%w: soundcloud client id is not set", shared.ErrConfigMissing)
	}
	if strings.TrimSpace(trackURL) == "" {
		return nil, fmt.Errorf("%w: url is required", shared.ErrMissingArgument)
	}

	params := url.Values{}
	params.Set("url", trackURL)
	params.Set("client_id", s.clientID)

	var track SoundCloudTrack
	if err := s.getJSON(ctx, "/resolve", params, &track); err != nil {
		var fe *shared.FetchError
		if errors.As(err, &fe) && fe.Status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, trackURL)
		}
		return nil, err
	}

	return &models.MediaInfo{
		ID:       strconv.FormatInt(track.ID, 10),
		Title:    track.Title,
		Artist:   track.User.Username,
		Artwork:  track.ArtworkURL,
		Duration: time.Duration(track.DurationMS) * time.Millisecond,
		URL:      track.PermalinkURL,
	}, nil
}
