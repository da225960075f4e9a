package services

import (
	"strings"

	"github.com/desertthunder/rmp/internal/shared"
	"golang.org/x/oauth2"
)

// RedditScopes are requested by the login flow.
var RedditScopes = []string{"identity", "read", "submit"}

// RedditAuth builds authorization URLs for the configured OAuth client.
type RedditAuth struct {
	config *oauth2.Config
}

// NewRedditAuth returns nil when no client id is configured.
func NewRedditAuth(cfg shared.RedditConfig) *RedditAuth {
	if cfg.ClientID == "" {
		return nil
	}
	base := strings.TrimRight(cfg.AuthURL, "/")
	return &RedditAuth{config: &oauth2.Config{
		ClientID:    cfg.ClientID,
		RedirectURL: cfg.RedirectURI,
		Scopes:      RedditScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   base + "/authorize",
			TokenURL:  base + "/access_token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}}
}

// AuthorizationURL returns the consent page URL and the random state it embeds.
func (a *RedditAuth) AuthorizationURL() (authURL, state string) {
	state = shared.GenerateID()
	authURL = a.config.AuthCodeURL(state, oauth2.SetAuthURLParam("duration", "permanent"))
	return authURL, state
}
