package services

import (
	"net/url"
	"testing"

	"github.com/desertthunder/rmp/internal/shared"
)

func TestRedditAuth(t *testing.T) {
	t.Run("nil without client id", func(t *testing.T) {
		if NewRedditAuth(shared.DefaultConfig().Reddit) != nil {
			t.Error("expected nil auth without a client id")
		}
	})

	t.Run("AuthorizationURL", func(t *testing.T) {
		cfg := shared.DefaultConfig().Reddit
		cfg.ClientID = "abc"
		auth := NewRedditAuth(cfg)

		raw, state := auth.AuthorizationURL()
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("invalid url: %v", err)
		}
		if u.Host != "www.reddit.com" || u.Path != "/api/v1/authorize" {
			t.Errorf("unexpected endpoint %s", raw)
		}
		q := u.Query()
		checks := map[string]string{
			"client_id":     "abc",
			"response_type": "code",
			"duration":      "permanent",
			"scope":         "identity read submit",
			"state":         state,
			"redirect_uri":  cfg.RedirectURI,
		}
		for k, want := range checks {
			if got := q.Get(k); got != want {
				t.Errorf("param %s = %q, want %q", k, got, want)
			}
		}

		_, other := auth.AuthorizationURL()
		if other == state {
			t.Error("expected a fresh state per call")
		}
	})
}
