package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/repositories"
	"github.com/desertthunder/rmp/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) tokenStore() (*repositories.TokenStore, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return repositories.NewTokenStore(repositories.NewSettingsRepository(db), nil, r.logger), nil
}

// AuthURL prints the Reddit consent page URL for the configured OAuth client.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	if r.auth == nil {
		return fmt.Errorf("%w: reddit.client_id (or REDDIT_CLIENT_ID) is not set", shared.ErrConfigMissing)
	}

	authURL, state := r.auth.AuthorizationURL()
	r.logger.Debug("built authorization url", "state", state)

	r.writePlain("Open this URL to authorize:\n\n%s\n\n", authURL)
	r.writePlain("State: %s\n", state)
	r.writePlain("Then store the returned token with 'rmp auth save'.\n")

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}
	return nil
}

// AuthSave stores a token read from a JSON file or given with --token.
func (r *Runner) AuthSave(ctx context.Context, cmd *cli.Command) error {
	var tok models.AuthToken

	switch path, raw := cmd.StringArg("path"), cmd.String("token"); {
	case path != "" && raw != "":
		return fmt.Errorf("%w: pass either a token file or --token, not both", shared.ErrInvalidArgument)
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read token file: %w", err)
		}
		if err := json.Unmarshal(data, &tok); err != nil {
			return fmt.Errorf("%w: token file is not valid JSON: %v", shared.ErrInvalidInput, err)
		}
	case raw != "":
		tok = models.AuthToken{
			AccessToken: raw,
			TokenType:   "bearer",
			ExpiresIn:   int64(cmd.Int("expires-in")),
			Scope:       cmd.String("scope"),
		}
	default:
		return fmt.Errorf("%w: a token file or --token is required", shared.ErrMissingArgument)
	}

	store, err := r.tokenStore()
	if err != nil {
		return err
	}
	if err := store.Save(tok); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	r.logger.Info("auth token saved", "expires_in", tok.ExpiresIn)
	return r.writePlain("✓ Token saved, valid for %s\n", shared.FormatDuration(time.Duration(tok.ExpiresIn)*time.Second))
}

// AuthStatus reports whether a valid token is stored and when it expires.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	store, err := r.tokenStore()
	if err != nil {
		return err
	}

	tok, err := store.Get()
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	if tok == nil {
		return r.writePlain("✗ Not authenticated\n")
	}

	issued, err := store.IssuedAt()
	if err != nil {
		return fmt.Errorf("failed to read token timestamp: %w", err)
	}
	expiry := tok.OAuth2(issued).Expiry

	r.writePlain("✓ Authenticated\n")
	r.writePlain("Scope:   %s\n", tok.Scope)
	r.writePlain("Expires: %s (in %s)\n", expiry.Format(time.RFC3339), shared.FormatDuration(time.Until(expiry).Round(time.Second)))
	return nil
}

// AuthClear deletes the stored token.
func (r *Runner) AuthClear(ctx context.Context, cmd *cli.Command) error {
	store, err := r.tokenStore()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return r.writePlain("✓ Token cleared\n")
}
