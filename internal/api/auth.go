package api

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"github.com/rm-hull/hr-portal-admin/internal/models"
)

// Login exchanges credentials for a token pair, stores it and loads the
// profile of the logged in user.
func (c *Client) Login(ctx context.Context, username, password string) (*models.UserProfile, error) {
	payload, err := encodeBody(models.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, http.MethodPost, c.loginPath, nil, payload, "")
	if err != nil {
		return nil, err
	}
	body, err := readResponse(http.MethodPost, resp)
	if err != nil {
		return nil, errors.Wrap(err, "login failed")
	}

	var tokens models.TokenPair
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal login response")
	}
	if tokens.Access == "" || tokens.Refresh == "" {
		return nil, errors.New("login response did not contain a token pair")
	}
	if err := c.store.SetTokens(tokens.Access, tokens.Refresh); err != nil {
		return nil, errors.Wrap(err, "failed to store tokens")
	}

	user, err := Fetch[models.UserProfile](ctx, c, c.profilePath, nil)
	if err != nil {
		c.abandonLogin()
		return nil, errors.Wrap(err, "failed to load user profile")
	}
	if err := c.store.SetUser(&user); err != nil {
		c.abandonLogin()
		return nil, errors.Wrap(err, "failed to store user profile")
	}

	log.Info().Str("username", user.Username).Msg("Logged in successfully")
	return &user, nil
}

// abandonLogin drops the tokens of a login that could not load its profile.
func (c *Client) abandonLogin() {
	if err := c.store.ClearAll(); err != nil {
		log.Err(err).Msg("Failed to clear tokens after incomplete login")
	}
}

func (c *Client) Logout() error {
	if err := c.store.ClearAll(); err != nil {
		return errors.Wrap(err, "failed to clear session")
	}
	log.Info().Msg("Logged out")
	return nil
}

// CurrentUser returns the stored profile, or nil when nobody is logged in.
func (c *Client) CurrentUser() (*models.UserProfile, error) {
	return c.store.User()
}
