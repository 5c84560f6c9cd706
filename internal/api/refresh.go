package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"github.com/rm-hull/hr-portal-admin/internal/models"
)

type refreshResult struct {
	token string
	err   error
}

// refreshState coordinates a single in-flight refresh per client. Callers that
// arrive while a refresh is running queue a waiter and are signalled in arrival
// order once it resolves.
type refreshState struct {
	mu         sync.Mutex
	inProgress bool
	waiters    []chan refreshResult
}

func newRefreshState() *refreshState {
	return &refreshState{}
}

// join either makes the caller the owner of a new refresh, or returns the
// channel the caller must wait on.
func (s *refreshState) join() (<-chan refreshResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inProgress {
		ch := make(chan refreshResult, 1)
		s.waiters = append(s.waiters, ch)
		refreshWaiters.Inc()
		return ch, false
	}

	s.inProgress = true
	return nil, true
}

// finish hands res to every queued waiter, oldest first, and only then returns
// the state to idle. Waiter channels are buffered so the sends never block.
func (s *refreshState) finish(res refreshResult) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.waiters)
	for _, ch := range s.waiters {
		ch <- res
	}
	refreshWaiters.Sub(float64(n))
	s.waiters = nil
	s.inProgress = false
	return n
}

func (s *refreshState) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters)
}

// refreshAccessToken returns an access token to replay a request that was
// rejected while carrying staleToken.
func (c *Client) refreshAccessToken(ctx context.Context, staleToken string) (string, error) {
	current, err := c.store.AccessToken()
	if err == nil && current != "" && current != staleToken {
		log.Debug().Msg("Access token was already replaced, replaying without refresh")
		return current, nil
	}

	wait, owner := c.refresh.join()
	if !owner {
		select {
		case res := <-wait:
			return res.token, res.err
		case <-ctx.Done():
			return "", errors.Wrap(ctx.Err(), "cancelled while waiting for token refresh")
		}
	}

	token, err := c.performRefresh(ctx)
	if err != nil {
		err = errors.Mark(err, ErrSessionExpired)
		tokenRefreshes.WithLabelValues("failure").Inc()
		if clearErr := c.store.ClearAll(); clearErr != nil {
			log.Err(clearErr).Msg("Failed to clear session after refresh failure")
		}
	} else {
		tokenRefreshes.WithLabelValues("success").Inc()
	}

	n := c.refresh.finish(refreshResult{token: token, err: err})
	if err != nil {
		log.Err(err).Int("waiters", n).Msg("Token refresh failed, session cleared")
		c.notifySessionExpired(err)
		return "", err
	}

	log.Info().Int("waiters", n).Msg("Token refresh completed successfully")
	return token, nil
}

func (c *Client) performRefresh(ctx context.Context) (string, error) {
	refreshToken, err := c.store.RefreshToken()
	if err != nil {
		return "", errors.Wrap(err, "failed to read refresh token")
	}
	if refreshToken == "" {
		return "", ErrRefreshUnavailable
	}

	ctx = context.WithoutCancel(ctx)
	if c.refreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.refreshTimeout)
		defer cancel()
	}

	jsonData, err := json.Marshal(models.TokenRefreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal refresh request")
	}

	url := c.baseUrl + c.refreshPath
	log.Debug().Str("url", url).Msg("POST token refresh")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", errors.Wrap(err, "failed to create refresh request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		apiRequests.WithLabelValues(http.MethodPost, "error").Inc()
		return "", errors.Mark(errors.Wrapf(err, "failed to refresh token at %s", url), ErrTransport)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Err(err).Msg("failed to close body")
		}
	}()
	apiRequests.WithLabelValues(http.MethodPost, fmt.Sprint(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "failed to read refresh response"), ErrTransport)
	}

	if !isSuccess(resp.StatusCode) {
		stErr := newHTTPStatusError(http.MethodPost, url, resp, body)
		return "", errors.Mark(stErr, ErrRefreshRejected)
	}

	var tokens models.TokenPair
	if err := json.Unmarshal(body, &tokens); err != nil {
		return "", errors.Mark(errors.Wrap(err, "failed to unmarshal refresh response"), ErrRefreshRejected)
	}
	if tokens.Access == "" {
		return "", errors.Mark(errors.New("refresh response did not contain an access token"), ErrRefreshRejected)
	}

	if tokens.Refresh != "" {
		err = c.store.SetTokens(tokens.Access, tokens.Refresh)
	} else {
		err = c.store.UpdateAccessToken(tokens.Access)
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to store refreshed tokens")
	}

	return tokens.Access, nil
}
