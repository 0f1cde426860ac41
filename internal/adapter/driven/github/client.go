// Package github implements the SecretStore and WorkflowRunner ports using
// the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/neuromagic888-cloud/secretsync/internal/domain/model"
	"github.com/neuromagic888-cloud/secretsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.SecretStore    = (*Client)(nil)
	_ driven.WorkflowRunner = (*Client)(nil)
)

// Client implements the driven.SecretStore and driven.WorkflowRunner ports
// using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// FetchPublicKey retrieves the repository's current public key and key ID
// for secret encryption. One read-only call, no caching: the key may be
// rotated server-side at any time.
func (c *Client) FetchPublicKey(ctx context.Context, repoFullName string) (model.RepositoryPublicKey, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return model.RepositoryPublicKey{}, err
	}

	key, resp, err := c.gh.Actions.GetRepoPublicKey(ctx, owner, repo)
	if err != nil {
		return model.RepositoryPublicKey{}, fmt.Errorf("fetching public key for %s: %w", repoFullName, classify(err))
	}

	logRateLimit(resp, repoFullName+"/public-key", 1)

	return model.RepositoryPublicKey{
		KeyID: key.GetKeyID(),
		Key:   key.GetKey(),
	}, nil
}

// PutSecret creates or overwrites the named repository secret. The call is
// always a write; GitHub applies upsert semantics server-side, so the end
// state is identical whether or not the name already existed.
func (c *Client) PutSecret(ctx context.Context, repoFullName, name string, payload model.EncryptedSecret) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	secret := &gh.EncryptedSecret{
		Name:           name,
		KeyID:          payload.KeyID,
		EncryptedValue: payload.EncryptedValue,
	}

	resp, err := c.gh.Actions.CreateOrUpdateRepoSecret(ctx, owner, repo, secret)
	if err != nil {
		var ghErr *gh.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusUnprocessableEntity {
			return fmt.Errorf("%w: secret %q: %v", model.ErrWrite, name, err)
		}
		return fmt.Errorf("upserting secret %q on %s: %w", name, repoFullName, classify(err))
	}

	logRateLimit(resp, repoFullName+"/secrets", 1)
	return nil
}

// ListSecretNames returns the names of all secrets registered on the
// repository. Secret values are never exposed by this endpoint. It handles
// pagination automatically.
func (c *Client) ListSecretNames(ctx context.Context, repoFullName string) ([]string, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.ListOptions{PerPage: 100}
	var names []string

	for {
		secrets, resp, err := c.gh.Actions.ListRepoSecrets(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing secrets for %s (page %d): %w", repoFullName, opts.Page, classify(err))
		}

		logRateLimit(resp, repoFullName+"/secrets", len(secrets.Secrets))

		for _, s := range secrets.Secrets {
			names = append(names, s.Name)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if names == nil {
		names = []string{}
	}

	return names, nil
}

// DispatchWorkflow fires a workflow_dispatch event for the named workflow
// file on the given ref. GitHub answers 404 both for an unknown workflow and
// for one without a workflow_dispatch trigger; both map to ErrNotFound.
// The dispatched run's outcome is not observed.
func (c *Client) DispatchWorkflow(ctx context.Context, repoFullName, workflowFile, ref string) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	event := gh.CreateWorkflowDispatchEventRequest{Ref: ref}

	resp, err := c.gh.Actions.CreateWorkflowDispatchEventByFileName(ctx, owner, repo, workflowFile, event)
	if err != nil {
		return fmt.Errorf("dispatching workflow %s on %s@%s: %w", workflowFile, repoFullName, ref, classify(err))
	}

	logRateLimit(resp, repoFullName+"/dispatches", 1)
	return nil
}

// classify maps go-github errors onto the domain error taxonomy. Rate limit
// errors become TransientError carrying the server's reset or retry-after
// hint; plain HTTP status codes map per the API contract (401/403 auth,
// 404 not found, 429 and 5xx transient).
func classify(err error) error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return &model.TransientError{
			RetryAfter: time.Until(rateErr.Rate.Reset.Time),
			Err:        err,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		var after time.Duration
		if abuseErr.RetryAfter != nil {
			after = *abuseErr.RetryAfter
		}
		return &model.TransientError{RetryAfter: after, Err: err}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch code := ghErr.Response.StatusCode; {
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return fmt.Errorf("%w: %v", model.ErrAuth, err)
		case code == http.StatusNotFound:
			return fmt.Errorf("%w: %v", model.ErrNotFound, err)
		case code == http.StatusTooManyRequests || code >= 500:
			return &model.TransientError{Err: err}
		}
	}

	return err
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
