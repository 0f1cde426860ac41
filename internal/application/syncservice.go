// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/neuromagic888-cloud/secretsync/internal/domain/model"
	"github.com/neuromagic888-cloud/secretsync/internal/domain/port/driven"
	"github.com/neuromagic888-cloud/secretsync/internal/sealedbox"
)

// SyncOptions configures a sync run.
type SyncOptions struct {
	Repository   string
	WorkflowFile string
	Ref          string
	SkipDispatch bool

	// MaxAttempts caps per-secret upsert attempts on transient errors.
	// Zero means the default of 4.
	MaxAttempts int

	// RetryBaseDelay is the initial backoff delay between attempts. Zero
	// means the default of one second. Tests shrink this to keep retries fast.
	RetryBaseDelay time.Duration
}

// SyncService drives the secret provisioning pipeline: collect credentials,
// upsert each one, verify the result, then optionally dispatch the follow-up
// workflow. Execution is strictly sequential; the secret roster is small and
// fixed, so parallel upserts buy nothing.
type SyncService struct {
	store  driven.SecretStore
	runner driven.WorkflowRunner
	creds  []model.Credential
	opts   SyncOptions
}

// NewSyncService creates a new SyncService with all required dependencies.
// Zero-valued retry options fall back to their defaults.
func NewSyncService(store driven.SecretStore, runner driven.WorkflowRunner, creds []model.Credential, opts SyncOptions) *SyncService {
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBaseDelay == 0 {
		opts.RetryBaseDelay = defaultRetryBaseDelay
	}

	return &SyncService{
		store:  store,
		runner: runner,
		creds:  creds,
		opts:   opts,
	}
}

// Run executes the pipeline end to end. Any error is terminal: secrets
// already written stay written, and no compensating cleanup is attempted.
func (s *SyncService) Run(ctx context.Context) error {
	creds, err := s.collectCredentials()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(creds))
	for _, cred := range creds {
		if err := retryTransient(ctx, s.opts.MaxAttempts, s.opts.RetryBaseDelay, func() error {
			return s.upsertSecret(ctx, cred)
		}); err != nil {
			return err
		}
		names = append(names, cred.Name)
		slog.Info("secret upserted", "repo", s.opts.Repository, "name", cred.Name)
	}

	missing, err := s.Verify(ctx, names)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", model.ErrVerification, strings.Join(missing, ", "))
	}
	slog.Info("all secrets verified", "repo", s.opts.Repository, "count", len(names))

	if s.opts.SkipDispatch {
		slog.Info("workflow dispatch skipped", "workflow", s.opts.WorkflowFile)
		return nil
	}

	req := model.DispatchRequest{WorkflowFile: s.opts.WorkflowFile, Ref: s.opts.Ref}
	if err := s.runner.DispatchWorkflow(ctx, s.opts.Repository, req.WorkflowFile, req.Ref); err != nil {
		return err
	}
	slog.Info("workflow dispatched", "workflow", req.WorkflowFile, "ref", req.Ref)

	return nil
}

// collectCredentials filters the roster down to credentials that carry a
// value. A required credential without a value is a configuration error;
// this check runs before any network call.
func (s *SyncService) collectCredentials() ([]model.Credential, error) {
	var present []model.Credential
	for _, cred := range s.creds {
		switch {
		case cred.Present():
			present = append(present, cred)
		case cred.Required:
			return nil, fmt.Errorf("%w: credential %s is empty", model.ErrConfig, cred.Name)
		default:
			slog.Debug("optional credential absent, skipping", "name", cred.Name)
		}
	}

	if len(present) == 0 {
		return nil, fmt.Errorf("%w: no credential values provided", model.ErrConfig)
	}

	return present, nil
}

// upsertSecret performs one full upsert: fetch the current public key, seal
// the value against it, and write the payload. The key is fetched per
// attempt so a retry never reuses a key the server may have rotated.
func (s *SyncService) upsertSecret(ctx context.Context, cred model.Credential) error {
	key, err := s.store.FetchPublicKey(ctx, s.opts.Repository)
	if err != nil {
		return err
	}

	payload, err := sealedbox.Encrypt(cred.Value, key)
	if err != nil {
		return err
	}

	return s.store.PutSecret(ctx, s.opts.Repository, cred.Name, payload)
}

// Verify lists the secret names registered on the repository and returns the
// subset of expected names not found. Values are never readable, so presence
// of the name is the only post-write check available. No internal retry.
func (s *SyncService) Verify(ctx context.Context, expected []string) ([]string, error) {
	registered, err := s.store.ListSecretNames(ctx, s.opts.Repository)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(registered))
	for _, name := range registered {
		present[name] = true
	}

	var missing []string
	for _, name := range expected {
		if !present[name] {
			missing = append(missing, name)
		}
	}

	return missing, nil
}
