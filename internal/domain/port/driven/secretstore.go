// Package driven defines the outbound ports of the application.
package driven

import (
	"context"

	"github.com/neuromagic888-cloud/secretsync/internal/domain/model"
)

// SecretStore defines the driven port for the repository's encrypted secret
// store. Values written here are never readable back; only names are.
type SecretStore interface {
	// FetchPublicKey returns the repository's current public key for sealing
	// secret values. repoFullName is "owner/name".
	FetchPublicKey(ctx context.Context, repoFullName string) (model.RepositoryPublicKey, error)

	// PutSecret creates or overwrites the named secret with a sealed payload.
	// The end state is identical whether or not the name already existed.
	PutSecret(ctx context.Context, repoFullName, name string, payload model.EncryptedSecret) error

	// ListSecretNames returns the names of all secrets currently registered
	// on the repository.
	ListSecretNames(ctx context.Context, repoFullName string) ([]string, error)
}
