// Package model contains the domain types for the secret provisioning pipeline.
package model

// Credential is a named plaintext secret value read from the environment at
// process start. Values live only for the duration of the run and are never
// persisted anywhere.
type Credential struct {
	Name     string
	Value    string
	Required bool
}

// Present reports whether the credential carries a non-empty value.
func (c Credential) Present() bool {
	return c.Value != ""
}

// RepositoryPublicKey is the repository's current public key for sealing
// secret values, as returned by the secrets public-key endpoint. Key is the
// base64 encoding of the raw 32-byte key. A key is fetched fresh for each
// upsert and never cached across runs.
type RepositoryPublicKey struct {
	KeyID string
	Key   string
}

// EncryptedSecret is a sealed secret value ready for upload, tagged with the
// ID of the public key it was sealed against. EncryptedValue is base64
// ciphertext. Sealing uses a fresh ephemeral key per call, so the bytes
// differ between runs even for identical inputs.
type EncryptedSecret struct {
	KeyID          string
	EncryptedValue string
}

// DispatchRequest identifies the workflow run to trigger after a successful
// sync. WorkflowFile is the workflow's file name under .github/workflows.
type DispatchRequest struct {
	WorkflowFile string
	Ref          string
}
