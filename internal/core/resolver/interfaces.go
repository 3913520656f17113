// Package resolver turns a vault file and an optional password file into
// decoded content, collapsing content failures into an empty mapping.
package resolver

import (
	"github.com/nickalie/vaultparse/internal/core/secret"
)

// SecretsLoader builds the secrets for one resolution
type SecretsLoader interface {
	// Load resolves secrets; a non-empty passwordFileHint is the only password file used
	Load(passwordFileHint string) (*secret.Secrets, error)
}

// VaultLoader reads and decrypts a vault file
type VaultLoader interface {
	// Load returns the plaintext or a content error from package secret
	Load(path string, secrets *secret.Secrets) ([]byte, error)
}
