package resolver

import (
	"github.com/nickalie/vaultparse/internal/core/secret"
)

// MockSecretsLoader implements SecretsLoader for testing
type MockSecretsLoader struct {
	LoadFunc func(passwordFileHint string) (*secret.Secrets, error)
}

// Load calls the mock function
func (m *MockSecretsLoader) Load(passwordFileHint string) (*secret.Secrets, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(passwordFileHint)
	}
	return secret.NewSecrets(), nil
}

// MockVaultLoader implements VaultLoader for testing
type MockVaultLoader struct {
	LoadFunc func(path string, secrets *secret.Secrets) ([]byte, error)
}

// Load calls the mock function
func (m *MockVaultLoader) Load(path string, secrets *secret.Secrets) ([]byte, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(path, secrets)
	}
	return nil, secret.ErrNoPassword
}
