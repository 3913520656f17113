// Package secret defines vault secrets and the errors produced while resolving them.
package secret

import "strings"

// DefaultVaultID is the label given to secrets that do not name one.
const DefaultVaultID = "default"

// Secret is a single decryption password together with where it came from.
type Secret struct {
	VaultID  string
	Source   string
	Password []byte
}

// GetVaultID returns the vault id label, defaulting to DefaultVaultID.
func (s *Secret) GetVaultID() string {
	if s.VaultID == "" {
		return DefaultVaultID
	}
	return s.VaultID
}

// Secrets is an ordered set of secrets passed explicitly into decryption.
// It is built per call and never mutated afterwards.
type Secrets struct {
	items []Secret
}

// NewSecrets returns a Secrets holding copies of the given items in order.
func NewSecrets(items ...Secret) *Secrets {
	copied := make([]Secret, len(items))
	copy(copied, items)
	return &Secrets{items: copied}
}

// Len returns the number of secrets.
func (s *Secrets) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Empty reports whether there are no secrets to try.
func (s *Secrets) Empty() bool {
	return s.Len() == 0
}

// All returns the secrets in resolution order.
func (s *Secrets) All() []Secret {
	if s == nil {
		return nil
	}
	out := make([]Secret, len(s.items))
	copy(out, s.items)
	return out
}

// ForVaultID returns the secrets in the order they should be tried for a vault
// labeled vaultID: matching labels first, then the rest in resolution order.
func (s *Secrets) ForVaultID(vaultID string) []Secret {
	if s == nil {
		return nil
	}
	if vaultID == "" {
		return s.All()
	}

	matched := make([]Secret, 0, len(s.items))
	rest := make([]Secret, 0, len(s.items))
	for _, item := range s.items {
		if strings.EqualFold(item.GetVaultID(), vaultID) {
			matched = append(matched, item)
			continue
		}
		rest = append(rest, item)
	}
	return append(matched, rest...)
}
