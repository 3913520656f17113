package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sosedoff/ansible-vault-go"

	"github.com/nickalie/vaultparse/internal/core/secret"
	"github.com/nickalie/vaultparse/internal/infrastructure/fs"
)

const (
	vaultFormatID   = "$ANSIBLE_VAULT"
	vaultCipherAES  = "AES256"
	vaultVersion1_1 = "1.1"
	vaultVersion1_2 = "1.2"
)

// VaultDecrypter defines the interface for decrypting Ansible Vault
// encrypted content.
type VaultDecrypter interface {
	Decrypt(content, password string) (string, error)
}

// DefaultVaultDecrypter implements VaultDecrypter using ansible-vault-go.
type DefaultVaultDecrypter struct{}

// NewVaultDecrypter creates a new instance of the default vault decrypter.
func NewVaultDecrypter() VaultDecrypter {
	return &DefaultVaultDecrypter{}
}

// Decrypt decrypts content encrypted with Ansible Vault.
func (d *DefaultVaultDecrypter) Decrypt(content, password string) (string, error) {
	return vault.Decrypt(content, password)
}

// Envelope is a parsed vault header plus its hex encoded body.
type Envelope struct {
	Version string
	Cipher  string
	VaultID string
	Body    string
}

// ParseEnvelope parses the "$ANSIBLE_VAULT;version;cipher[;label]" header.
// Errors wrap secret.ErrNotVault.
func ParseEnvelope(data []byte) (*Envelope, error) {
	text := strings.ReplaceAll(strings.TrimSpace(string(data)), "\r\n", "\n")

	header, body, _ := strings.Cut(text, "\n")
	fields := strings.Split(strings.TrimSpace(header), ";")

	if len(fields) < 3 || fields[0] != vaultFormatID {
		return nil, fmt.Errorf("%w: missing %s header", secret.ErrNotVault, vaultFormatID)
	}

	env := &Envelope{
		Version: strings.TrimSpace(fields[1]),
		Cipher:  strings.TrimSpace(fields[2]),
		Body:    strings.TrimSpace(body),
	}

	switch env.Version {
	case vaultVersion1_1:
	case vaultVersion1_2:
		if len(fields) > 3 {
			env.VaultID = strings.TrimSpace(fields[3])
		}
	default:
		return nil, fmt.Errorf("%w: unsupported version %s", secret.ErrNotVault, env.Version)
	}

	if env.Cipher != vaultCipherAES {
		return nil, fmt.Errorf("%w: unsupported cipher %s", secret.ErrNotVault, env.Cipher)
	}

	if env.Body == "" {
		return nil, fmt.Errorf("%w: empty body", secret.ErrNotVault)
	}

	return env, nil
}

// Normalized renders the envelope with a 1.1 header, the only form the codec accepts.
func (e *Envelope) Normalized() string {
	return fmt.Sprintf("%s;%s;%s\n%s", vaultFormatID, vaultVersion1_1, e.Cipher, e.Body)
}

// LoadVaultFile loads an Ansible Vault file and decrypts it with the first
// secret that works. Secrets labeled like the vault are tried first.
// Every returned error is a content error from package secret.
func LoadVaultFile(fsys fs.FileSystem, path string, secrets *secret.Secrets, decrypter VaultDecrypter) ([]byte, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, &secret.ReadError{Path: path, Cause: err}
	}

	envelope, err := ParseEnvelope(data)
	if err != nil {
		return nil, err
	}

	if secrets.Empty() {
		return nil, secret.ErrNoPassword
	}

	normalized := envelope.Normalized()
	candidates := secrets.ForVaultID(envelope.VaultID)

	var errs []error
	for _, s := range candidates {
		decrypted, err := decrypter.Decrypt(normalized, string(s.Password))
		if err == nil {
			return []byte(decrypted), nil
		}
		errs = append(errs, fmt.Errorf("vault id %s: %w", s.GetVaultID(), err))
	}

	return nil, &secret.DecryptError{
		Path:     path,
		Attempts: len(candidates),
		Cause:    errors.Join(errs...),
	}
}

// FileVaultLoader reads and decrypts vault files from a file system.
type FileVaultLoader struct {
	fs        fs.FileSystem
	decrypter VaultDecrypter
}

// NewVaultLoader creates a vault loader over fsys using decrypter.
func NewVaultLoader(fsys fs.FileSystem, decrypter VaultDecrypter) *FileVaultLoader {
	return &FileVaultLoader{
		fs:        fsys,
		decrypter: decrypter,
	}
}

// Load decrypts the vault file at path with secrets.
func (l *FileVaultLoader) Load(path string, secrets *secret.Secrets) ([]byte, error) {
	return LoadVaultFile(l.fs, path, secrets, l.decrypter)
}
