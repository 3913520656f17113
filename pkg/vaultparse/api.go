// Package vaultparse provides a public API for reading Ansible Vault encrypted
// files as structured data. Passwords come from an explicit password file or,
// when none is given, from ansible.cfg and the ANSIBLE_VAULT_PASSWORD_FILE
// environment variable. Interactive prompting is never used.
package vaultparse

import (
	"github.com/rs/zerolog"

	"github.com/nickalie/vaultparse/internal/config"
	"github.com/nickalie/vaultparse/internal/core/content"
	"github.com/nickalie/vaultparse/internal/core/resolver"
	"github.com/nickalie/vaultparse/internal/core/secret"
	"github.com/nickalie/vaultparse/internal/infrastructure/env"
	"github.com/nickalie/vaultparse/internal/infrastructure/fs"
	"github.com/nickalie/vaultparse/internal/infrastructure/log"
)

// Result is the outcome of a resolution with the failure cause kept
type Result = resolver.Result

// Request describes a single vault resolution
type Request = resolver.Request

// Format names the plaintext encoding of a vault
type Format = content.Format

// Supported plaintext formats
const (
	FormatYAML   = content.FormatYAML
	FormatDotenv = content.FormatDotenv
	FormatTOML   = content.FormatTOML
	FormatAuto   = content.FormatAuto
)

// Content failure causes reported in Result.Err
var (
	ErrNoPassword = secret.ErrNoPassword
	ErrNotVault   = secret.ErrNotVault
)

// ReadError reports an unreadable vault file
type ReadError = secret.ReadError

// DecryptError reports a vault no secret could decrypt
type DecryptError = secret.DecryptError

// DecodeError reports decrypted content that is not a mapping
type DecodeError = secret.DecodeError

// SourceError reports a password source that could not be loaded
type SourceError = secret.SourceError

// options collects the values set by Option
type options struct {
	format Format
	logger log.Logger
}

// Option configures the resolver built by NewResolver and ParseWithOptions
type Option func(*options)

// WithFormat sets the plaintext format
func WithFormat(format Format) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithLogger sets the logger used by secret setup and to report swallowed failures
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewResolver creates a resolver using the OS file system and environment
func NewResolver(opts ...Option) *resolver.Resolver {
	o := &options{
		format: content.FormatYAML,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	fileSystem := fs.NewFileSystem()
	secretsLoader := env.NewLoader(
		env.WithFileSystem(fileSystem),
		env.WithLogger(o.logger),
	)
	vaultLoader := config.NewVaultLoader(fileSystem, config.NewVaultDecrypter())

	return resolver.New(secretsLoader, vaultLoader,
		resolver.WithFormat(o.format),
		resolver.WithLogger(o.logger),
	)
}

// Parse decrypts vaultFile and returns its content, or an empty map on any
// failure. Setup failures such as a missing password file or a malformed
// ansible.cfg are swallowed too; use ParseWithOptions to receive them.
// Only the first passwordFile is used; an empty one means none.
func Parse(vaultFile string, passwordFile ...string) map[string]interface{} {
	data, err := ParseWithOptions(vaultFile, firstOrEmpty(passwordFile))
	if err != nil {
		return map[string]interface{}{}
	}
	return data
}

// ParseWithOptions decrypts vaultFile and returns its content. Content
// failures yield an empty map; setup failures are returned as errors.
func ParseWithOptions(vaultFile, passwordFile string, opts ...Option) (map[string]interface{}, error) {
	return NewResolver(opts...).Resolve(vaultFile, passwordFile)
}

// ParseResult is ParseWithOptions with the content failure cause kept in Result.Err.
func ParseResult(vaultFile, passwordFile string, opts ...Option) (*Result, error) {
	return NewResolver(opts...).ResolveResult(vaultFile, passwordFile)
}

// IsContentError reports whether err is a content failure rather than a setup failure
func IsContentError(err error) bool {
	return secret.IsContentError(err)
}

// firstOrEmpty returns the first element or an empty string
func firstOrEmpty(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
