package resolver

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/nickalie/vaultparse/internal/core/content"
	"github.com/nickalie/vaultparse/internal/core/secret"
)

// Request describes a single vault resolution.
type Request struct {
	VaultFile    string         `validate:"required"`
	PasswordFile string         `validate:"omitempty"`
	Format       content.Format `validate:"omitempty,oneof=yaml dotenv toml auto"`
}

// Result is the outcome of a resolution. Content is never nil; on a content
// failure it is empty and Err holds the typed cause.
type Result struct {
	Content map[string]interface{}
	Err     error
}

// OK reports whether the vault was decrypted and decoded.
func (r *Result) OK() bool {
	return r.Err == nil
}

// Resolver resolves password sources, decrypts vaults and decodes their content.
type Resolver struct {
	secrets   SecretsLoader
	vaults    VaultLoader
	validator *validator.Validate
	format    content.Format
	logger    zerolog.Logger
}

// Option defines functional options for Resolver
type Option func(*Resolver)

// WithFormat sets the default plaintext format for requests that do not name one
func WithFormat(format content.Format) Option {
	return func(r *Resolver) {
		r.format = format
	}
}

// WithLogger sets the logger used to report swallowed failures
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a resolver over the given secret and vault loaders.
func New(secrets SecretsLoader, vaults VaultLoader, opts ...Option) *Resolver {
	r := &Resolver{
		secrets:   secrets,
		vaults:    vaults,
		validator: validator.New(),
		format:    content.FormatYAML,
		logger:    zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns the decoded content of vaultFile, or an empty map when the
// vault cannot be read, decrypted or decoded. The error is reserved for setup
// failures such as an invalid request or an unusable password source.
func (r *Resolver) Resolve(vaultFile, passwordFile string) (map[string]interface{}, error) {
	result, err := r.ResolveResult(vaultFile, passwordFile)
	if err != nil {
		return nil, err
	}
	return result.Content, nil
}

// ResolveResult is Resolve with the content failure cause kept in Result.Err.
func (r *Resolver) ResolveResult(vaultFile, passwordFile string) (*Result, error) {
	return r.ResolveRequest(Request{VaultFile: vaultFile, PasswordFile: passwordFile})
}

// ResolveRequest resolves a fully specified request.
func (r *Resolver) ResolveRequest(req Request) (*Result, error) {
	if err := r.validateRequest(req); err != nil {
		return nil, err
	}

	format := req.Format
	if format == "" {
		format = r.format
	}
	if format == content.FormatAuto {
		format = content.FormatForPath(req.VaultFile)
	}

	secrets, err := r.secrets.Load(req.PasswordFile)
	if err != nil {
		return nil, fmt.Errorf("secret setup failed: %w", err)
	}

	plaintext, err := r.vaults.Load(req.VaultFile, secrets)
	if err != nil {
		return r.empty(req, err), nil
	}

	decoded, err := content.Decode(plaintext, format)
	if err != nil {
		return r.empty(req, &secret.DecodeError{Path: req.VaultFile, Format: string(format), Cause: err}), nil
	}

	r.logger.Debug().Str("vault_file", req.VaultFile).Int("keys", len(decoded)).Msg("vault resolved")

	return &Result{Content: decoded}, nil
}

// empty builds the fallback result for a content failure
func (r *Resolver) empty(req Request, cause error) *Result {
	r.logger.Debug().Err(cause).Str("vault_file", req.VaultFile).Msg("vault content unavailable, returning empty result")

	return &Result{
		Content: map[string]interface{}{},
		Err:     cause,
	}
}

// validateRequest validates the request structure
func (r *Resolver) validateRequest(req Request) error {
	if err := r.validator.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return fmt.Errorf("invalid request: %s", formatValidationErrors(validationErrors))
		}
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(errs validator.ValidationErrors) string {
	errMsgs := make([]string, 0, len(errs))
	for _, err := range errs {
		errMsgs = append(errMsgs, fmt.Sprintf(
			"Field '%s' failed validation: %s (condition: %s)",
			err.Field(),
			err.Tag(),
			err.Param(),
		))
	}
	return strings.Join(errMsgs, "\n")
}
