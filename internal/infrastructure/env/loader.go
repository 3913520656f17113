// Package env resolves vault secrets from password files, password scripts,
// ansible.cfg and environment variables. It never prompts.
package env

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nickalie/vaultparse/internal/config"
	"github.com/nickalie/vaultparse/internal/core/secret"
	"github.com/nickalie/vaultparse/internal/infrastructure/fs"
)

const (
	// EnvVaultPasswordFile supplies the default password file when neither an
	// explicit file nor an ansible.cfg setting is present.
	EnvVaultPasswordFile = "ANSIBLE_VAULT_PASSWORD_FILE"

	// EnvVaultIdentityList supplies labeled secrets as "label@source,...".
	EnvVaultIdentityList = "ANSIBLE_VAULT_IDENTITY_LIST"

	clientScriptSuffix = "-client"
)

// promptSources are identity sources that would ask the user for a password.
var promptSources = map[string]bool{
	"prompt":               true,
	"prompt_ask_vault_pass": true,
}

// CommandRunner executes a password script and returns its stdout.
type CommandRunner func(dir string, args ...string) ([]byte, error)

// Loader defines the interface for building the secrets used to decrypt a vault.
type Loader interface {
	Load(passwordFileHint string) (*secret.Secrets, error)
}

// DefaultLoader resolves secrets from files, scripts and the environment.
type DefaultLoader struct {
	fs        fs.FileSystem
	settings  config.SettingsLoader
	getenv    func(string) string
	cmdRunner CommandRunner
	logger    zerolog.Logger
}

// Option configures a DefaultLoader.
type Option func(*DefaultLoader)

// WithFileSystem sets the file system used to read password files.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(l *DefaultLoader) {
		l.fs = fsys
	}
}

// WithSettingsLoader sets the ansible.cfg loader.
func WithSettingsLoader(settings config.SettingsLoader) Option {
	return func(l *DefaultLoader) {
		l.settings = settings
	}
}

// WithGetenv sets the environment lookup function.
func WithGetenv(getenv func(string) string) Option {
	return func(l *DefaultLoader) {
		l.getenv = getenv
	}
}

// WithCommandRunner sets the runner used for executable password files.
func WithCommandRunner(runner CommandRunner) Option {
	return func(l *DefaultLoader) {
		l.cmdRunner = runner
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *DefaultLoader) {
		l.logger = logger
	}
}

// NewLoader creates a new secret loader with default implementations.
func NewLoader(opts ...Option) Loader {
	loader := &DefaultLoader{
		fs:        fs.NewFileSystem(),
		getenv:    os.Getenv,
		cmdRunner: execCommand,
		logger:    zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(loader)
	}

	if loader.settings == nil {
		loader.settings = config.NewSettingsLoader(
			config.WithSettingsFileSystem(loader.fs),
			config.WithSettingsGetenv(loader.getenv),
		)
	}

	return loader
}

// candidate is a password source waiting to be read
type candidate struct {
	vaultID string
	source  string
}

// Load builds the secrets for one resolution. A non-empty passwordFileHint is
// the only password file used; otherwise the ansible.cfg setting and then the
// environment variable are consulted. Labeled identities are appended after;
// ANSIBLE_VAULT_IDENTITY_LIST overrides the ansible.cfg identity list.
// An empty result is not an error: decryption reports it.
func (l *DefaultLoader) Load(passwordFileHint string) (*secret.Secrets, error) {
	settings, err := l.settings.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load ansible settings: %w", err)
	}

	candidates, err := l.candidates(passwordFileHint, settings)
	if err != nil {
		return nil, err
	}

	items := make([]secret.Secret, 0, len(candidates))
	for _, c := range candidates {
		if promptSources[c.source] {
			l.logger.Debug().Str("vault_id", c.vaultID).Msg("skipping prompt source, prompting is disabled")
			continue
		}

		password, err := l.loadPassword(c)
		if err != nil {
			return nil, &secret.SourceError{Source: c.source, Cause: err}
		}

		l.logger.Debug().Str("vault_id", c.vaultID).Str("source", c.source).Msg("resolved vault secret")
		items = append(items, secret.Secret{
			VaultID:  c.vaultID,
			Source:   c.source,
			Password: password,
		})
	}

	return secret.NewSecrets(items...), nil
}

// candidates returns the password sources in resolution order
func (l *DefaultLoader) candidates(hint string, settings *config.Settings) ([]candidate, error) {
	var out []candidate

	if passwordFile := l.resolvePasswordFile(hint, settings); passwordFile != "" {
		out = append(out, candidate{vaultID: secret.DefaultVaultID, source: passwordFile})
	}

	identities := config.SplitIdentityList(l.getenv(EnvVaultIdentityList))
	if len(identities) == 0 {
		identities = settings.VaultIdentityList
	}

	for _, identity := range identities {
		label, source, err := config.ParseIdentity(identity)
		if err != nil {
			return nil, err
		}
		if label == "" {
			label = secret.DefaultVaultID
		}
		if !promptSources[source] {
			source = l.expandPath(source)
		}
		out = append(out, candidate{vaultID: label, source: source})
	}

	return out, nil
}

// resolvePasswordFile determines which password file to use, if any
func (l *DefaultLoader) resolvePasswordFile(hint string, settings *config.Settings) string {
	if hint = strings.TrimSpace(hint); hint != "" {
		return hint
	}

	if settings.VaultPasswordFile != "" {
		return settings.VaultPasswordFile
	}

	return l.expandPath(l.getenv(EnvVaultPasswordFile))
}

// expandPath expands ~ and environment variables in a password source
func (l *DefaultLoader) expandPath(value string) string {
	return config.ExpandPath(value, "", l.getenv, l.fs.UserHomeDir)
}

// loadPassword reads a password file, or runs it when it is executable
func (l *DefaultLoader) loadPassword(c candidate) ([]byte, error) {
	info, err := l.fs.Stat(c.source)
	if err != nil {
		return nil, fmt.Errorf("password file not found: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("password file is a directory")
	}

	var password []byte
	if fs.IsExecutable(info) {
		raw, err := l.runPasswordScript(c)
		if err != nil {
			return nil, err
		}
		// script output only loses surrounding line breaks
		password = bytes.Trim(raw, "\r\n")
	} else {
		raw, err := l.fs.ReadFile(c.source)
		if err != nil {
			return nil, err
		}
		password = bytes.TrimSpace(raw)
	}

	if len(password) == 0 {
		return nil, fmt.Errorf("invalid vault password: empty")
	}

	return password, nil
}

// runPasswordScript executes a password script; "-client" scripts receive the vault id
func (l *DefaultLoader) runPasswordScript(c candidate) ([]byte, error) {
	script, err := filepath.Abs(c.source)
	if err != nil {
		return nil, err
	}

	args := []string{script}

	stem := strings.TrimSuffix(filepath.Base(c.source), filepath.Ext(c.source))
	if strings.HasSuffix(stem, clientScriptSuffix) {
		args = append(args, "--vault-id", c.vaultID)
	}

	output, err := l.cmdRunner(filepath.Dir(script), args...)
	if err != nil {
		return nil, fmt.Errorf("password script failed: %w", err)
	}

	return output, nil
}

// execCommand executes a command and returns its stdout. Stderr is passed
// through so script diagnostics stay visible.
func execCommand(dir string, args ...string) ([]byte, error) {
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Stderr = os.Stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return stdout.Bytes(), nil
}
