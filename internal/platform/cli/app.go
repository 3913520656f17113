// Package cli provides the command-line interface functionality for vaultparse.
// It wires password resolution, vault decryption and content decoding together
// and renders the resolved content for the terminal or for other programs.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
	"gopkg.in/yaml.v2"

	"github.com/nickalie/vaultparse/internal/config"
	"github.com/nickalie/vaultparse/internal/core/content"
	"github.com/nickalie/vaultparse/internal/core/resolver"
	"github.com/nickalie/vaultparse/internal/infrastructure/env"
	"github.com/nickalie/vaultparse/internal/infrastructure/fs"
	"github.com/nickalie/vaultparse/internal/infrastructure/log"
)

// OutputFormat names how resolved content is printed.
type OutputFormat string

const (
	// OutputJSON prints JSON, indented when writing to a terminal.
	OutputJSON OutputFormat = "json"
	// OutputYAML prints YAML.
	OutputYAML OutputFormat = "yaml"
)

// VaultResolver defines the interface for resolving vault content
type VaultResolver interface {
	ResolveRequest(req resolver.Request) (*resolver.Result, error)
}

// Options holds the per-run settings taken from the command line.
type Options struct {
	VaultFile     string
	PasswordFile  string
	Output        OutputFormat
	ContentFormat string
}

// App represents the main application structure that resolves a vault and
// prints its content.
type App struct {
	resolver   VaultResolver
	out        io.Writer
	isTerminal func() bool
}

// AppOption is a function that modifies an App
type AppOption func(*App)

// WithOutput returns an option that sends rendered content to out
func WithOutput(out io.Writer) AppOption {
	return func(app *App) {
		app.out = out
		app.isTerminal = terminalCheck(out)
	}
}

// NewApp creates and returns a new App instance with default implementations
// for all dependencies.
func NewApp(logger log.Logger, opts ...AppOption) *App {
	fileSystem := fs.NewFileSystem()
	secretsLoader := env.NewLoader(env.WithFileSystem(fileSystem), env.WithLogger(logger))
	vaultLoader := config.NewVaultLoader(fileSystem, config.NewVaultDecrypter())

	app := &App{
		resolver:   resolver.New(secretsLoader, vaultLoader, resolver.WithLogger(logger)),
		out:        os.Stdout,
		isTerminal: terminalCheck(os.Stdout),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// terminalCheck reports whether out is an interactive terminal
func terminalCheck(out io.Writer) func() bool {
	return func() bool {
		f, ok := out.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}
}

// NewAppWithDeps creates and returns a new App instance with custom dependencies
func NewAppWithDeps(vaultResolver VaultResolver, out io.Writer, isTerminal func() bool) *App {
	if isTerminal == nil {
		isTerminal = func() bool { return false }
	}

	return &App{
		resolver:   vaultResolver,
		out:        out,
		isTerminal: isTerminal,
	}
}

// Run resolves the vault described by opts and prints its content. Content
// failures print an empty mapping and are not errors.
func (a *App) Run(opts Options) error {
	format, err := content.ParseFormat(opts.ContentFormat)
	if err != nil {
		return err
	}

	result, err := a.resolver.ResolveRequest(resolver.Request{
		VaultFile:    opts.VaultFile,
		PasswordFile: opts.PasswordFile,
		Format:       format,
	})
	if err != nil {
		return fmt.Errorf("vault resolution failed: %w", err)
	}

	return a.render(result.Content, opts.Output)
}

// GetResolver returns the vault resolver for testing
func (a *App) GetResolver() VaultResolver {
	return a.resolver
}

// render writes content to the output in the requested format
func (a *App) render(data map[string]interface{}, output OutputFormat) error {
	var (
		encoded []byte
		err     error
	)

	switch output {
	case OutputJSON, "":
		if a.isTerminal() {
			encoded, err = json.MarshalIndent(data, "", "  ")
		} else {
			encoded, err = json.Marshal(data)
		}
	case OutputYAML:
		encoded, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("unsupported output format: %s", output)
	}

	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	if len(encoded) == 0 || encoded[len(encoded)-1] != '\n' {
		encoded = append(encoded, '\n')
	}

	_, err = a.out.Write(encoded)
	return err
}
