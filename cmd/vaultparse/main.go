package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/nickalie/vaultparse/internal/infrastructure/log"
	"github.com/nickalie/vaultparse/internal/platform/cli"
)

// Application encapsulates the vaultparse CLI application
type Application struct {
	vaultFile     string
	passwordFile  string
	output        string
	contentFormat string
	verbose       bool
	version       bool
	versionString string
	stdout        io.Writer
	stderr        io.Writer
}

// NewApplication creates a new Application instance with default values
func NewApplication() *Application {
	return &Application{
		output:        string(cli.OutputJSON),
		contentFormat: "yaml",
		versionString: "1.0.0",
		stdout:        os.Stdout,
		stderr:        os.Stderr,
	}
}

// ParseFlags parses the command-line arguments and updates the Application fields accordingly.
// The vault file and password file may also be given positionally as
// "vaultparse VAULT_FILE [PASSWORD_FILE]"; named options take precedence.
func (app *Application) ParseFlags(args []string) error {
	flags := pflag.NewFlagSet("vaultparse", pflag.ContinueOnError)
	flags.SetOutput(app.stderr)

	flags.StringVar(&app.vaultFile, "vault-file", app.vaultFile, "Path to ansible vault file")
	flags.StringVar(&app.passwordFile, "vault-password-file", app.passwordFile, "Path to ansible vault password file")
	flags.StringVarP(&app.output, "format", "f", app.output, "Output format: json or yaml")
	flags.StringVar(&app.contentFormat, "content-format", app.contentFormat, "Vault plaintext format: yaml, dotenv, toml or auto")
	flags.BoolVarP(&app.verbose, "verbose", "v", app.verbose, "Enable verbose logging")
	flags.BoolVar(&app.version, "version", app.version, "Show version information")

	if err := flags.Parse(args); err != nil {
		return err
	}

	positional := flags.Args()
	if app.vaultFile == "" && len(positional) > 0 {
		app.vaultFile = positional[0]
	}
	if app.passwordFile == "" && len(positional) > 1 {
		app.passwordFile = positional[1]
	}

	return nil
}

// Run executes the application
func (app *Application) Run() error {
	if app.version {
		_, err := fmt.Fprintf(app.stdout, "vaultparse version %s\n", app.versionString)
		return err
	}

	logger := log.NewLogger(app.stderr, app.verbose)

	return cli.NewApp(logger, cli.WithOutput(app.stdout)).Run(cli.Options{
		VaultFile:     app.vaultFile,
		PasswordFile:  app.passwordFile,
		Output:        cli.OutputFormat(app.output),
		ContentFormat: app.contentFormat,
	})
}

func main() {
	app := NewApplication()

	if err := app.ParseFlags(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
