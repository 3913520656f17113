package cli

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickalie/vaultparse/internal/core/content"
	"github.com/nickalie/vaultparse/internal/core/resolver"
	"github.com/nickalie/vaultparse/internal/core/secret"
)

// MockResolver implements VaultResolver for testing
type MockResolver struct {
	ResolveFunc func(req resolver.Request) (*resolver.Result, error)
}

// ResolveRequest calls the mock function
func (m *MockResolver) ResolveRequest(req resolver.Request) (*resolver.Result, error) {
	return m.ResolveFunc(req)
}

// fixedResolver returns a resolver mock yielding data for every request
func fixedResolver(data map[string]interface{}) *MockResolver {
	return &MockResolver{
		ResolveFunc: func(req resolver.Request) (*resolver.Result, error) {
			return &resolver.Result{Content: data}, nil
		},
	}
}

func TestNewApp(t *testing.T) {
	app := NewApp(zerolog.Nop())

	assert.NotNil(t, app.GetResolver(), "Resolver should not be nil")
	_, ok := app.GetResolver().(*resolver.Resolver)
	assert.True(t, ok, "NewApp() should use *resolver.Resolver, got %T", app.GetResolver())
}

func TestNewAppWithOutput(t *testing.T) {
	var out bytes.Buffer
	app := NewApp(zerolog.Nop(), WithOutput(&out))

	assert.False(t, app.isTerminal(), "A buffer is never a terminal")

	err := app.Run(Options{VaultFile: "/does/not/exist.yml"})
	require.NoError(t, err)
	assert.Equal(t, "{}\n", out.String())
}

func TestAppRunJSON(t *testing.T) {
	var out bytes.Buffer
	var gotReq resolver.Request
	mock := &MockResolver{
		ResolveFunc: func(req resolver.Request) (*resolver.Result, error) {
			gotReq = req
			return &resolver.Result{Content: map[string]interface{}{"db_password": "s3cr3t"}}, nil
		},
	}

	app := NewAppWithDeps(mock, &out, nil)

	err := app.Run(Options{VaultFile: "vault.yml", PasswordFile: "pw.txt"})
	require.NoError(t, err)

	assert.Equal(t, "{\"db_password\":\"s3cr3t\"}\n", out.String())
	assert.Equal(t, resolver.Request{VaultFile: "vault.yml", PasswordFile: "pw.txt", Format: content.FormatYAML}, gotReq)
}

func TestAppRunJSONTerminal(t *testing.T) {
	var out bytes.Buffer
	app := NewAppWithDeps(fixedResolver(map[string]interface{}{"a": "b"}), &out, func() bool { return true })

	require.NoError(t, app.Run(Options{VaultFile: "vault.yml"}))
	assert.Equal(t, "{\n  \"a\": \"b\"\n}\n", out.String())
}

func TestAppRunYAML(t *testing.T) {
	var out bytes.Buffer
	app := NewAppWithDeps(fixedResolver(map[string]interface{}{"a": "b"}), &out, nil)

	require.NoError(t, app.Run(Options{VaultFile: "vault.yml", Output: OutputYAML}))
	assert.Equal(t, "a: b\n", out.String())
}

func TestAppRunEmptyContent(t *testing.T) {
	var out bytes.Buffer
	mock := &MockResolver{
		ResolveFunc: func(req resolver.Request) (*resolver.Result, error) {
			return &resolver.Result{Content: map[string]interface{}{}, Err: secret.ErrNoPassword}, nil
		},
	}

	app := NewAppWithDeps(mock, &out, nil)

	require.NoError(t, app.Run(Options{VaultFile: "vault.yml"}))
	assert.Equal(t, "{}\n", out.String())
}

func TestAppRunSetupError(t *testing.T) {
	var out bytes.Buffer
	setupErr := &secret.SourceError{Source: "pw.txt", Cause: os.ErrNotExist}
	mock := &MockResolver{
		ResolveFunc: func(req resolver.Request) (*resolver.Result, error) {
			return nil, setupErr
		},
	}

	app := NewAppWithDeps(mock, &out, nil)

	err := app.Run(Options{VaultFile: "vault.yml", PasswordFile: "pw.txt"})
	assert.ErrorIs(t, err, setupErr)
	assert.Contains(t, err.Error(), "vault resolution failed")
	assert.Empty(t, out.String())
}

func TestAppRunContentFormat(t *testing.T) {
	var gotFormat content.Format
	mock := &MockResolver{
		ResolveFunc: func(req resolver.Request) (*resolver.Result, error) {
			gotFormat = req.Format
			return &resolver.Result{Content: map[string]interface{}{}}, nil
		},
	}

	app := NewAppWithDeps(mock, &bytes.Buffer{}, nil)

	require.NoError(t, app.Run(Options{VaultFile: "secrets.vault", ContentFormat: "env"}))
	assert.Equal(t, content.FormatDotenv, gotFormat)

	err := app.Run(Options{VaultFile: "secrets.vault", ContentFormat: "xml"})
	assert.Error(t, err)
}

func TestAppRunUnsupportedOutput(t *testing.T) {
	app := NewAppWithDeps(fixedResolver(map[string]interface{}{}), &bytes.Buffer{}, nil)

	err := app.Run(Options{VaultFile: "vault.yml", Output: "xml"})
	assert.Error(t, err)
}

// failingWriter always fails to write
type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestAppRunWriteError(t *testing.T) {
	app := NewAppWithDeps(fixedResolver(map[string]interface{}{}), failingWriter{}, nil)

	err := app.Run(Options{VaultFile: "vault.yml"})
	assert.EqualError(t, err, "disk full")
}
