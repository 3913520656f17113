package vaultparse

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sosedoff/ansible-vault-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeVault encrypts plaintext with password and writes it with a password file
func writeVault(t *testing.T, plaintext, password string) (vaultFile, passwordFile string) {
	t.Helper()
	dir := t.TempDir()

	encrypted, err := vault.Encrypt(plaintext, password)
	require.NoError(t, err)

	vaultFile = filepath.Join(dir, "vault.yml")
	passwordFile = filepath.Join(dir, "pw.txt")
	require.NoError(t, os.WriteFile(vaultFile, []byte(encrypted), 0600))
	require.NoError(t, os.WriteFile(passwordFile, []byte(password+"\n"), 0600))
	return vaultFile, passwordFile
}

func TestParse(t *testing.T) {
	vaultFile, passwordFile := writeVault(t, "db_password: s3cr3t\nusers:\n  - alice\n", "hunter2")

	got := Parse(vaultFile, passwordFile)

	assert.Equal(t, map[string]interface{}{
		"db_password": "s3cr3t",
		"users":       []interface{}{"alice"},
	}, got)
}

func TestParseWrongPassword(t *testing.T) {
	vaultFile, _ := writeVault(t, "db_password: s3cr3t\n", "hunter2")
	wrong := filepath.Join(filepath.Dir(vaultFile), "wrong.txt")
	require.NoError(t, os.WriteFile(wrong, []byte("nope\n"), 0600))

	assert.Equal(t, map[string]interface{}{}, Parse(vaultFile, wrong))

	result, err := ParseResult(vaultFile, wrong)
	require.NoError(t, err)

	var decryptErr *DecryptError
	assert.True(t, errors.As(result.Err, &decryptErr), "Expected DecryptError, got %v", result.Err)
	assert.True(t, IsContentError(result.Err))
}

func TestParseEmptyAndOmittedPasswordFileMatch(t *testing.T) {
	t.Setenv("ANSIBLE_VAULT_PASSWORD_FILE", "")
	t.Setenv("ANSIBLE_VAULT_IDENTITY_LIST", "")
	t.Setenv("ANSIBLE_CONFIG", "")
	chdir(t, t.TempDir())

	vaultFile, _ := writeVault(t, "a: b\n", "hunter2")

	assert.Equal(t, Parse(vaultFile), Parse(vaultFile, ""))
}

func TestParseEnvironmentPasswordFile(t *testing.T) {
	vaultFile, passwordFile := writeVault(t, "a: b\n", "hunter2")
	t.Setenv("ANSIBLE_VAULT_PASSWORD_FILE", passwordFile)
	t.Setenv("ANSIBLE_VAULT_IDENTITY_LIST", "")
	t.Setenv("ANSIBLE_CONFIG", "")
	chdir(t, t.TempDir())

	assert.Equal(t, map[string]interface{}{"a": "b"}, Parse(vaultFile))
}

func TestParseMissingPasswordFileIsSetupError(t *testing.T) {
	vaultFile, _ := writeVault(t, "a: b\n", "hunter2")

	_, err := ParseWithOptions(vaultFile, filepath.Join(t.TempDir(), "missing.txt"))

	var sourceErr *SourceError
	assert.True(t, errors.As(err, &sourceErr), "Expected SourceError, got %v", err)
	assert.False(t, IsContentError(err))

	assert.Equal(t, map[string]interface{}{}, Parse(vaultFile, filepath.Join(t.TempDir(), "missing.txt")))
}

func TestParseDotenvVault(t *testing.T) {
	vaultFile, passwordFile := writeVault(t, "DB_PASSWORD=s3cr3t\nAPI_KEY=abc\n", "hunter2")

	got, err := ParseWithOptions(vaultFile, passwordFile, WithFormat(FormatDotenv))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"DB_PASSWORD": "s3cr3t", "API_KEY": "abc"}, got)
}

func TestParseNotAVault(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.yml")
	require.NoError(t, os.WriteFile(plain, []byte("a: b\n"), 0600))
	pw := filepath.Join(dir, "pw.txt")
	require.NoError(t, os.WriteFile(pw, []byte("x\n"), 0600))

	result, err := ParseResult(plain, pw)
	require.NoError(t, err)
	assert.ErrorIs(t, result.Err, ErrNotVault)
	assert.Empty(t, result.Content)
}

func TestParseAutoFormat(t *testing.T) {
	dir := t.TempDir()
	encrypted, err := vault.Encrypt("DB_PASSWORD=s3cr3t\n", "hunter2")
	require.NoError(t, err)

	vaultFile := filepath.Join(dir, "prod.env.vault")
	pw := filepath.Join(dir, "pw.txt")
	require.NoError(t, os.WriteFile(vaultFile, []byte(encrypted), 0600))
	require.NoError(t, os.WriteFile(pw, []byte("hunter2\n"), 0600))

	got, err := ParseWithOptions(vaultFile, pw, WithFormat(FormatAuto))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"DB_PASSWORD": "s3cr3t"}, got)
}

func TestWithLoggerReachesSecretSetup(t *testing.T) {
	t.Setenv("ANSIBLE_VAULT_PASSWORD_FILE", "")
	t.Setenv("ANSIBLE_VAULT_IDENTITY_LIST", "")
	t.Setenv("ANSIBLE_CONFIG", "")
	chdir(t, t.TempDir())

	vaultFile, passwordFile := writeVault(t, "a: b\n", "hunter2")

	var buf bytes.Buffer
	got, err := ParseWithOptions(vaultFile, passwordFile, WithLogger(zerolog.New(&buf)))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": "b"}, got)
	assert.Contains(t, buf.String(), "resolved vault secret")
}

// chdir changes the working directory for the test and restores it on cleanup
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
