// Package config reads ansible.cfg vault settings and adapts the Ansible Vault
// codec, including vault envelope parsing and multi-secret decryption.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/ini.v1"

	"github.com/nickalie/vaultparse/internal/infrastructure/fs"
)

const (
	// EnvConfigFile names an explicit ansible.cfg (or a directory holding one).
	EnvConfigFile = "ANSIBLE_CONFIG"

	configFileName   = "ansible.cfg"
	defaultsSection  = "defaults"
	systemConfigFile = "/etc/ansible/ansible.cfg"
)

// Settings holds the vault related values read from ansible.cfg.
type Settings struct {
	// ConfigFile is the path of the file the values came from, empty when none was found.
	ConfigFile        string
	VaultPasswordFile string
	VaultIdentityList []string
}

// SettingsLoader defines the interface for loading ansible.cfg settings.
type SettingsLoader interface {
	Load() (*Settings, error)
}

// DefaultSettingsLoader finds ansible.cfg using the standard search order.
type DefaultSettingsLoader struct {
	fs     fs.FileSystem
	getenv func(string) string
}

// SettingsOption configures a DefaultSettingsLoader.
type SettingsOption func(*DefaultSettingsLoader)

// WithSettingsFileSystem sets the file system used to find and read ansible.cfg.
func WithSettingsFileSystem(fsys fs.FileSystem) SettingsOption {
	return func(l *DefaultSettingsLoader) {
		l.fs = fsys
	}
}

// WithSettingsGetenv sets the environment lookup function.
func WithSettingsGetenv(getenv func(string) string) SettingsOption {
	return func(l *DefaultSettingsLoader) {
		l.getenv = getenv
	}
}

// NewSettingsLoader creates a settings loader backed by the OS by default.
func NewSettingsLoader(opts ...SettingsOption) SettingsLoader {
	loader := &DefaultSettingsLoader{
		fs:     fs.NewFileSystem(),
		getenv: os.Getenv,
	}

	for _, opt := range opts {
		opt(loader)
	}

	return loader
}

// Load finds the first ansible.cfg in the search order and reads its vault settings.
// No config file at all is not an error and yields empty Settings.
func (l *DefaultSettingsLoader) Load() (*Settings, error) {
	path, err := l.findConfigFile()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return &Settings{}, nil
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	defaults, err := readDefaults(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return l.settingsFromDefaults(path, defaults), nil
}

// findConfigFile returns the config file to use or empty if none exists
func (l *DefaultSettingsLoader) findConfigFile() (string, error) {
	if explicit := l.getenv(EnvConfigFile); explicit != "" {
		path := l.expandPath(explicit, "")
		info, err := l.fs.Stat(path)
		if err != nil {
			return "", fmt.Errorf("config file from %s not found: %w", EnvConfigFile, err)
		}
		if info.IsDir() {
			path = filepath.Join(path, configFileName)
			if _, err := l.fs.Stat(path); err != nil {
				return "", fmt.Errorf("config file from %s not found: %w", EnvConfigFile, err)
			}
		}
		return path, nil
	}

	for _, candidate := range l.searchPaths() {
		if info, err := l.fs.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", nil
}

// searchPaths lists the implicit ansible.cfg locations in priority order
func (l *DefaultSettingsLoader) searchPaths() []string {
	var paths []string

	if wd, err := l.fs.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, configFileName))
	}
	if home, err := l.fs.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, "."+configFileName))
	}

	return append(paths, systemConfigFile)
}

// settingsFromDefaults extracts vault settings from the [defaults] values
func (l *DefaultSettingsLoader) settingsFromDefaults(path string, defaults map[string]string) *Settings {
	settings := &Settings{ConfigFile: path}
	baseDir := filepath.Dir(path)

	if value := defaults["vault_password_file"]; value != "" {
		settings.VaultPasswordFile = l.expandPath(value, baseDir)
	}

	settings.VaultIdentityList = SplitIdentityList(defaults["vault_identity_list"])

	return settings
}

// expandPath expands ~ and environment variables, resolving relative paths against baseDir
func (l *DefaultSettingsLoader) expandPath(value, baseDir string) string {
	return ExpandPath(value, baseDir, l.getenv, l.fs.UserHomeDir)
}

// ExpandPath expands a leading ~ and $VARS in value. A relative result is
// joined to baseDir when baseDir is not empty.
func ExpandPath(value, baseDir string, getenv func(string) string, homeDir func() (string, error)) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	if value == "~" || strings.HasPrefix(value, "~/") {
		if home, err := homeDir(); err == nil && home != "" {
			value = filepath.Join(home, strings.TrimPrefix(value, "~"))
		}
	}

	value = os.Expand(value, getenv)

	if baseDir != "" && !filepath.IsAbs(value) {
		value = filepath.Join(baseDir, value)
	}

	return value
}

// SplitIdentityList splits a comma separated vault identity list, dropping empty entries.
func SplitIdentityList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// iniOptions mirrors the configparser setup ansible reads ansible.cfg with.
// Inline comments are stripped by stripInlineComment because ini only
// recognises a literal space before the marker.
var iniOptions = ini.LoadOptions{
	Insensitive:                true,
	IgnoreInlineComment:        true,
	AllowPythonMultilineValues: true,
}

// readDefaults parses ansible.cfg data and returns the [defaults] keys,
// lower-cased, on top of any [DEFAULT] keys.
func readDefaults(data []byte) (map[string]string, error) {
	if err := requireSectionHeader(data); err != nil {
		return nil, err
	}

	file, err := ini.LoadSources(iniOptions, data)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string)
	for _, name := range []string{ini.DefaultSection, defaultsSection} {
		section, err := file.GetSection(name)
		if err != nil {
			continue
		}
		for _, key := range section.Keys() {
			values[key.Name()] = stripInlineComment(key.Value())
		}
	}

	return values, nil
}

// requireSectionHeader rejects keys that appear before the first section
func requireSectionHeader(data []byte) error {
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if !strings.HasPrefix(line, "[") {
			return fmt.Errorf("line %d: key outside of a section", i+1)
		}
		return nil
	}
	return nil
}

// stripInlineComment cuts each line of value at a ";" preceded by whitespace
func stripInlineComment(value string) string {
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		for j := 1; j < len(line); j++ {
			if line[j] == ';' && unicode.IsSpace(rune(line[j-1])) {
				line = line[:j]
				break
			}
		}
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ErrIdentitySource is returned for identity entries with an empty source.
var ErrIdentitySource = errors.New("vault identity has an empty source")

// ParseIdentity splits a "label@source" vault identity. A bare source gets
// an empty label.
func ParseIdentity(identity string) (label, source string, err error) {
	identity = strings.TrimSpace(identity)
	if idx := strings.Index(identity, "@"); idx >= 0 {
		label, source = strings.TrimSpace(identity[:idx]), strings.TrimSpace(identity[idx+1:])
	} else {
		source = identity
	}

	if source == "" {
		return "", "", fmt.Errorf("%w: %q", ErrIdentitySource, identity)
	}
	return label, source, nil
}
