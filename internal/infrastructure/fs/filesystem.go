// Package fs provides the file system abstraction used to read vault files,
// password files and ansible.cfg.
package fs

import (
	"os"
)

// FileSystem abstracts the OS file operations needed to resolve a vault.
type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	Getwd() (string, error)
	UserHomeDir() (string, error)
}

// DefaultFileSystem implements FileSystem using OS calls
type DefaultFileSystem struct{}

// NewFileSystem creates a new default file system implementation
func NewFileSystem() FileSystem {
	return &DefaultFileSystem{}
}

// Stat implements the FileSystem interface by returning file info using os.Stat
func (fs *DefaultFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// ReadFile implements the FileSystem interface by reading a file using os.ReadFile
func (fs *DefaultFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// Getwd implements the FileSystem interface by returning the working directory
func (fs *DefaultFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

// UserHomeDir implements the FileSystem interface by returning the home directory
func (fs *DefaultFileSystem) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

// IsExecutable reports whether info describes a regular file with any execute bit set.
func IsExecutable(info os.FileInfo) bool {
	return info != nil && info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
