package fs

import (
	"os"
	"time"
)

// MockFileSystem implements FileSystem for testing
type MockFileSystem struct {
	StatFunc        func(name string) (os.FileInfo, error)
	ReadFileFunc    func(name string) ([]byte, error)
	GetwdFunc       func() (string, error)
	UserHomeDirFunc func() (string, error)
}

// Stat mocks the Stat method of FileSystem interface
func (m *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	if m.StatFunc != nil {
		return m.StatFunc(name)
	}
	return nil, os.ErrNotExist
}

// ReadFile mocks the ReadFile method of FileSystem interface
func (m *MockFileSystem) ReadFile(name string) ([]byte, error) {
	if m.ReadFileFunc != nil {
		return m.ReadFileFunc(name)
	}
	return nil, os.ErrNotExist
}

// Getwd mocks the Getwd method of FileSystem interface
func (m *MockFileSystem) Getwd() (string, error) {
	if m.GetwdFunc != nil {
		return m.GetwdFunc()
	}
	return "/", nil
}

// UserHomeDir mocks the UserHomeDir method of FileSystem interface
func (m *MockFileSystem) UserHomeDir() (string, error) {
	if m.UserHomeDirFunc != nil {
		return m.UserHomeDirFunc()
	}
	return "", os.ErrNotExist
}

// MockFileInfo implements os.FileInfo for testing
type MockFileInfo struct {
	FileName    string
	FileSize    int64
	FileMode    os.FileMode
	FileModTime time.Time
}

// Name returns the base name of the file
func (m *MockFileInfo) Name() string { return m.FileName }

// Size returns the length in bytes
func (m *MockFileInfo) Size() int64 { return m.FileSize }

// Mode returns the file mode bits
func (m *MockFileInfo) Mode() os.FileMode { return m.FileMode }

// ModTime returns the modification time
func (m *MockFileInfo) ModTime() time.Time { return m.FileModTime }

// IsDir reports whether the file is a directory
func (m *MockFileInfo) IsDir() bool { return m.FileMode.IsDir() }

// Sys returns nil
func (m *MockFileInfo) Sys() interface{} { return nil }
