package cloning

import (
	"io/fs"
	"os"
)

// FileSystem abstracts the directory inspection primitives used by the cloner.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadDirectoryNames(path string) ([]string, error)
	CreateTemporary(directory string, namePattern string) (string, error)
	Remove(path string) error
}

// OSFileSystem implements FileSystem using the operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadDirectoryNames lists the entry names of a directory.
func (OSFileSystem) ReadDirectoryNames(path string) ([]string, error) {
	directoryEntries, readError := os.ReadDir(path)
	if readError != nil {
		return nil, readError
	}
	entryNames := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		entryNames = append(entryNames, directoryEntry.Name())
	}
	return entryNames, nil
}

// CreateTemporary creates a temporary file inside the directory and returns its path.
func (OSFileSystem) CreateTemporary(directory string, namePattern string) (string, error) {
	temporaryFile, createError := os.CreateTemp(directory, namePattern)
	if createError != nil {
		return "", createError
	}
	temporaryPath := temporaryFile.Name()
	if closeError := temporaryFile.Close(); closeError != nil {
		return temporaryPath, closeError
	}
	return temporaryPath, nil
}

// Remove deletes a path.
func (OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}
