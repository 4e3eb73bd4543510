package slot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSlot stores each key as a JSON file inside a directory.
type FileSlot struct {
	directory string
}

func NewFileSlot(directory string) *FileSlot {
	return &FileSlot{directory: directory}
}

func (s *FileSlot) Get(ctx context.Context, key string) ([]byte, error) {
	filename, err := s.filename(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename) // #nosec G304 - filename is built from the configured directory
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot file: %w", err)
	}
	return data, nil
}

// Put writes to a temp file first and renames it over the old value.
func (s *FileSlot) Put(ctx context.Context, key string, value []byte) error {
	filename, err := s.filename(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.directory, 0750); err != nil {
		return fmt.Errorf("failed to create slot directory: %w", err)
	}

	tempFile := filename + ".tmp"
	if err := os.WriteFile(tempFile, value, 0600); err != nil {
		return fmt.Errorf("failed to write slot file: %w", err)
	}
	if err := os.Rename(tempFile, filename); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to replace slot file: %w", err)
	}
	return nil
}

func (s *FileSlot) Close() error {
	return nil
}

func (s *FileSlot) filename(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.directory, key+".json"), nil
}
