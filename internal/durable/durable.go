// Package durable mirrors single in-memory values to single files. A value
// is either raw bytes (stored verbatim) or a structured value (stored as
// JSON). Writes overwrite the whole file and carry no partial-write
// protection of their own: atomicity across a group of values belongs to the
// snapshot commit boundary, not to this layer.
package durable

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// MissingError reports a load from a file that does not exist. A durable
// value never falls back to a silent default.
type MissingError struct {
	Path string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("durable value missing: %s", e.Path)
}

// DecodeError reports structurally invalid content in a value file. It keeps
// the offending content for diagnosis.
type DecodeError struct {
	Path    string
	Content []byte
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// LoadRaw reads a raw-byte value.
func LoadRaw(path string) (string, error) {
	data, err := read(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SyncRaw overwrites the file with the raw value.
func SyncRaw(path, value string) error {
	return write(path, []byte(value))
}

// LoadJSON reads a structured value into out. Malformed content yields a
// DecodeError carrying the file content.
func LoadJSON(path string, out any) error {
	data, err := read(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Path: path, Content: data, Err: err}
	}
	return nil
}

// SyncJSON encodes the value and overwrites the file.
func SyncJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return write(path, append(data, '\n'))
}

func read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingError{Path: path}
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func write(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
