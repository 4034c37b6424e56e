// Package loader reads city record files from disk and decodes them into
// the raw record shape consumed by the cities package.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// NotFoundError means the path did not resolve to a readable file.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cities file not found: %s", e.Path)
}

// DecodeError means the file content is not a JSON array of city objects.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Load reads a JSON file holding a top-level array of city objects and
// returns the decoded records. Numbers are decoded as json.Number so
// integer populations survive intact.
func Load(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()

	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return records, nil
}
