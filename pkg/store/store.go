// Package store reads and writes whole JSON request documents by path. The
// conversion core has no file-path knowledge; this package is the only place
// that maps input documents to output documents on disk.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ReadJSON reads the document at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err = json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// WriteJSON writes v as an indented document at path, creating parent
// directories as needed.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err = os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ListJSONFiles returns the .json files directly under dir, sorted by name.
func ListJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// OutputPath derives the output document path from an input path by inserting
// a suffix before the extension: /in/req.json with suffix "_gemini" becomes
// /in/req_gemini.json. An optional outDir relocates the result.
func OutputPath(inputPath string, suffix string, outDir string) string {
	dir, base := filepath.Split(inputPath)
	if outDir != "" {
		dir = outDir
	}
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext) + suffix + ext
	return filepath.Join(dir, name)
}
