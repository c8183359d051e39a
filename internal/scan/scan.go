package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"matinee/internal/omdb"
)

// Queries walks the media directory and returns one fetch query per video
// file. Hidden files and macOS resource forks are skipped; files whose names
// clean down to nothing are ignored.
func Queries(root string) ([]omdb.Query, error) {
	var queries []omdb.Query
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "._") || strings.HasPrefix(name, "~") {
			return nil
		}
		if !IsVideoFile(name) {
			return nil
		}
		title := CleanFilename(name)
		if title == "" {
			return nil
		}
		queries = append(queries, omdb.Query{Title: title})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan media directory %s: %w", root, err)
	}
	return queries, nil
}
