package utils

import (
	"io/fs"
	"path/filepath"
)

// FindSourceFiles recursively finds all .mdx and .md files in the specified
// directory, skipping hidden directories.
func FindSourceFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if len(name) > 1 && name[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}

		if IsSourceFile(path) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// IsSourceFile reports whether path names an MDX-LD document.
func IsSourceFile(path string) bool {
	switch filepath.Ext(path) {
	case ".mdx", ".md":
		return true
	default:
		return false
	}
}
