// Package artifact derives on-disk locations for downloaded update artifacts.
package artifact

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// ResolvePath returns the final location of a downloaded artifact: the file
// name taken from downloadURL, placed in the directory of tempPath.
//
// It returns "" when no rename is possible (blank URL, URL without a file
// name, or no temp path). Callers treat "" as "keep the temp path".
// ResolvePath performs no I/O.
func ResolvePath(tempPath, downloadURL string) string {
	if strings.TrimSpace(tempPath) == "" {
		return ""
	}
	name := FileNameFromURL(downloadURL)
	if name == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(tempPath), name)
}

// FileNameFromURL extracts a sanitized file name from a download URL.
// Query strings and fragments are ignored. Returns "" for edge cases.
func FileNameFromURL(downloadURL string) string {
	downloadURL = strings.TrimSpace(downloadURL)
	if downloadURL == "" {
		return ""
	}

	p := downloadURL
	if parsed, err := url.Parse(downloadURL); err == nil {
		p = parsed.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		// Fall back to treating it as a plain path.
		p = p[:i]
	}

	return sanitizeFileName(p)
}

// sanitizeFileName keeps only the last path element so a crafted URL can
// never point outside the download directory.
func sanitizeFileName(name string) string {
	// url paths always use "/", but be tolerant of Windows-style separators.
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(name)

	switch base {
	case ".", "..", "/", "":
		return ""
	}
	return base
}
