// Package filecheck gates uploaded document blobs before they enter the
// registration workflow. The declared MIME type is trusted, not sniffed;
// callers needing content verification must add a separate collaborator.
package filecheck

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	dErrors "kycgate/pkg/domain-errors"
)

// MaxFileSize is the upload size ceiling in bytes (5 MiB).
const MaxFileSize = 5 * 1024 * 1024

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
}

var allowedMIMETypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
	"image/gif":       {},
}

// Check validates an upload's filename extension, declared MIME type, and
// size against the whitelist. sizeBytes < 0 means the size is unknown and the
// ceiling is not enforced. Returns nil when the file is acceptable.
func Check(filename, declaredMIME string, sizeBytes int64) error {
	if filename == "" {
		return dErrors.New(dErrors.CodeMissingFilename, "filename is required")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return dErrors.New(dErrors.CodeUnsupportedExtension,
			fmt.Sprintf("file extension %q is not allowed, allowed: %s", ext, keyList(allowedExtensions)))
	}

	if _, ok := allowedMIMETypes[declaredMIME]; !ok {
		return dErrors.New(dErrors.CodeUnsupportedMIME,
			fmt.Sprintf("MIME type %q is not allowed, allowed: %s", declaredMIME, keyList(allowedMIMETypes)))
	}

	if sizeBytes >= 0 && sizeBytes > MaxFileSize {
		return dErrors.New(dErrors.CodeFileTooLarge,
			fmt.Sprintf("file too large, maximum allowed: %.1fMB", float64(MaxFileSize)/(1024*1024)))
	}

	return nil
}

func keyList(m map[string]struct{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
