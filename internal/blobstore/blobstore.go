// Package blobstore persists uploaded document blobs. The coordinator only
// depends on the narrow Put contract; implementations decide durability.
package blobstore

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Metadata accompanies a stored blob so objects stay traceable to the
// registration they belong to.
type Metadata struct {
	SubjectID        string
	OriginalFilename string
	ContentType      string
	UploadedAt       time.Time
}

// ObjectKey derives the storage key for a blob:
// documents/{subjectID}/{timestamp}_{random}{ext}.
func ObjectKey(meta Metadata) string {
	ext := filepath.Ext(meta.OriginalFilename)
	if ext == "" {
		ext = ".pdf"
	}
	ts := meta.UploadedAt.UTC().Format("20060102_150405")
	return fmt.Sprintf("documents/%s/%s_%s%s", meta.SubjectID, ts, uuid.NewString(), ext)
}
