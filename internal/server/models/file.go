package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/orgdrive/internal/common"
)

// FileType classifies uploaded content.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypePDF   FileType = "pdf"
	FileTypeCSV   FileType = "csv"
)

var mimeFileTypes = map[string]FileType{
	"image/png":       FileTypeImage,
	"application/pdf": FileTypePDF,
	"text/csv":        FileTypeCSV,
}

// Valid reports whether t is one of the known file types.
func (t FileType) Valid() bool {
	switch t {
	case FileTypeImage, FileTypePDF, FileTypeCSV:
		return true
	}
	return false
}

// FileTypeFromMIME maps an uploaded MIME type to a FileType. Unmapped
// types are rejected with common.ErrUnsupportedFileType.
func FileTypeFromMIME(mime string) (FileType, error) {
	t, ok := mimeFileTypes[mime]
	if !ok {
		return "", fmt.Errorf("%w: %q", common.ErrUnsupportedFileType, mime)
	}
	return t, nil
}

// File is the metadata of an uploaded blob. The content itself lives in
// object storage under FileID.
type File struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	OrgID string `json:"orgId"`
	// FileID is the opaque object-store reference.
	FileID    string    `json:"fileId"`
	Type      FileType  `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// FileWithURL is a File enriched with a retrieval URL. URL is nil when the
// object store has no such object.
type FileWithURL struct {
	File
	URL *string `json:"url"`
}
