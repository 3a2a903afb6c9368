package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/orgdrive/internal/client/api"
	"github.com/dmitrijs2005/orgdrive/internal/server/models"
	"github.com/gabriel-vasile/mimetype"
)

// readFileFn is a test seam for reading files from disk.
var readFileFn = os.ReadFile

// detectFileType sniffs data and maps its MIME type to a FileType.
func detectFileType(data []byte) (models.FileType, error) {
	mime := mimetype.Detect(data).String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return models.FileTypeFromMIME(strings.TrimSpace(mime))
}

// Upload sends a local file to an organization: request an upload URL,
// PUT the bytes there, then register the file. The type is detected before
// anything is sent, so unsupported files cost no round trip.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("upload <path> <org> [name]")
	}
	path, orgID := args[0], args[1]
	name := filepath.Base(path)
	if len(args) > 2 {
		name = strings.Join(args[2:], " ")
	}

	data, err := readFileFn(path)
	if err != nil {
		return report(err)
	}

	fileType, err := detectFileType(data)
	if err != nil {
		return report(err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	ticket, err := a.api.GenerateUploadURL(ctx)
	if err != nil {
		return report(err)
	}

	if err := a.api.Upload(ctx, ticket.URL, data); err != nil {
		return report(err)
	}

	f, err := a.api.CreateFile(ctx, api.CreateFileRequest{
		Name:   name,
		FileID: ticket.ObjectID,
		OrgID:  orgID,
		Type:   fileType,
	})
	if err != nil {
		return report(err)
	}

	printlnFn("Uploaded:")
	printFile(f)
	return nil
}
