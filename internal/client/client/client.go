package client

import (
	"context"

	"github.com/dmitrijs2005/secretkey/internal/client/models"
)

// Client is the remote platform API as seen by the rest of the client.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	Register(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error)

	// FetchPage returns ErrNoContent when the server reports that nothing is registered.
	FetchPage(ctx context.Context, page, size int) (*models.Page[models.PlatformCredential], error)
	FetchByName(ctx context.Context, name string) (*models.PlatformCredential, error)
	Create(ctx context.Context, fields models.Fields) (*models.PlatformCredential, error)
	Update(ctx context.Context, id string, fields models.Fields) (*models.PlatformCredential, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, kind ExportKind) ([]byte, error)
}

// TokenSource supplies the bearer token for authenticated calls. An empty
// token means there is no session.
type TokenSource interface {
	Token() string
}

// ExportKind selects one of the server-side export formats.
type ExportKind string

const (
	ExportSpreadsheet ExportKind = "excel"
	ExportDocument    ExportKind = "pdf"
)

// ParseExportKind accepts the user-facing names of the export formats.
func ParseExportKind(s string) (ExportKind, error) {
	switch s {
	case "excel", "xlsx", "spreadsheet":
		return ExportSpreadsheet, nil
	case "pdf", "document":
		return ExportDocument, nil
	default:
		return "", &models.ValidationError{Field: "format", Reason: "must be excel or pdf"}
	}
}

// Extension is the file extension used when saving an export.
func (k ExportKind) Extension() string {
	if k == ExportDocument {
		return "pdf"
	}
	return "xlsx"
}

// ContentType is the MIME type of the export blob.
func (k ExportKind) ContentType() string {
	if k == ExportDocument {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
