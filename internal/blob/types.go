package blob

import (
	"context"
)

// StorageService provides an interface for blob storage operations on photo
// and video attachments. This interface enables mocking in the report
// pipeline tests.
type StorageService interface {
	// UploadFile uploads a local file to a storage bucket under the given object name.
	UploadFile(ctx context.Context, bucketName, objectName, filePath string) error

	// UploadBytes uploads raw bytes under the given object name and returns the gs:// URI.
	UploadBytes(ctx context.Context, bucketName, objectName, contentType string, data []byte) (string, error)

	// Fetch downloads file bytes from the given gs:// URI.
	Fetch(ctx context.Context, uri string) ([]byte, error)

	// FilenameFromURI extracts the filename from a gs:// URI.
	FilenameFromURI(uri string) string
}
