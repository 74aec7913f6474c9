package driven

import (
	"context"
	"errors"
)

// ErrUploadNotFound is returned by UploadTerminator when the storage backend
// no longer holds the upload.
var ErrUploadNotFound = errors.New("upload not found")

// UploadTerminator removes an upload and its data from the storage backend.
type UploadTerminator interface {
	Terminate(ctx context.Context, id string) error
}
