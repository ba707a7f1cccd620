package services

import (
	"fmt"
	"io"
	"mime/multipart"
)

type UploadReader interface {
	ReadUpload(file *multipart.FileHeader) ([]byte, error)
}

type uploadReader struct {
	maxBytes int64
}

func NewUploadReader(maxBytes int64) UploadReader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &uploadReader{maxBytes: maxBytes}
}

// ReadUpload checks the declared size before opening the part, so oversized
// uploads are rejected without being read.
func (u *uploadReader) ReadUpload(file *multipart.FileHeader) ([]byte, error) {
	if file == nil || file.Size == 0 {
		return nil, NewError(KindEmptyInput, "empty file", nil)
	}
	if file.Size > u.maxBytes {
		return nil, NewError(KindPayloadTooLarge, fmt.Sprintf("file too large (max %s)", formatBytes(u.maxBytes)), nil)
	}

	src, err := file.Open()
	if err != nil {
		return nil, NewError(KindEmptyInput, "could not read uploaded file", err)
	}
	defer src.Close()

	// One extra byte is enough to detect a body larger than declared.
	data, err := io.ReadAll(io.LimitReader(src, u.maxBytes+1))
	if err != nil {
		return nil, NewError(KindEmptyInput, "could not read uploaded file", err)
	}
	if len(data) == 0 {
		return nil, NewError(KindEmptyInput, "empty file", nil)
	}
	if int64(len(data)) > u.maxBytes {
		return nil, NewError(KindPayloadTooLarge, fmt.Sprintf("file too large (max %s)", formatBytes(u.maxBytes)), nil)
	}

	return data, nil
}
