package dto

import "io"

// UploadFile is one multipart part handed to the upload service.
type UploadFile struct {
	Filename    string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// UploadedFile describes a stored file.
type UploadedFile struct {
	Filename     string  `json:"filename"`
	URL          string  `json:"url"`
	Size         int64   `json:"size"`
	Mimetype     string  `json:"mimetype"`
	IsImage      bool    `json:"isImage"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
}

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	Files []UploadedFile `json:"files"`
}
