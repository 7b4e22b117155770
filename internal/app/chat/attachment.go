package chat

import (
	"path/filepath"
	"strings"

	"coachchat/internal/pkg/errs"
)

const (
	// MaxAttachmentSizeMB is the maximum allowed file size in megabytes.
	MaxAttachmentSizeMB = 5

	// MaxAttachmentSize is the maximum allowed file size in bytes.
	MaxAttachmentSize = MaxAttachmentSizeMB * 1024 * 1024

	// MaxAttachmentsCount defines the maximum number of attachments allowed per message.
	MaxAttachmentsCount = 3
)

// AllowedMIMETypes defines the set of permitted MIME types for file attachments.
var AllowedMIMETypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"image/gif":       {},
	"application/pdf": {},
}

// ExtToMIME maps file extensions to their corresponding MIME types.
var ExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
}

// Attachment represents a file already uploaded through the portal's upload
// flow and referenced by its storage key in a chat message.
type Attachment struct {
	Key      string `json:"file_key"`
	Name     string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"file_size"`
}

// Validate checks the attachment's size and file type against the allowed limits.
func (a Attachment) Validate() *errs.CustomError {
	if a.Size <= 0 || a.Size > MaxAttachmentSize {
		return errs.NewError(errs.ErrAttachmentSizeInvalid)
	}

	lowerMimeType := strings.ToLower(a.MimeType)

	if _, ok := AllowedMIMETypes[lowerMimeType]; !ok {
		return errs.NewError(errs.ErrAttachmentTypeInvalid)
	}

	ext := strings.ToLower(filepath.Ext(a.Name))
	if len(ext) < 2 {
		return errs.NewError(errs.ErrAttachmentTypeInvalid)
	}

	expectedMIME, ok := ExtToMIME[ext]
	if !ok || expectedMIME != lowerMimeType {
		return errs.NewError(errs.ErrAttachmentTypeInvalid)
	}

	return nil
}

// validateAttachments checks the count limit and each attachment in turn.
func validateAttachments(attachments []Attachment) *errs.CustomError {
	if len(attachments) > MaxAttachmentsCount {
		return errs.NewError(errs.ErrAttachmentCountInvalid, MaxAttachmentsCount)
	}

	for _, a := range attachments {
		if err := a.Validate(); err != nil {
			return err
		}
	}

	return nil
}
