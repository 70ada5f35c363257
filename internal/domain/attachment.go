package domain

import "time"

// MaxAttachmentSizeBytes caps a single uploaded file at 5 MB.
const MaxAttachmentSizeBytes = 5 * 1024 * 1024

// Attachment records file metadata for a ticket (table chamadoanexo).
// The binary lives in the blob store under StorageKey.
type Attachment struct {
	ID         int64
	TicketID   int64
	FileName   string
	MimeType   string
	StorageKey string
	SizeBytes  int64
	UploadedAt time.Time
}
