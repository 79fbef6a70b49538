package visits

import (
	"errors"
	"io"
	"time"
)

const (
	MaxFilenameLength = 255
	MaxRecordingSize  = 100 * 1024 * 1024 // 100MB
	DownloadTTL       = 1 * time.Hour

	recordingPrefix = "recordings/"
)

var (
	ErrInvalidNote     = errors.New("invalid visit note")
	ErrStorageDisabled = errors.New("recording storage is not configured")
)

// AllowedContentTypes lists the audio formats phone browsers record in
var AllowedContentTypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp4":   true,
	"audio/x-m4a": true,
	"audio/aac":   true,
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/webm":  true,
	"audio/ogg":   true,
}

// Recording is an audio file attached to a visit note
type Recording struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// DownloadURL is a presigned link to a stored recording
type DownloadURL struct {
	URL       string `json:"download_url"`
	ExpiresAt int64  `json:"expires_at"` // Unix timestamp
}
