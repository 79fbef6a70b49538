// Package visits saves the notes a caregiver takes during a visit. An
// optional audio recording goes to object storage first; the note itself
// is stored by the care backend with a reference to the object.
package visits

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"vrecorder/internal/model"
	"vrecorder/internal/storage"
)

// Backend stores service records
type Backend interface {
	CreateServiceRecord(ctx context.Context, rec *model.ServiceRecord) (*model.ServiceRecord, error)
}

// Service handles business logic for visit notes
type Service struct {
	backend Backend
	storage storage.Service
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a visits service. store may be nil, in which case
// notes without a recording still work.
func NewService(backend Backend, store storage.Service, logger *slog.Logger) *Service {
	return &Service{
		backend: backend,
		storage: store,
		logger:  logger,
		now:     time.Now,
	}
}

// ValidateFilename checks if filename is safe and valid
func ValidateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if len(filename) > MaxFilenameLength {
		return fmt.Errorf("filename too long (max %d characters)", MaxFilenameLength)
	}
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		return fmt.Errorf("filename contains invalid characters")
	}
	if filepath.Ext(filename) == "" {
		return fmt.Errorf("filename must have an extension")
	}
	return nil
}

// ValidateContentType checks if content type is an accepted audio format.
// Parameters such as "; codecs=opus" are ignored.
func ValidateContentType(contentType string) error {
	if contentType == "" {
		return fmt.Errorf("content type cannot be empty")
	}
	base, _, _ := strings.Cut(contentType, ";")
	if !AllowedContentTypes[strings.TrimSpace(base)] {
		return fmt.Errorf("content type %s is not allowed", contentType)
	}
	return nil
}

func validateRecording(rec *Recording) error {
	if err := ValidateFilename(rec.Filename); err != nil {
		return fmt.Errorf("%w: invalid filename: %v", ErrInvalidNote, err)
	}
	if err := ValidateContentType(rec.ContentType); err != nil {
		return fmt.Errorf("%w: invalid content type: %v", ErrInvalidNote, err)
	}
	if rec.Size <= 0 {
		return fmt.Errorf("%w: recording is empty", ErrInvalidNote)
	}
	if rec.Size > MaxRecordingSize {
		return fmt.Errorf("%w: recording exceeds %d bytes", ErrInvalidNote, MaxRecordingSize)
	}
	return nil
}

// SaveNote stores a visit note for appointmentID. When rec is given the
// audio is uploaded first and removed again if the backend rejects the note.
func (s *Service) SaveNote(ctx context.Context, appointmentID, content string, rec *Recording) (*model.ServiceRecord, error) {
	content = strings.TrimSpace(content)
	if appointmentID == "" {
		return nil, fmt.Errorf("%w: appointment id is required", ErrInvalidNote)
	}
	if content == "" && rec == nil {
		return nil, fmt.Errorf("%w: note needs text or a recording", ErrInvalidNote)
	}

	record := &model.ServiceRecord{
		AppointmentID: appointmentID,
		Content:       content,
		RecordedAt:    s.now(),
	}

	if rec != nil {
		if err := validateRecording(rec); err != nil {
			return nil, err
		}
		if s.storage == nil {
			return nil, ErrStorageDisabled
		}

		key := fmt.Sprintf("%s%s/%s-%s", recordingPrefix, appointmentID, uuid.New().String(), rec.Filename)
		if err := s.storage.Upload(ctx, key, rec.ContentType, rec.Body, rec.Size); err != nil {
			return nil, fmt.Errorf("failed to upload recording: %w", err)
		}
		record.RecordingKey = key
		record.RecordingType = rec.ContentType
		record.RecordingSize = rec.Size
	}

	saved, err := s.backend.CreateServiceRecord(ctx, record)
	if err != nil {
		if record.RecordingKey != "" {
			// use a fresh context: ctx may be the reason the call failed
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if delErr := s.storage.DeleteFile(cleanupCtx, record.RecordingKey); delErr != nil {
				s.logger.Error("Failed to remove orphaned recording",
					"key", record.RecordingKey,
					"error", delErr.Error(),
				)
			}
		}
		return nil, err
	}

	s.logger.Info("Visit note saved",
		"appointment_id", appointmentID,
		"has_recording", record.RecordingKey != "",
	)

	if saved == nil || saved.AppointmentID == "" {
		return record, nil
	}
	return saved, nil
}

// RecordingURL presigns a download for a stored recording
func (s *Service) RecordingURL(ctx context.Context, key string) (*DownloadURL, error) {
	key = strings.TrimPrefix(key, "/")
	if !strings.HasPrefix(key, recordingPrefix) || strings.Contains(key, "..") {
		return nil, fmt.Errorf("%w: unknown recording key", ErrInvalidNote)
	}
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}

	link, err := s.storage.GeneratePresignedDownloadURL(ctx, key, DownloadTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate download URL: %w", err)
	}

	return &DownloadURL{
		URL:       link,
		ExpiresAt: s.now().Add(DownloadTTL).Unix(),
	}, nil
}

// HealthCheck reports storage health; it is nil when storage is disabled
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Health(ctx)
}

// StorageEnabled reports whether recordings can be attached
func (s *Service) StorageEnabled() bool {
	return s.storage != nil
}
