package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"anoa.com/studyhub/pkg/apperror"
	"anoa.com/studyhub/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UploadService interface {
	Upload(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*storage.UploadResult, error)
}

type Options struct {
	Folder   string
	MaxBytes int64
}

type uploadService struct {
	fileStorage storage.FileStorage
	opts        Options
	log         *zap.Logger
}

// NewUploadService wires uploads to fileStorage. A nil storage reports every
// upload as unavailable.
func NewUploadService(fileStorage storage.FileStorage, opts Options, log *zap.Logger) UploadService {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 10 << 20
	}
	return &uploadService{
		fileStorage: fileStorage,
		opts:        opts,
		log:         log,
	}
}

func (s *uploadService) Upload(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*storage.UploadResult, error) {
	if file == nil || file.Size == 0 {
		return nil, apperror.Validation("file is required")
	}
	if file.Size > s.opts.MaxBytes {
		return nil, apperror.Validation(fmt.Sprintf("file exceeds the %d byte limit", s.opts.MaxBytes))
	}
	if s.fileStorage == nil {
		return nil, fmt.Errorf("file storage is not configured: %w", apperror.ErrUnavailable)
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	result, err := s.fileStorage.Upload(ctx, f, s.opts.Folder, filepath.Base(file.Filename))
	if err != nil {
		return nil, err
	}
	if result.Size == 0 {
		result.Size = file.Size
	}

	s.log.Info("file uploaded",
		zap.String("user_id", userID.String()),
		zap.String("file_name", result.FileName),
		zap.Int64("size", result.Size))

	return result, nil
}
