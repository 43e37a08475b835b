package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// UploadResult is what callers get back for a stored file.
type UploadResult struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
}

// FileStorage defines contract for the object storage provider (Cloudinary implementation).
type FileStorage interface {
	// Upload stores the file under folder. r is rewound before every attempt.
	Upload(ctx context.Context, r io.ReadSeeker, folder, fileName string) (*UploadResult, error)
	// Delete removes a previously uploaded file using its URL.
	Delete(ctx context.Context, fileURL string) error
}

type Options struct {
	CloudinaryURL string
	CloudName     string
	MaxRetries    int
}

type cloudinaryStorage struct {
	cld        *cloudinary.Cloudinary
	maxRetries int
	log        *zap.Logger
}

// NewCloudinaryStorage creates Cloudinary-backed implementation of FileStorage.
// Without an explicit URL the SDK falls back to CLOUDINARY_URL from the environment.
func NewCloudinaryStorage(opts Options, log *zap.Logger) (FileStorage, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if opts.CloudinaryURL != "" {
		cld, err = cloudinary.NewFromURL(opts.CloudinaryURL)
	} else {
		cld, err = cloudinary.New()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	cld.Config.URL.Secure = true
	if opts.CloudName != "" {
		cld.Config.Cloud.CloudName = opts.CloudName
	}

	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}

	return &cloudinaryStorage{cld: cld, maxRetries: opts.MaxRetries, log: log}, nil
}

func (s *cloudinaryStorage) Upload(ctx context.Context, r io.ReadSeeker, folder, fileName string) (*UploadResult, error) {
	publicID := fmt.Sprintf("%d-%s", time.Now().UnixNano(), strings.TrimSuffix(fileName, filepath.Ext(fileName)))

	params := uploader.UploadParams{
		Folder:         folder,
		PublicID:       publicID,
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
		ResourceType:   "auto",
	}

	var resp *uploader.UploadResult
	operation := func() error {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return backoff.Permanent(err)
		}
		var opErr error
		resp, opErr = s.cld.Upload.Upload(ctx, r, params)
		if opErr != nil {
			return opErr
		}
		if resp.Error.Message != "" {
			return fmt.Errorf("cloudinary: %s", resp.Error.Message)
		}
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(s.maxRetries)), ctx)
	err := backoff.RetryNotify(operation, b, func(err error, d time.Duration) {
		s.log.Warn("upload attempt failed",
			zap.String("filename", fileName),
			zap.Error(err),
			zap.Duration("backoff", d))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to cloudinary: %w", err)
	}

	if resp.SecureURL == "" {
		return nil, fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return &UploadResult{
		URL:      resp.SecureURL,
		FileName: fileName,
		Size:     int64(resp.Bytes),
	}, nil
}

func (s *cloudinaryStorage) Delete(ctx context.Context, fileURL string) error {
	publicID := extractPublicID(fileURL)
	if publicID == "" {
		return fmt.Errorf("could not extract public ID from URL: %s", fileURL)
	}

	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from cloudinary: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}

	return nil
}

// extractPublicID maps a delivery URL back to its public id, e.g.
// https://res.cloudinary.com/demo/image/upload/v123/folder/sample.jpg -> folder/sample
func extractPublicID(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}

	parts := strings.Split(u.Path, "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}

	if uploadIndex == -1 || uploadIndex+1 >= len(parts) {
		return ""
	}

	relevant := parts[uploadIndex+1:]
	if len(relevant) > 1 && isVersionSegment(relevant[0]) {
		relevant = relevant[1:]
	}

	withExt := strings.Join(relevant, "/")
	return strings.TrimSuffix(withExt, filepath.Ext(withExt))
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
