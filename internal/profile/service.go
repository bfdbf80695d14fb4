package profile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/profile-api/internal/avatar"
	"github.com/redmonkez12/profile-api/internal/logging"
	"github.com/redmonkez12/profile-api/internal/storage"
)

// RecordStore reads and partially updates profile records
type RecordStore interface {
	Get(ctx context.Context, userID string) (Snapshot, error)
	Merge(ctx context.Context, userID string, fields Fields) error
}

// Notifier fans out change notifications for a record
type Notifier interface {
	Publish(ctx context.Context, userID string) error
	Subscribe(ctx context.Context, userID string) (<-chan struct{}, error)
}

type Options struct {
	PlaceholderImage string
	Avatar           avatar.Options
}

// Service implements reading and editing of a user's own profile
type Service struct {
	records  RecordStore
	images   storage.Store
	notifier Notifier
	logger   *logging.Logger
	opts     Options
}

func NewService(records RecordStore, images storage.Store, notifier Notifier, logger *logging.Logger, opts Options) *Service {
	return &Service{
		records:  records,
		images:   images,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
	}
}

// Result describes a successful Submit
type Result struct {
	Fields        Fields
	ImageURL      string
	ImageUploaded bool
}

func (s *Service) log(ctx context.Context) *logging.Logger {
	if l, ok := ctx.Value(logging.LoggerContextKey).(*logging.Logger); ok {
		return l
	}
	return s.logger
}

// Load reads the record once and projects it into a view
func (s *Service) Load(ctx context.Context, userID string) (*View, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}

	snap, err := s.records.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	view, decodeErrs := Project(userID, snap, s.opts.PlaceholderImage)
	for _, derr := range decodeErrs {
		s.log(ctx).Warn("failed to decode profile field", "user_id", userID, "error", derr.Error())
	}

	return view, nil
}

// Watch calls fn with the current view and again after every change
// notification, until ctx is cancelled. A failed reload is logged and the
// previous view stays in place.
func (s *Service) Watch(ctx context.Context, userID string, fn func(*View)) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUserID
	}

	// Subscribe first so a change between the first read and the
	// subscription is not lost
	ticks, err := s.notifier.Subscribe(ctx, userID)
	if err != nil {
		return err
	}

	view, err := s.Load(ctx, userID)
	if err != nil {
		return err
	}
	fn(view)

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
			view, err := s.Load(ctx, userID)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.log(ctx).Error("failed to reload profile", "user_id", userID, "error", err.Error())
				continue
			}
			fn(view)
		}
	}
}

// Submit uploads the staged image, if any, and then merges the draft into
// the record. Nothing is merged when the upload fails. On success the
// staged image is cleared.
func (s *Service) Submit(ctx context.Context, userID string, d *Draft) (*Result, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}
	logger := s.log(ctx).WithFields(map[string]any{"user_id": userID})

	snap, err := s.records.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	method := ParseSignupMethod(snap.String(FieldUserType))
	fields := method.MergeFields(d)
	if err := d.Validate(fields); err != nil {
		return nil, err
	}

	result := &Result{Fields: fields}

	if d.HasImage() {
		url, err := s.uploadImage(ctx, logger, userID, d.Image)
		if err != nil {
			return nil, err
		}
		fields[FieldProfileImageURL] = url
		result.ImageURL = url
		result.ImageUploaded = true
	}

	logger.Debug("updating profile", "fields", len(fields), "uploaded_image_url", result.ImageURL)

	if err := s.records.Merge(ctx, userID, fields); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUpdate, err)
	}

	d.Image = nil
	logger.Info("profile updated", "image_uploaded", result.ImageUploaded)

	if err := s.notifier.Publish(ctx, userID); err != nil {
		logger.Error("failed to publish profile change", "error", err.Error())
	}

	return result, nil
}

func (s *Service) uploadImage(ctx context.Context, logger *logging.Logger, userID string, img *StagedImage) (string, error) {
	normalized, err := avatar.Normalize(img.Body, s.opts.Avatar)
	if err != nil {
		return "", err
	}

	uploadID := uuid.NewString()
	path := ImagePath(userID)
	logger = logger.WithFields(map[string]any{"upload_id": uploadID, "path": path})
	logger.Info("uploading profile image", "bytes", normalized.Size(), "width", normalized.Width, "height", normalized.Height)

	lastReported := -1
	url, err := s.images.Put(ctx, storage.Object{
		Path:        path,
		Body:        bytes.NewReader(normalized.Data),
		Size:        normalized.Size(),
		ContentType: avatar.ContentType,
		Metadata: map[string]string{
			"upload-id":         uploadID,
			"user-id":           userID,
			"original-filename": img.Filename,
		},
		Version: normalized.Digest,
		Progress: func(sent, total int64) {
			pct := int(storage.Percent(sent, total))
			if pct != lastReported {
				lastReported = pct
				logger.Debug("upload progress", "progress", pct)
			}
		},
	})
	if err != nil {
		logger.Error("failed to upload profile image", "error", err.Error())
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}

	logger.Info("profile image uploaded", "url", url)
	return url, nil
}

// Reason strips the sentinel prefix from a wrapped error, leaving the
// collaborator's message
func Reason(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}
