package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/gif"  // register gif decoder
	_ "image/jpeg" // register jpeg decoder
	_ "image/png"  // register png decoder
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register webp decoder
	"gorm.io/gorm"

	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/storage"
	"github.com/cppla/boardcore/utils"
)

const DefaultMaxUploadBytes = 5 << 20

// allowedExtensions maps accepted extensions to their content type.
var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

var allowedFormats = map[string]bool{"jpeg": true, "png": true, "gif": true, "webp": true}

// FileService stores uploads and records them.
type FileService struct {
	db       *gorm.DB
	blobs    storage.BlobStore
	maxBytes int64
}

func NewFileService(db *gorm.DB, blobs storage.BlobStore, maxBytes int64) *FileService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &FileService{db: db, blobs: blobs, maxBytes: maxBytes}
}

// MaxBytes is the largest accepted upload.
func (s *FileService) MaxBytes() int64 {
	return s.maxBytes
}

// UploadInput is a single image upload. OwnerID is nil for anonymous uploads.
type UploadInput struct {
	OwnerID  *uint
	FileType string
	Filename string
	Data     []byte
}

// Upload validates and stores an image. The blob is removed again when the
// database row cannot be written.
func (s *FileService) Upload(ctx context.Context, in UploadInput) (file *models.File, err error) {
	defer func() { utils.UploadsTotal.WithLabelValues(in.FileType, utils.ResultLabel(err)).Inc() }()

	if in.FileType != models.FileTypeProfile && in.FileType != models.FileTypePost {
		return nil, models.ErrInvalidFileType
	}
	ext := strings.ToLower(filepath.Ext(in.Filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return nil, models.ErrInvalidFileType
	}
	if len(in.Data) == 0 {
		return nil, models.ErrRequiredFields
	}
	if int64(len(in.Data)) > s.maxBytes {
		return nil, models.ErrFileTooLarge
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(in.Data)); err != nil || !allowedFormats[format] {
		return nil, models.ErrInvalidFileType
	}

	url, err := s.blobs.Store(ctx, uuid.NewString()+ext, in.Data, contentType)
	if err != nil {
		return nil, models.Internal(err)
	}

	record := models.File{
		FileType:     in.FileType,
		UserID:       in.OwnerID,
		URL:          url,
		OriginalName: filepath.Base(in.Filename),
		Size:         int64(len(in.Data)),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), url); delErr != nil {
			utils.Sugar.Warnw("orphaned blob after failed upload", "url", url, "error", delErr)
		}
		return nil, models.Internal(err)
	}
	return &record, nil
}

// claimFile finds the active upload at url that callerID may attach: owned by
// the caller or anonymous, and not linked to a post other than postID.
func claimFile(tx *gorm.DB, url string, callerID, postID uint) (*models.File, error) {
	var file models.File
	err := tx.Where("url = ?", url).
		Where("(user_id = ? OR user_id IS NULL)", callerID).
		First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrInvalidFileURL
	}
	if err != nil {
		return nil, err
	}
	if file.PostID != nil && *file.PostID != postID {
		return nil, models.ErrInvalidFileURL
	}
	return &file, nil
}

// attachPostFile makes url the post's attachment, soft-deleting the previous
// one first. An empty url only detaches.
func attachPostFile(tx *gorm.DB, postID, callerID uint, url string) error {
	var target *models.File
	if url != "" {
		f, err := claimFile(tx, url, callerID, postID)
		if err != nil {
			return err
		}
		if f.ProfileSetAt != nil {
			return models.ErrInvalidFileURL
		}
		target = f
	}

	prior := tx.Where("post_id = ? AND file_type = ?", postID, models.FileTypePost)
	if target != nil {
		prior = prior.Where("id <> ?", target.ID)
	}
	if err := prior.Delete(&models.File{}).Error; err != nil {
		return err
	}
	if target == nil {
		return nil
	}
	return tx.Model(&models.File{}).Where("id = ?", target.ID).Updates(map[string]interface{}{
		"post_id":   postID,
		"user_id":   callerID,
		"file_type": models.FileTypePost,
	}).Error
}

// attachProfileImage makes url the user's profile image and soft-deletes the
// previous one. Other pending uploads of the user are left alone.
func attachProfileImage(tx *gorm.DB, userID uint, url string) error {
	target, err := claimFile(tx, url, userID, 0)
	if err != nil {
		return err
	}
	if target.ProfileSetAt != nil {
		return nil
	}
	if err := dropProfileImage(tx, userID, target.ID); err != nil {
		return err
	}
	return tx.Model(&models.File{}).Where("id = ?", target.ID).Updates(map[string]interface{}{
		"user_id":        userID,
		"file_type":      models.FileTypeProfile,
		"profile_set_at": time.Now(),
	}).Error
}

// dropProfileImage soft-deletes the user's chosen profile image unless it is keepID.
func dropProfileImage(tx *gorm.DB, userID, keepID uint) error {
	q := tx.Where("user_id = ? AND file_type = ? AND profile_set_at IS NOT NULL", userID, models.FileTypeProfile)
	if keepID != 0 {
		q = q.Where("id <> ?", keepID)
	}
	return q.Delete(&models.File{}).Error
}
