package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cppla/boardcore/models"
)

// LikeService toggles likes. Each (post, user) pair is stored at most once.
type LikeService struct {
	db *gorm.DB
}

func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{db: db}
}

// LikeResult is the state after a like or unlike.
type LikeResult struct {
	PostID         uint
	TotalLikeCount int64
	IsLiked        bool
}

// Like fails with ErrAlreadyLiked when the caller already likes the post.
func (s *LikeService) Like(ctx context.Context, callerID, postID uint) (*LikeResult, error) {
	result := &LikeResult{PostID: postID, IsLiked: true}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePostActive(tx, postID); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.PostLike{}).Where("post_id = ? AND user_id = ?", postID, callerID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return models.ErrAlreadyLiked
		}
		if err := tx.Create(&models.PostLike{PostID: postID, UserID: callerID}).Error; err != nil {
			return err
		}
		total, err := countLikes(tx, postID)
		result.TotalLikeCount = total
		return err
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, models.ErrAlreadyLiked
	}
	if err != nil {
		return nil, models.Internal(err)
	}
	return result, nil
}

// Unlike removes the caller's like if present; a missing like is not an error.
func (s *LikeService) Unlike(ctx context.Context, callerID, postID uint) (*LikeResult, error) {
	result := &LikeResult{PostID: postID, IsLiked: false}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePostActive(tx, postID); err != nil {
			return err
		}
		if err := tx.Where("post_id = ? AND user_id = ?", postID, callerID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		total, err := countLikes(tx, postID)
		result.TotalLikeCount = total
		return err
	})
	if err != nil {
		return nil, models.Internal(err)
	}
	return result, nil
}
