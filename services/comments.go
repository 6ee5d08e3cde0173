package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/utils"
	"github.com/cppla/boardcore/validation"
)

// CommentService implements comments on active posts.
type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

func (s *CommentService) Create(ctx context.Context, callerID, postID uint, content string) (*models.Comment, error) {
	content = utils.Sanitize(strings.TrimSpace(content))
	if err := validation.Required(content); err != nil {
		return nil, invalid(err)
	}
	comment := models.Comment{PostID: postID, UserID: callerID, Content: content}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePostActive(tx, postID); err != nil {
			return err
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, models.Internal(err)
	}
	return s.find(s.db.WithContext(ctx), comment.ID)
}

// List returns the active comments of an active post, oldest first.
func (s *CommentService) List(ctx context.Context, postID uint) ([]models.Comment, error) {
	db := s.db.WithContext(ctx)
	if err := ensurePostActive(db, postID); err != nil {
		return nil, err
	}
	comments := []models.Comment{}
	err := db.Preload("User", withAuthor).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.Internal(err)
	}
	return comments, nil
}

func (s *CommentService) Update(ctx context.Context, callerID, postID, commentID uint, content string) (*models.Comment, error) {
	content = utils.Sanitize(strings.TrimSpace(content))
	if err := validation.Required(content); err != nil {
		return nil, invalid(err)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedComment(tx, postID, commentID, callerID); err != nil {
			return err
		}
		res := tx.Model(&models.Comment{}).
			Where("id = ? AND user_id = ?", commentID, callerID).
			Update("content", content)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrCommentNotFound
		}
		return nil
	})
	if err != nil {
		return nil, models.Internal(err)
	}
	return s.find(s.db.WithContext(ctx), commentID)
}

func (s *CommentService) Delete(ctx context.Context, callerID, postID, commentID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedComment(tx, postID, commentID, callerID); err != nil {
			return err
		}
		res := tx.Where("user_id = ?", callerID).Delete(&models.Comment{}, commentID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrCommentNotFound
		}
		return nil
	})
	return models.Internal(err)
}

func (s *CommentService) find(db *gorm.DB, commentID uint) (*models.Comment, error) {
	var comment models.Comment
	if err := db.Preload("User", withAuthor).First(&comment, commentID).Error; err != nil {
		return nil, notFoundAs(err, models.ErrCommentNotFound)
	}
	return &comment, nil
}
