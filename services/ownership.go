package services

import (
	"gorm.io/gorm"

	"github.com/cppla/boardcore/models"
)

// requireOwner rejects callers other than the stored owner. It runs after the
// resource was found and before anything is written.
func requireOwner(ownerID, callerID uint, denied *models.AppError) error {
	if callerID == 0 || ownerID != callerID {
		return denied
	}
	return nil
}

// ownedPost loads an active post and checks that callerID owns it.
func ownedPost(tx *gorm.DB, postID, callerID uint) (*models.Post, error) {
	var post models.Post
	if err := tx.First(&post, postID).Error; err != nil {
		return nil, notFoundAs(err, models.ErrPostNotFound)
	}
	if err := requireOwner(post.UserID, callerID, models.ErrNotPostAuthor); err != nil {
		return nil, err
	}
	return &post, nil
}

// ownedComment loads an active comment of an active post and checks that callerID owns it.
func ownedComment(tx *gorm.DB, postID, commentID, callerID uint) (*models.Comment, error) {
	if err := ensurePostActive(tx, postID); err != nil {
		return nil, err
	}
	var comment models.Comment
	if err := tx.Where("post_id = ?", postID).First(&comment, commentID).Error; err != nil {
		return nil, notFoundAs(err, models.ErrCommentNotFound)
	}
	if err := requireOwner(comment.UserID, callerID, models.ErrNotCommentAuthor); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ownedAccount loads an active user and checks that callerID is that user.
func ownedAccount(tx *gorm.DB, userID, callerID uint) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		return nil, notFoundAs(err, models.ErrUserNotFound)
	}
	if err := requireOwner(user.ID, callerID, models.ErrNotAccountOwner); err != nil {
		return nil, err
	}
	return &user, nil
}

// ensurePostActive fails with ErrPostNotFound when the post is missing or soft-deleted.
func ensurePostActive(tx *gorm.DB, postID uint) error {
	var n int64
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&n).Error; err != nil {
		return models.Internal(err)
	}
	if n == 0 {
		return models.ErrPostNotFound
	}
	return nil
}
