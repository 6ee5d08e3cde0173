package services

import (
	"gorm.io/gorm"

	"github.com/cppla/boardcore/models"
)

// withPostDetails selects the live like/comment counts and the attached file
// next to every post row. Counts are never stored.
func withPostDetails(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, "+
		"(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) AS like_count, "+
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comment_count, "+
		"(SELECT files.url FROM files WHERE files.post_id = posts.id AND files.file_type = ? AND files.deleted_at IS NULL ORDER BY files.id DESC LIMIT 1) AS file_url",
		models.FileTypePost)
}

// withProfileImage selects the chosen profile file next to every user row.
// Uploads not yet chosen are ignored.
func withProfileImage(db *gorm.DB) *gorm.DB {
	return db.Select("users.*, "+
		"(SELECT files.url FROM files WHERE files.user_id = users.id AND files.file_type = ? AND files.profile_set_at IS NOT NULL AND files.deleted_at IS NULL ORDER BY files.profile_set_at DESC, files.id DESC LIMIT 1) AS profile_image",
		models.FileTypeProfile)
}

func countLikes(tx *gorm.DB, postID uint) (int64, error) {
	var n int64
	err := tx.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}

// incrementViews bumps the view counter in one statement and reports whether
// an active post matched.
func incrementViews(tx *gorm.DB, postID uint) (bool, error) {
	res := tx.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
