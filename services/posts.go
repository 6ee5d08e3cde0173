package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/utils"
	"github.com/cppla/boardcore/validation"
)

// PostService implements the post lifecycle.
type PostService struct {
	db *gorm.DB
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

// PostInput creates a post. FileURL optionally links a previous upload.
type PostInput struct {
	Title   string
	Content string
	FileURL string
}

// PostPatch updates a post; nil fields stay unchanged. An empty FileURL
// detaches the current file.
type PostPatch struct {
	Title   *string
	Content *string
	FileURL *string
}

// PostPage is one offset/limit window of the newest-first post list.
type PostPage struct {
	Items  []models.Post
	Total  int64
	Offset int
	Limit  int
}

func (s *PostService) Create(ctx context.Context, callerID uint, in PostInput) (*models.Post, error) {
	title := utils.SanitizeText(strings.TrimSpace(in.Title))
	content := utils.Sanitize(strings.TrimSpace(in.Content))
	if err := validation.Required(title, content); err != nil {
		return nil, invalid(err)
	}

	post := models.Post{UserID: callerID, Title: title, Content: content}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		if url := strings.TrimSpace(in.FileURL); url != "" {
			return attachPostFile(tx, post.ID, callerID, url)
		}
		return nil
	})
	if err != nil {
		return nil, models.Internal(err)
	}
	return s.find(s.db.WithContext(ctx), post.ID)
}

// Get returns a post and counts the fetch as one view.
func (s *PostService) Get(ctx context.Context, postID uint) (*models.Post, error) {
	db := s.db.WithContext(ctx)
	ok, err := incrementViews(db, postID)
	if err != nil {
		return nil, models.Internal(err)
	}
	if !ok {
		return nil, models.ErrPostNotFound
	}
	utils.PostViewsTotal.Inc()
	return s.find(db, postID)
}

// List returns active posts newest first together with the total count.
func (s *PostService) List(ctx context.Context, offset, limit int) (*PostPage, error) {
	offset, limit = normalizePage(offset, limit)
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, models.Internal(err)
	}

	posts := []models.Post{}
	err := db.Scopes(withPostDetails).
		Preload("User", withAuthor).
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.Internal(err)
	}
	return &PostPage{Items: posts, Total: total, Offset: offset, Limit: limit}, nil
}

// Update applies patch on behalf of the post author.
func (s *PostService) Update(ctx context.Context, callerID, postID uint, patch PostPatch) (*models.Post, error) {
	updates := map[string]interface{}{}
	if patch.Title != nil {
		title := utils.SanitizeText(strings.TrimSpace(*patch.Title))
		if err := validation.Required(title); err != nil {
			return nil, invalid(err)
		}
		updates["title"] = title
	}
	if patch.Content != nil {
		content := utils.Sanitize(strings.TrimSpace(*patch.Content))
		if err := validation.Required(content); err != nil {
			return nil, invalid(err)
		}
		updates["content"] = content
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedPost(tx, postID, callerID); err != nil {
			return err
		}
		if len(updates) > 0 {
			res := tx.Model(&models.Post{}).Where("id = ? AND user_id = ?", postID, callerID).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return models.ErrPostNotFound
			}
		}
		if patch.FileURL != nil {
			return attachPostFile(tx, postID, callerID, strings.TrimSpace(*patch.FileURL))
		}
		return nil
	})
	if err != nil {
		return nil, models.Internal(err)
	}
	return s.find(s.db.WithContext(ctx), postID)
}

// Delete soft-deletes a post on behalf of its author. Its comments become
// unreachable through the post.
func (s *PostService) Delete(ctx context.Context, callerID, postID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedPost(tx, postID, callerID); err != nil {
			return err
		}
		res := tx.Where("user_id = ?", callerID).Delete(&models.Post{}, postID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrPostNotFound
		}
		return nil
	})
	return models.Internal(err)
}

func (s *PostService) find(db *gorm.DB, postID uint) (*models.Post, error) {
	var post models.Post
	err := db.Scopes(withPostDetails).
		Preload("User", withAuthor).
		Where("posts.id = ?", postID).
		First(&post).Error
	if err != nil {
		return nil, notFoundAs(err, models.ErrPostNotFound)
	}
	return &post, nil
}

// Peek returns a post without counting a view.
func (s *PostService) Peek(ctx context.Context, postID uint) (*models.Post, error) {
	return s.find(s.db.WithContext(ctx), postID)
}
