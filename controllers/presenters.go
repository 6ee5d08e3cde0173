package controllers

import (
	"time"

	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/services"
)

type userView struct {
	UserID       uint    `json:"userId"`
	Email        string  `json:"email"`
	Nickname     string  `json:"nickname"`
	ProfileImage *string `json:"profileImage"`
}

func presentUser(u *models.User) userView {
	return userView{UserID: u.ID, Email: u.Email, Nickname: u.Nickname, ProfileImage: u.ProfileImage}
}

type postView struct {
	PostID             uint      `json:"postId"`
	Title              string    `json:"title"`
	Content            string    `json:"content"`
	FileURL            *string   `json:"fileUrl"`
	Writer             string    `json:"writer"`
	AuthorID           uint      `json:"authorId"`
	AuthorProfileImage *string   `json:"authorProfileImage"`
	ViewCount          int64     `json:"viewCount"`
	LikeCount          int64     `json:"likeCount"`
	CommentCount       int64     `json:"commentCount"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func presentPost(p *models.Post) postView {
	return postView{
		PostID:             p.ID,
		Title:              p.Title,
		Content:            p.Content,
		FileURL:            p.FileURL,
		Writer:             p.User.Nickname,
		AuthorID:           p.UserID,
		AuthorProfileImage: p.User.ProfileImage,
		ViewCount:          p.ViewCount,
		LikeCount:          p.LikeCount,
		CommentCount:       p.CommentCount,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

type postPageView struct {
	Posts      []postView `json:"posts"`
	TotalCount int64      `json:"totalCount"`
	Offset     int        `json:"offset"`
	Limit      int        `json:"limit"`
}

func presentPostPage(page *services.PostPage) postPageView {
	posts := make([]postView, 0, len(page.Items))
	for i := range page.Items {
		posts = append(posts, presentPost(&page.Items[i]))
	}
	return postPageView{Posts: posts, TotalCount: page.Total, Offset: page.Offset, Limit: page.Limit}
}

type commentView struct {
	CommentID uint      `json:"commentId"`
	PostID    uint      `json:"postId"`
	Content   string    `json:"content"`
	Writer    string    `json:"writer"`
	AuthorID  uint      `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func presentComment(c *models.Comment) commentView {
	return commentView{
		CommentID: c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		Writer:    c.User.Nickname,
		AuthorID:  c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type likeView struct {
	PostID         uint  `json:"postId"`
	TotalLikeCount int64 `json:"totalLikeCount"`
	IsLiked        bool  `json:"isLiked"`
}

func presentLike(r *services.LikeResult) likeView {
	return likeView{PostID: r.PostID, TotalLikeCount: r.TotalLikeCount, IsLiked: r.IsLiked}
}

type fileView struct {
	FileID    uint      `json:"fileId"`
	FileURL   string    `json:"fileUrl"`
	FileName  string    `json:"fileName"`
	FileSize  int64     `json:"fileSize"`
	FileType  string    `json:"fileType"`
	CreatedAt time.Time `json:"createdAt"`
}

func presentFile(f *models.File) fileView {
	return fileView{
		FileID:    f.ID,
		FileURL:   f.URL,
		FileName:  f.OriginalName,
		FileSize:  f.Size,
		FileType:  f.FileType,
		CreatedAt: f.CreatedAt,
	}
}
