// Package seed fills a database with demo accounts and content through the
// same services the API uses. Intended for development only.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"

	"github.com/cppla/boardcore/services"
)

// Password is shared by every seeded account.
const Password = "Seed1234!"

// Options controls how much data Run creates.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
}

// Result counts what Run created.
type Result struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
}

// Factory creates demo data.
type Factory struct {
	identity *services.IdentityService
	posts    *services.PostService
	comments *services.CommentService
	likes    *services.LikeService
	rnd      *rand.Rand
	faker    *gofakeit.Faker
}

// NewFactory binds a factory to db; equal seeds produce equal content.
func NewFactory(db *gorm.DB, seed int64) *Factory {
	return &Factory{
		identity: services.NewIdentityService(db, false),
		posts:    services.NewPostService(db),
		comments: services.NewCommentService(db),
		likes:    services.NewLikeService(db),
		rnd:      rand.New(rand.NewSource(seed)),
		faker:    gofakeit.New(seed),
	}
}

// Run creates opts.Users accounts, their posts and comments, and a random
// spread of likes.
func (f *Factory) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}
	var userIDs, postIDs []uint

	for i := 0; i < opts.Users; i++ {
		user, err := f.identity.Signup(ctx, services.SignupInput{
			Email:    fmt.Sprintf("seed%d@%s", i, f.faker.DomainName()),
			Password: Password,
			Nickname: f.nickname(i),
		})
		if err != nil {
			return res, fmt.Errorf("seed user %d: %w", i, err)
		}
		userIDs = append(userIDs, user.ID)
		res.Users++
	}

	for _, uid := range userIDs {
		for j := 0; j < opts.PostsPerUser; j++ {
			post, err := f.posts.Create(ctx, uid, services.PostInput{
				Title:   f.faker.Sentence(5),
				Content: f.faker.Paragraph(1, 3, 8, "\n"),
			})
			if err != nil {
				return res, fmt.Errorf("seed post: %w", err)
			}
			postIDs = append(postIDs, post.ID)
			res.Posts++
		}
	}

	for _, pid := range postIDs {
		for k := 0; k < opts.CommentsPerPost; k++ {
			author := userIDs[f.rnd.Intn(len(userIDs))]
			if _, err := f.comments.Create(ctx, author, pid, f.faker.Sentence(8)); err != nil {
				return res, fmt.Errorf("seed comment: %w", err)
			}
			res.Comments++
		}
		for _, uid := range userIDs {
			if f.rnd.Intn(2) == 0 {
				continue
			}
			if _, err := f.likes.Like(ctx, uid, pid); err != nil {
				return res, fmt.Errorf("seed like: %w", err)
			}
			res.Likes++
		}
	}
	return res, nil
}

// nickname builds a unique nickname of letters and digits within ten runes.
func (f *Factory) nickname(i int) string {
	suffix := fmt.Sprint(i)
	base := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, f.faker.FirstName())
	if base == "" {
		base = "user"
	}
	runes := []rune(base)
	if keep := 10 - len(suffix); len(runes) > keep {
		runes = runes[:keep]
	}
	return string(runes) + suffix
}
