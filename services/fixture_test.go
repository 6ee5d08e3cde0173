package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/testutil"
)

const testPassword = "Abc12345!"

type fixture struct {
	db       *gorm.DB
	blobs    *testutil.MemoryBlobs
	identity *IdentityService
	sessions *SessionService
	posts    *PostService
	comments *CommentService
	likes    *LikeService
	files    *FileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	blobs := testutil.NewMemoryBlobs()
	return &fixture{
		db:       db,
		blobs:    blobs,
		identity: NewIdentityService(db, false),
		sessions: NewSessionService(db, 0),
		posts:    NewPostService(db),
		comments: NewCommentService(db),
		likes:    NewLikeService(db),
		files:    NewFileService(db, blobs, 0),
	}
}

func (f *fixture) signup(t *testing.T, email, nickname string) *models.User {
	t.Helper()
	user, err := f.identity.Signup(context.Background(), SignupInput{Email: email, Password: testPassword, Nickname: nickname})
	require.NoError(t, err)
	return user
}

func (f *fixture) post(t *testing.T, owner *models.User, title string) *models.Post {
	t.Helper()
	post, err := f.posts.Create(context.Background(), owner.ID, PostInput{Title: title, Content: "body of " + title})
	require.NoError(t, err)
	return post
}

func (f *fixture) upload(t *testing.T, owner *models.User, fileType, name string) *models.File {
	t.Helper()
	in := UploadInput{FileType: fileType, Filename: name, Data: testutil.PNG(t)}
	if owner != nil {
		id := owner.ID
		in.OwnerID = &id
	}
	file, err := f.files.Upload(context.Background(), in)
	require.NoError(t, err)
	return file
}

// requireCode asserts that err is an AppError with the given code.
func requireCode(t *testing.T, err error, kind models.ErrorKind, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := models.AsAppError(err)
	require.True(t, ok, "expected *models.AppError, got %T: %v", err, err)
	require.Equal(t, kind, appErr.Kind, "kind for %v", err)
	require.Equal(t, code, appErr.Code)
}
