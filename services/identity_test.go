package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/boardcore/models"
)

func TestSignupAndFind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.signup(t, "a@x.com", "nickA")
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, testPassword, user.PasswordHash)
	assert.Nil(t, user.ProfileImage)

	byEmail, err := f.identity.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := f.identity.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "nickA", byID.Nickname)

	_, err = f.identity.FindByID(ctx, 999)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		in   SignupInput
		code string
	}{
		{"Missing Field", SignupInput{Email: "a@x.com", Password: testPassword}, "REQUIRED_FIELDS_MISSING"},
		{"Bad Email", SignupInput{Email: "ax.com", Password: testPassword, Nickname: "nick"}, "INVALID_EMAIL_FORMAT"},
		{"Weak Password", SignupInput{Email: "a@x.com", Password: "abcdefgh", Nickname: "nick"}, "WEAK_PASSWORD"},
		{"Short Password", SignupInput{Email: "a@x.com", Password: "a1!", Nickname: "nick"}, "INVALID_PASSWORD_LENGTH"},
		{"Nickname Too Long", SignupInput{Email: "a@x.com", Password: testPassword, Nickname: "abcdefghijk"}, "NICKNAME_TOO_LONG"},
		{"Nickname Punctuation", SignupInput{Email: "a@x.com", Password: testPassword, Nickname: "ni ck"}, "INVALID_NICKNAME_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.identity.Signup(context.Background(), tt.in)
			requireCode(t, err, models.KindValidation, tt.code)
		})
	}
}

func TestSignupDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "a@x.com", "nickA")

	_, err := f.identity.Signup(ctx, SignupInput{Email: "a@x.com", Password: testPassword, Nickname: "other"})
	assert.ErrorIs(t, err, models.ErrEmailTaken)

	_, err = f.identity.Signup(ctx, SignupInput{Email: "b@x.com", Password: testPassword, Nickname: "nickA"})
	assert.ErrorIs(t, err, models.ErrNicknameTaken)
}

func TestSignupConcurrentSameEmail(t *testing.T) {
	f := newFixture(t)
	const n = 8

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.identity.Signup(context.Background(), SignupInput{
				Email:    "race@x.com",
				Password: testPassword,
				Nickname: fmt.Sprintf("racer%d", i),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, models.ErrEmailTaken)
	}
	assert.Equal(t, 1, succeeded)

	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Where("email = ?", "race@x.com").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSignupDeletedIdentityReuse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.signup(t, "a@x.com", "nickA")
	require.NoError(t, f.identity.SoftDelete(ctx, user.ID, user.ID))

	_, err := f.identity.Signup(ctx, SignupInput{Email: "a@x.com", Password: testPassword, Nickname: "nickB"})
	assert.ErrorIs(t, err, models.ErrEmailTaken, "strict policy keeps deleted emails reserved")

	lenient := NewIdentityService(f.db, true)
	again, err := lenient.Signup(ctx, SignupInput{Email: "a@x.com", Password: testPassword, Nickname: "nickA"})
	require.NoError(t, err)
	assert.NotEqual(t, user.ID, again.ID)

	_, err = lenient.Signup(ctx, SignupInput{Email: "a@x.com", Password: testPassword, Nickname: "nickC"})
	assert.ErrorIs(t, err, models.ErrEmailTaken, "active accounts stay unique")
}

func TestSignupLinksProfileImage(t *testing.T) {
	f := newFixture(t)
	file := f.upload(t, nil, models.FileTypeProfile, "me.png")

	user, err := f.identity.Signup(context.Background(), SignupInput{
		Email: "a@x.com", Password: testPassword, Nickname: "nickA", ProfileImage: file.URL,
	})
	require.NoError(t, err)
	require.NotNil(t, user.ProfileImage)
	assert.Equal(t, file.URL, *user.ProfileImage)
}

func TestSignupRejectsUnknownProfileImage(t *testing.T) {
	f := newFixture(t)
	_, err := f.identity.Signup(context.Background(), SignupInput{
		Email: "a@x.com", Password: testPassword, Nickname: "nickA", ProfileImage: "http://nowhere/x.png",
	})
	assert.ErrorIs(t, err, models.ErrInvalidFileURL)

	_, err = f.identity.FindByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, models.ErrUserNotFound, "failed link rolls back the account")
}

func TestUpdateNickname(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a@x.com", "nickA")
	b := f.signup(t, "b@x.com", "nickB")

	updated, err := f.identity.UpdateNickname(ctx, a.ID, a.ID, "새이름")
	require.NoError(t, err)
	assert.Equal(t, "새이름", updated.Nickname)

	_, err = f.identity.UpdateNickname(ctx, a.ID, a.ID, "nickB")
	assert.ErrorIs(t, err, models.ErrNicknameTaken)

	_, err = f.identity.UpdateNickname(ctx, b.ID, a.ID, "hijack")
	assert.ErrorIs(t, err, models.ErrNotAccountOwner)

	_, err = f.identity.UpdateNickname(ctx, b.ID, 999, "ghost")
	assert.ErrorIs(t, err, models.ErrUserNotFound, "existence is checked before ownership")

	_, err = f.identity.UpdateNickname(ctx, a.ID, a.ID, "bad name")
	requireCode(t, err, models.KindValidation, "INVALID_NICKNAME_FORMAT")

	// keeping the current nickname is not a conflict with oneself
	_, err = f.identity.UpdateNickname(ctx, a.ID, a.ID, "새이름")
	assert.NoError(t, err)
}

func TestUpdateProfileImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a@x.com", "nickA")
	b := f.signup(t, "b@x.com", "nickB")
	first := f.upload(t, a, models.FileTypeProfile, "one.png")
	second := f.upload(t, a, models.FileTypeProfile, "two.png")
	foreign := f.upload(t, b, models.FileTypeProfile, "b.png")

	user, err := f.identity.UpdateProfileImage(ctx, a.ID, a.ID, first.URL)
	require.NoError(t, err)
	assert.Equal(t, first.URL, *user.ProfileImage)

	user, err = f.identity.UpdateProfileImage(ctx, a.ID, a.ID, second.URL)
	require.NoError(t, err)
	assert.Equal(t, second.URL, *user.ProfileImage)

	var old models.File
	require.NoError(t, f.db.Unscoped().First(&old, first.ID).Error)
	assert.True(t, old.DeletedAt.Valid, "previous profile image is soft-deleted")

	_, err = f.identity.UpdateProfileImage(ctx, a.ID, a.ID, foreign.URL)
	assert.ErrorIs(t, err, models.ErrInvalidFileURL)

	_, err = f.identity.UpdateProfileImage(ctx, b.ID, a.ID, second.URL)
	assert.ErrorIs(t, err, models.ErrNotAccountOwner)

	user, err = f.identity.UpdateProfileImage(ctx, a.ID, a.ID, "")
	require.NoError(t, err)
	assert.Nil(t, user.ProfileImage)
}

func TestChoosingProfileImageKeepsPendingUploads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a@x.com", "nickA")
	first := f.upload(t, a, models.FileTypeProfile, "one.png")
	second := f.upload(t, a, models.FileTypeProfile, "two.png")

	user, err := f.identity.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, user.ProfileImage, "an upload is not a profile image until chosen")

	_, err = f.identity.UpdateProfileImage(ctx, a.ID, a.ID, first.URL)
	require.NoError(t, err)

	var pending models.File
	require.NoError(t, f.db.First(&pending, second.ID).Error)
	assert.Nil(t, pending.ProfileSetAt)

	// choosing the current image again changes nothing
	user, err = f.identity.UpdateProfileImage(ctx, a.ID, a.ID, first.URL)
	require.NoError(t, err)
	assert.Equal(t, first.URL, *user.ProfileImage)

	// the chosen image cannot be moved onto a post
	_, err = f.posts.Create(ctx, a.ID, PostInput{Title: "t", Content: "c", FileURL: first.URL})
	assert.ErrorIs(t, err, models.ErrInvalidFileURL)
}

func TestUpdatePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a@x.com", "nickA")
	b := f.signup(t, "b@x.com", "nickB")

	assert.ErrorIs(t, f.identity.UpdatePassword(ctx, a.ID, a.ID, "Wrong123!", "Newpass1!"), models.ErrWrongPassword)
	assert.ErrorIs(t, f.identity.UpdatePassword(ctx, b.ID, a.ID, testPassword, "Newpass1!"), models.ErrNotAccountOwner)
	requireCode(t, f.identity.UpdatePassword(ctx, a.ID, a.ID, testPassword, "short"), models.KindValidation, "INVALID_PASSWORD_LENGTH")
	requireCode(t, f.identity.UpdatePassword(ctx, a.ID, a.ID, "", "Newpass1!"), models.KindValidation, "REQUIRED_FIELDS_MISSING")

	require.NoError(t, f.identity.UpdatePassword(ctx, a.ID, a.ID, testPassword, "Newpass1!"))

	_, _, err := f.sessions.Login(ctx, "a@x.com", testPassword)
	assert.ErrorIs(t, err, models.ErrLoginFailed)
	_, _, err = f.sessions.Login(ctx, "a@x.com", "Newpass1!")
	assert.NoError(t, err)
}

func TestSoftDeleteCascadesSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a@x.com", "nickA")
	b := f.signup(t, "b@x.com", "nickB")

	s1, _, err := f.sessions.Login(ctx, "a@x.com", testPassword)
	require.NoError(t, err)
	s2, _, err := f.sessions.Login(ctx, "a@x.com", testPassword)
	require.NoError(t, err)

	assert.ErrorIs(t, f.identity.SoftDelete(ctx, b.ID, a.ID), models.ErrNotAccountOwner)

	require.NoError(t, f.identity.SoftDelete(ctx, a.ID, a.ID))

	for _, token := range []string{s1.Token, s2.Token} {
		_, err := f.sessions.Resolve(ctx, token)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	}
	var remaining int64
	require.NoError(t, f.db.Model(&models.Session{}).Where("user_id = ?", a.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	_, _, err = f.sessions.Login(ctx, "a@x.com", testPassword)
	assert.ErrorIs(t, err, models.ErrLoginFailed, "deleted accounts cannot log in")

	assert.ErrorIs(t, f.identity.SoftDelete(ctx, a.ID, a.ID), models.ErrUserNotFound, "deletion is not repeatable")
}

func TestUpdateProfileIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a@x.com", "nickA")

	nickname, bogus := "renamed", "http://nowhere/x.png"
	_, err := f.identity.UpdateProfile(ctx, a.ID, a.ID, ProfileUpdate{Nickname: &nickname, ProfileImage: &bogus})
	assert.ErrorIs(t, err, models.ErrInvalidFileURL)

	user, err := f.identity.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "nickA", user.Nickname, "rename is rolled back with the failed link")

	_, err = f.identity.UpdateProfile(ctx, a.ID, a.ID, ProfileUpdate{})
	assert.ErrorIs(t, err, models.ErrRequiredFields)
}
