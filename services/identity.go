package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/utils"
	"github.com/cppla/boardcore/validation"
)

// IdentityService owns user records.
type IdentityService struct {
	db *gorm.DB
	// allowReuse lets a new account take the email or nickname of a soft-deleted one.
	allowReuse bool
}

func NewIdentityService(db *gorm.DB, allowDeletedIdentityReuse bool) *IdentityService {
	return &IdentityService{db: db, allowReuse: allowDeletedIdentityReuse}
}

// SignupInput carries the fields of a new account. ProfileImage is the URL of a
// previously uploaded file and may be empty.
type SignupInput struct {
	Email        string
	Password     string
	Nickname     string
	ProfileImage string
}

// Signup creates an account. Uniqueness is pre-checked for a precise error and
// enforced by the live-account unique indexes.
func (s *IdentityService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Nickname = strings.TrimSpace(in.Nickname)
	if err := validation.Required(in.Email, in.Password, in.Nickname); err != nil {
		return nil, invalid(err)
	}
	if err := validation.Email(in.Email); err != nil {
		return nil, invalid(err)
	}
	if err := validation.Password(in.Password); err != nil {
		return nil, invalid(err)
	}
	if err := validation.Nickname(in.Nickname); err != nil {
		return nil, invalid(err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, models.Internal(err)
	}

	user := models.User{Email: in.Email, Nickname: in.Nickname, PasswordHash: hash}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureEmailFree(tx, in.Email); err != nil {
			return err
		}
		if err := s.ensureNicknameFree(tx, in.Nickname, 0); err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if in.ProfileImage != "" {
			return attachProfileImage(tx, user.ID, in.ProfileImage)
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent signup won between the pre-check and the insert.
		return nil, s.duplicateCause(ctx, in.Email)
	}
	if err != nil {
		return nil, models.Internal(err)
	}
	return s.FindByID(ctx, user.ID)
}

// FindByID returns an active user with its profile image.
func (s *IdentityService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Scopes(withProfileImage).First(&user, id).Error; err != nil {
		return nil, notFoundAs(err, models.ErrUserNotFound)
	}
	return &user, nil
}

// FindByEmail returns the active user registered with email.
func (s *IdentityService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Scopes(withProfileImage).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundAs(err, models.ErrUserNotFound)
	}
	return &user, nil
}

// ProfileUpdate changes the public profile; nil fields stay unchanged. An empty
// ProfileImage removes the current image.
type ProfileUpdate struct {
	Nickname     *string
	ProfileImage *string
}

// UpdateProfile applies update to userID on behalf of callerID in one transaction.
func (s *IdentityService) UpdateProfile(ctx context.Context, callerID, userID uint, update ProfileUpdate) (*models.User, error) {
	if update.Nickname == nil && update.ProfileImage == nil {
		return nil, models.ErrRequiredFields
	}
	var nickname string
	if update.Nickname != nil {
		nickname = strings.TrimSpace(*update.Nickname)
		if err := validation.Nickname(nickname); err != nil {
			return nil, invalid(err)
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := ownedAccount(tx, userID, callerID)
		if err != nil {
			return err
		}
		if update.Nickname != nil && user.Nickname != nickname {
			if err := s.ensureNicknameFree(tx, nickname, user.ID); err != nil {
				return err
			}
			res := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("nickname", nickname)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return models.ErrUserNotFound
			}
		}
		if update.ProfileImage == nil {
			return nil
		}
		url := strings.TrimSpace(*update.ProfileImage)
		if url == "" {
			return dropProfileImage(tx, user.ID, 0)
		}
		return attachProfileImage(tx, user.ID, url)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, models.ErrNicknameTaken
	}
	if err != nil {
		return nil, models.Internal(err)
	}
	return s.FindByID(ctx, userID)
}

// UpdateNickname renames userID on behalf of callerID.
func (s *IdentityService) UpdateNickname(ctx context.Context, callerID, userID uint, nickname string) (*models.User, error) {
	return s.UpdateProfile(ctx, callerID, userID, ProfileUpdate{Nickname: &nickname})
}

// UpdateProfileImage points the profile image at a previously uploaded file.
func (s *IdentityService) UpdateProfileImage(ctx context.Context, callerID, userID uint, url string) (*models.User, error) {
	return s.UpdateProfile(ctx, callerID, userID, ProfileUpdate{ProfileImage: &url})
}

// UpdatePassword replaces the credential after checking the current one.
func (s *IdentityService) UpdatePassword(ctx context.Context, callerID, userID uint, current, next string) error {
	if err := validation.Required(current, next); err != nil {
		return invalid(err)
	}
	if err := validation.Password(next); err != nil {
		return invalid(err)
	}
	db := s.db.WithContext(ctx)
	user, err := ownedAccount(db, userID, callerID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(user.PasswordHash, current) {
		return models.ErrWrongPassword
	}
	hash, err := utils.HashPassword(next)
	if err != nil {
		return models.Internal(err)
	}
	res := db.Model(&models.User{}).Where("id = ?", user.ID).Update("password_hash", hash)
	if res.Error != nil {
		return models.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// SoftDelete retires the account and removes all of its sessions in the same
// transaction, so no token outlives the account.
func (s *IdentityService) SoftDelete(ctx context.Context, callerID, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := ownedAccount(tx, userID, callerID)
		if err != nil {
			return err
		}
		res := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"deleted_at": time.Now(),
			"deleted_id": user.ID,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrUserNotFound
		}
		return deleteUserSessions(tx, user.ID)
	})
	return models.Internal(err)
}

func (s *IdentityService) ensureEmailFree(tx *gorm.DB, email string) error {
	taken, err := s.taken(tx, "email", email, 0)
	if err != nil {
		return err
	}
	if taken {
		return models.ErrEmailTaken
	}
	return nil
}

func (s *IdentityService) ensureNicknameFree(tx *gorm.DB, nickname string, selfID uint) error {
	taken, err := s.taken(tx, "nickname", nickname, selfID)
	if err != nil {
		return err
	}
	if taken {
		return models.ErrNicknameTaken
	}
	return nil
}

// taken reports whether another account holds value in column. Soft-deleted
// accounts count unless reuse is allowed.
func (s *IdentityService) taken(tx *gorm.DB, column, value string, selfID uint) (bool, error) {
	q := tx.Model(&models.User{}).Where(column+" = ?", value)
	if !s.allowReuse {
		q = q.Unscoped()
	}
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// duplicateCause tells which unique field a failed insert collided on.
func (s *IdentityService) duplicateCause(ctx context.Context, email string) error {
	taken, err := s.taken(s.db.WithContext(ctx), "email", email, 0)
	if err != nil {
		return models.Internal(err)
	}
	if taken {
		return models.ErrEmailTaken
	}
	return models.ErrNicknameTaken
}
