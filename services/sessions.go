package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/utils"
	"github.com/cppla/boardcore/validation"
)

const DefaultSessionTTL = 24 * time.Hour

// SessionService issues, resolves and revokes session tokens.
type SessionService struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewSessionService(db *gorm.DB, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{db: db, ttl: ttl, now: time.Now}
}

// Login checks the credential of an active account and mints a new session.
func (s *SessionService) Login(ctx context.Context, email, password string) (*models.Session, *models.User, error) {
	email = strings.TrimSpace(email)
	if err := validation.Required(email, password); err != nil {
		return nil, nil, invalid(err)
	}

	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, nil, notFoundAs(err, models.ErrLoginFailed)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, nil, models.ErrLoginFailed
	}

	now := s.now()
	session := models.Session{
		Token:     newToken(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := db.Create(&session).Error; err != nil {
		return nil, nil, models.Internal(err)
	}
	return &session, &user, nil
}

// Resolve maps a token to its active user. Unknown, expired and orphaned
// tokens all fail with the same ErrUnauthenticated.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, models.ErrUnauthenticated
	}
	var user models.User
	err := s.db.WithContext(ctx).
		Scopes(withProfileImage).
		Joins("JOIN sessions ON sessions.user_id = users.id").
		Where("sessions.token = ? AND sessions.expires_at > ?", token, s.now()).
		First(&user).Error
	if err != nil {
		return nil, notFoundAs(err, models.ErrUnauthenticated)
	}
	return &user, nil
}

// Logout deletes the session if it exists.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return models.Internal(err)
	}
	return nil
}

// PurgeExpired removes sessions past their expiry and returns how many went.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, models.Internal(res.Error)
	}
	return res.RowsAffected, nil
}

func deleteUserSessions(tx *gorm.DB, userID uint) error {
	if err := tx.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// newToken returns 244 random bits as 64 hex characters.
func newToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
