package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/boardcore/config"
	"github.com/cppla/boardcore/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}),
		config.GormConfig(logger.Default.LogMode(logger.Silent)))
	require.NoError(t, err)
	return db, mock
}

func TestCreatePostRollsBackOnInsertFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `posts`")).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := NewPostService(db).Create(context.Background(), 1, PostInput{Title: "t", Content: "c"})
	assert.Equal(t, models.KindInternal, models.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteAccountRollsBackWhenSessionsFail(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE `users`.`id` = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "nickname"}).AddRow(7, "a@x.com", "nickA"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `users` SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `sessions`")).WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	err := NewIdentityService(db, false).SoftDelete(context.Background(), 7, 7)
	assert.Equal(t, models.KindInternal, models.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// duplicateEntry is what MySQL reports when a unique index rejects a write.
var duplicateEntry = &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"}

func countRows(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func TestSignupLosingInsertRaceReportsEmail(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `users` WHERE email = ?")).WillReturnRows(countRows(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `users` WHERE nickname = ?")).WillReturnRows(countRows(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users`")).WillReturnError(duplicateEntry)
	mock.ExpectRollback()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `users` WHERE email = ?")).WillReturnRows(countRows(1))

	_, err := NewIdentityService(db, false).Signup(context.Background(), SignupInput{Email: "a@x.com", Password: testPassword, Nickname: "nickA"})
	assert.ErrorIs(t, err, models.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupLosingInsertRaceReportsNickname(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `users` WHERE email = ?")).WillReturnRows(countRows(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `users` WHERE nickname = ?")).WillReturnRows(countRows(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users`")).WillReturnError(duplicateEntry)
	mock.ExpectRollback()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `users` WHERE email = ?")).WillReturnRows(countRows(0))

	_, err := NewIdentityService(db, false).Signup(context.Background(), SignupInput{Email: "a@x.com", Password: testPassword, Nickname: "nickA"})
	assert.ErrorIs(t, err, models.ErrNicknameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenameLosingUpdateRaceReportsNickname(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE `users`.`id` = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "nickname"}).AddRow(7, "a@x.com", "nickA"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `users` WHERE nickname = ?")).WillReturnRows(countRows(0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `users` SET `nickname`=?")).WillReturnError(duplicateEntry)
	mock.ExpectRollback()

	_, err := NewIdentityService(db, false).UpdateNickname(context.Background(), 7, 7, "nickB")
	assert.ErrorIs(t, err, models.ErrNicknameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeLosingInsertRaceReportsAlreadyLiked(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `posts` WHERE id = ?")).WillReturnRows(countRows(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `post_likes` WHERE post_id = ? AND user_id = ?")).WillReturnRows(countRows(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `post_likes`")).WillReturnError(duplicateEntry)
	mock.ExpectRollback()

	_, err := NewLikeService(db).Like(context.Background(), 3, 1)
	assert.ErrorIs(t, err, models.ErrAlreadyLiked)
	assert.NoError(t, mock.ExpectationsWereMet())
}
