// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/boardcore/config"
	"github.com/cppla/boardcore/models"
)

// NewDB opens a migrated sqlite database in a temp dir. A single connection
// serialises writers the way row locks would on a server database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "board.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), config.GormConfig(logger.Default.LogMode(logger.Silent)))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db, models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// PNG returns a tiny valid PNG image.
func PNG(t testing.TB) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// MemoryBlobs is an in-memory blob store that can be told to fail.
type MemoryBlobs struct {
	mu        sync.Mutex
	Blobs     map[string][]byte
	StoreErr  error
	DeleteErr error
	Deleted   []string
}

func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{Blobs: map[string][]byte{}}
}

func (m *MemoryBlobs) Store(_ context.Context, name string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StoreErr != nil {
		return "", m.StoreErr
	}
	url := "http://blobs.test/" + name
	m.Blobs[url] = append([]byte(nil), data...)
	return url, nil
}

func (m *MemoryBlobs) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if !strings.HasPrefix(url, "http://blobs.test/") {
		return nil
	}
	delete(m.Blobs, url)
	m.Deleted = append(m.Deleted, url)
	return nil
}

// Len reports how many blobs are stored.
func (m *MemoryBlobs) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Blobs)
}
