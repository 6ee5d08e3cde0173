package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/testutil"
)

func TestUploadStoresBlobAndRow(t *testing.T) {
	f := newFixture(t)
	owner := f.signup(t, "a@x.com", "nickA")

	file := f.upload(t, owner, models.FileTypePost, "Photo.PNG")
	assert.True(t, strings.HasPrefix(file.URL, "http://blobs.test/"))
	assert.True(t, strings.HasSuffix(file.URL, ".png"))
	assert.Equal(t, "Photo.PNG", file.OriginalName)
	require.NotNil(t, file.UserID)
	assert.Equal(t, owner.ID, *file.UserID)
	assert.Equal(t, 1, f.blobs.Len())

	anon := f.upload(t, nil, models.FileTypeProfile, "me.jpg.png")
	assert.Nil(t, anon.UserID)
}

func TestUploadRejections(t *testing.T) {
	f := newFixture(t)
	png := testutil.PNG(t)
	small := NewFileService(f.db, f.blobs, int64(len(png)-1))

	tests := []struct {
		name string
		svc  *FileService
		in   UploadInput
		want *models.AppError
	}{
		{"Unknown Type", f.files, UploadInput{FileType: "avatar", Filename: "a.png", Data: png}, models.ErrInvalidFileType},
		{"Bad Extension", f.files, UploadInput{FileType: models.FileTypePost, Filename: "a.exe", Data: png}, models.ErrInvalidFileType},
		{"No Extension", f.files, UploadInput{FileType: models.FileTypePost, Filename: "a", Data: png}, models.ErrInvalidFileType},
		{"Empty", f.files, UploadInput{FileType: models.FileTypePost, Filename: "a.png"}, models.ErrRequiredFields},
		{"Too Large", small, UploadInput{FileType: models.FileTypePost, Filename: "a.png", Data: png}, models.ErrFileTooLarge},
		{"Not An Image", f.files, UploadInput{FileType: models.FileTypePost, Filename: "a.png", Data: []byte("#!/bin/sh\necho hi\n")}, models.ErrInvalidFileType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.Upload(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, f.blobs.Len(), "rejected uploads store nothing")
}

func TestUploadRemovesBlobWhenRowFails(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Migrator().DropTable(&models.File{}))

	_, err := f.files.Upload(context.Background(), UploadInput{
		FileType: models.FileTypePost, Filename: "a.png", Data: testutil.PNG(t),
	})
	assert.Equal(t, models.KindInternal, models.KindOf(err))
	assert.Zero(t, f.blobs.Len())
	assert.Len(t, f.blobs.Deleted, 1)
}

func TestUploadBlobFailure(t *testing.T) {
	f := newFixture(t)
	f.blobs.StoreErr = errors.New("disk full")

	_, err := f.files.Upload(context.Background(), UploadInput{
		FileType: models.FileTypePost, Filename: "a.png", Data: bytes.Clone(testutil.PNG(t)),
	})
	assert.Equal(t, models.KindInternal, models.KindOf(err))

	var n int64
	require.NoError(t, f.db.Model(&models.File{}).Count(&n).Error)
	assert.Zero(t, n)
}
