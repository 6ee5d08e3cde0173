package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/boardcore/middleware"
	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/services"
	"github.com/cppla/boardcore/utils"
)

// uploadFormOverhead covers multipart boundaries, headers and the type field.
const uploadFormOverhead = 64 << 10

// FileController accepts image uploads.
type FileController struct {
	files *services.FileService
}

func NewFileController(files *services.FileService) *FileController {
	return &FileController{files: files}
}

// Upload stores a multipart "file" of the given "type". Anonymous uploads are
// allowed so a profile image can be sent before signup.
func (f *FileController) Upload(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, f.files.MaxBytes()+uploadFormOverhead)
	file, header, err := ctx.Request.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		utils.Fail(ctx, models.ErrFileTooLarge)
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, models.ErrRequiredFields.Code, "no file uploaded")
		return
	}
	defer file.Close()

	// one byte past the limit is enough for the service to reject it
	data, err := io.ReadAll(io.LimitReader(file, f.files.MaxBytes()+1))
	if errors.As(err, &tooLarge) {
		utils.Fail(ctx, models.ErrFileTooLarge)
		return
	}
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	in := services.UploadInput{
		FileType: ctx.PostForm("type"),
		Filename: header.Filename,
		Data:     data,
	}
	if id := middleware.CurrentUserID(ctx); id != 0 {
		in.OwnerID = &id
	}

	record, err := f.files.Upload(ctx.Request.Context(), in)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Created(ctx, "UPLOAD_SUCCESS", "file uploaded", presentFile(record))
}
