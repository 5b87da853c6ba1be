package controllers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fehmi19/cheebo/middleware"
	"github.com/fehmi19/cheebo/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// UploadController stores images on local disk and serves them back under
// /uploads/.
type UploadController struct {
	dir      string
	maxBytes int64
}

func NewUploadController(dir string, maxBytes int64) *UploadController {
	return &UploadController{dir: dir, maxBytes: maxBytes}
}

type uploadResponse struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// UploadImage accepts a single multipart "image" file. The type is sniffed
// from the content, never taken from the client's filename or header.
func (uc *UploadController) UploadImage(w http.ResponseWriter, r *http.Request) {
	// leave room for the multipart framing around the file
	r.Body = http.MaxBytesReader(w, r.Body, uc.maxBytes+(1<<16))
	if err := r.ParseMultipartForm(uc.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(w, r, utils.Validation("File too large"))
			return
		}
		fail(w, r, utils.Validation("No file uploaded"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		fail(w, r, utils.Validation("No file uploaded"))
		return
	}
	defer file.Close()

	if header.Size > uc.maxBytes {
		fail(w, r, utils.Validation("File too large"))
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, uc.maxBytes+1))
	if err != nil {
		fail(w, r, err)
		return
	}
	if int64(len(data)) > uc.maxBytes {
		fail(w, r, utils.Validation("File too large"))
		return
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		fail(w, r, utils.Validation("Only image files are allowed!"))
		return
	}

	if err := os.MkdirAll(uc.dir, 0o755); err != nil {
		fail(w, r, err)
		return
	}
	name := "image-" + uuid.NewString() + mtype.Extension()
	if err := os.WriteFile(filepath.Join(uc.dir, name), data, 0o644); err != nil {
		fail(w, r, err)
		return
	}

	middleware.Logger(r).Info().Str("file", name).Str("mime", mtype.String()).Int("bytes", len(data)).Msg("image uploaded")
	utils.WriteData(w, http.StatusCreated, uploadResponse{Filename: name, Path: "/uploads/" + name}, "File uploaded successfully")
}

// Files serves previously uploaded files. Directory listings are refused.
func (uc *UploadController) Files() http.Handler {
	fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uc.dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}
