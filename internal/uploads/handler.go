package uploads

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/util"
)

const (
	maxUploadBytes     = 5 << 20
	profilePhotoPrefix = "profilePhotos/"
)

var allowedContentTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}

// Handler stores profile photos under profilePhotos/{timestamp}_{filename}.
type Handler struct {
	Store object.ObjectStore
	now   func() time.Time
}

func NewHandler(store object.ObjectStore) *Handler {
	return &Handler{Store: store, now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads/profile-photo", h.upload)
	rg.POST("/uploads/profile-photo/presign", h.presign)
}

type uploadResponse struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"sizeBytes"`
}

// ProfilePhotoKey builds the storage key for an uploaded photo.
func ProfilePhotoKey(at time.Time, fileName string) (string, error) {
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d_%s", profilePhotoPrefix, at.UnixMilli(), sanitized), nil
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	key, err := ProfilePhotoKey(h.now(), fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	br := bufio.NewReader(file)
	head, _ := br.Peek(512)
	contentType := http.DetectContentType(head)
	if _, ok := allowedContentTypes[contentType]; !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file must be an image", gin.H{"contentType": contentType})
		return
	}

	size, err := h.Store.SaveWithKey(c.Request.Context(), key, contentType, br)
	if err != nil {
		telemetry.Error("uploads.save_failed", map[string]any{
			"key":        key,
			"user_id":    middleware.UserIDFromContext(c),
			"request_id": c.GetString("requestId"),
			"error":      err,
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store file", nil)
		return
	}

	url, err := h.Store.URL(c.Request.Context(), key)
	if err != nil {
		telemetry.Warn("uploads.url_failed", map[string]any{"key": key, "error": err})
	}
	respond.JSON(c, http.StatusCreated, uploadResponse{Key: key, URL: url, SizeBytes: size})
}

type presignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

type presignResponse struct {
	UploadURL        string `json:"uploadUrl"`
	Key              string `json:"key"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

// presign lets the browser PUT the photo straight to the bucket when the
// configured store supports it.
func (h *Handler) presign(c *gin.Context) {
	presigner, ok := h.Store.(object.Presigner)
	if !ok {
		respond.Error(c, http.StatusNotImplemented, "not_supported", "direct uploads are not available for this store", nil)
		return
	}

	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.ContentType = strings.TrimSpace(req.ContentType)
	if _, ok := allowedContentTypes[req.ContentType]; !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "contentType is not allowed", nil)
		return
	}
	if req.SizeBytes <= 0 || req.SizeBytes > maxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "sizeBytes exceeds limit", nil)
		return
	}
	key, err := ProfilePhotoKey(h.now(), strings.TrimSpace(req.FileName))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid fileName", nil)
		return
	}

	url, err := presigner.PresignPut(c.Request.Context(), key, req.ContentType)
	if err != nil {
		if errors.Is(err, object.ErrInvalidKey) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid fileName", nil)
			return
		}
		telemetry.Error("uploads.presign_failed", map[string]any{
			"key":         key,
			"contentType": req.ContentType,
			"sizeBytes":   req.SizeBytes,
			"request_id":  c.GetString("requestId"),
			"error":       err,
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate upload url", nil)
		return
	}

	respond.JSON(c, http.StatusOK, presignResponse{
		UploadURL:        url,
		Key:              key,
		ExpiresInSeconds: int64(object.URLTTL.Seconds()),
	})
}
