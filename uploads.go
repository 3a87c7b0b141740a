package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/models"
	"github.com/mmdatafocus/factory_backend/utils"
	"github.com/sirupsen/logrus"
)

const maxUploadSizeBytes int64 = 5 * 1024 * 1024

var errFileTooLarge = errors.New("file size exceeds 5MB limit")

// documentUploadHandler stores purchase paperwork in GCS and attaches it to the record.
// Images also get a 200px wide JPEG thumbnail.
func documentUploadHandler(referenceType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()
		requestID := requestIDFromHeaders(c)

		referenceId, err := strconv.Atoi(c.Param("id"))
		if err != nil || referenceId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		businessId, _ := utils.GetBusinessIdFromContext(ctx)

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if fileHeader.Size > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFileTooLarge.Error()})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file"})
			return
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadSizeBytes+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file"})
			return
		}
		if int64(len(data)) > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFileTooLarge.Error()})
			return
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		mimeType := utils.DetectDocumentMimeType(ext, data)
		if !utils.AllowedDocumentMimeTypes[mimeType] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type"})
			return
		}
		if ext == "" {
			ext = extensionFromMimeType(mimeType)
		}

		objectKey := path.Join(businessId, sanitizeSegment(referenceType), strconv.Itoa(referenceId), uuid.New().String()+ext)
		if err := utils.UploadBytesToGCS(ctx, objectKey, data, mimeType); err != nil {
			logUploadError(logger, err, "gcs", requestID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}

		input := models.NewDocument{
			DocumentUrl:   utils.BuildObjectAccessURL(objectKey),
			ObjectKey:     objectKey,
			MimeType:      mimeType,
			ReferenceType: referenceType,
			ReferenceID:   referenceId,
		}
		if strings.HasPrefix(mimeType, "image/") {
			thumbKey, err := createThumbnail(ctx, objectKey, data)
			if err != nil {
				// the document itself is usable without a thumbnail
				logUploadError(logger, err, "thumbnail", requestID)
			} else {
				input.ThumbnailUrl = utils.BuildObjectAccessURL(thumbKey)
			}
		}

		doc, err := models.CreateDocument(ctx, &input)
		if err != nil {
			_ = utils.DeleteObjectFromGCS(context.Background(), objectKey)
			respondError(c, "documentUploadHandler", input, err)
			return
		}
		c.JSON(http.StatusCreated, doc)
	}
}

func createThumbnail(ctx context.Context, objectKey string, data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
		return "", err
	}

	thumbnailKey := thumbnailObjectKey(objectKey)
	if err := utils.UploadBytesToGCS(ctx, thumbnailKey, buf.Bytes(), "image/jpeg"); err != nil {
		return "", err
	}
	return thumbnailKey, nil
}

func thumbnailObjectKey(objectKey string) string {
	dir := path.Dir(objectKey)
	filename := strings.TrimSuffix(path.Base(objectKey), path.Ext(objectKey)) + ".jpg"
	return path.Join(dir, "thumbnails", filename)
}

func sanitizeSegment(input string) string {
	var out strings.Builder
	for _, r := range strings.ToLower(input) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			out.WriteRune(r)
		}
	}
	return out.String()
}

func extensionFromMimeType(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "application/pdf":
		return ".pdf"
	case "application/msword":
		return ".doc"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	case "application/vnd.ms-excel":
		return ".xls"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return ".xlsx"
	default:
		return ""
	}
}

func logUploadError(logger *logrus.Logger, err error, provider string, requestID string) {
	logger.WithFields(logrus.Fields{
		"error":      err.Error(),
		"provider":   provider,
		"request_id": requestID,
	}).Error("[upload.error]")
}

func requestIDFromHeaders(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader("X-Correlation-Id")); id != "" {
		return id
	}
	if id := strings.TrimSpace(c.GetHeader("X-Request-Id")); id != "" {
		return id
	}
	return fmt.Sprintf("upload-%d", time.Now().UnixNano())
}
