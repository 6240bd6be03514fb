package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Upload folders and the default size limit. Clients enforce the same limits
// before uploading; the server check is authoritative.
const (
	defaultMaxUploadMB = 3

	imageFolder     = "question_images"
	audioFolder     = "question_audio"
	recordingFolder = "submission_recordings"
)

var maxUploadBytes = int64(defaultMaxUploadMB) << 20

// SetMaxUploadMB adjusts the upload size limit from configuration. Values of
// zero or below leave the limit unchanged.
func SetMaxUploadMB(mb int) {
	if mb > 0 {
		maxUploadBytes = int64(mb) << 20
	}
}

var (
	// ErrFileTooLarge indicates the payload exceeded the configured size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrBadFileType indicates the extension or sniffed MIME type is not permitted.
	ErrBadFileType = errors.New("file type not allowed")

	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	audioExtensions = map[string]bool{".mp3": true, ".wav": true}
)

// BlobStore abstracts the object store used for question media and recordings.
// Upload returns the stored object key; PresignedGet mints a time-limited
// retrieval URL for it.
type BlobStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	PresignedGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// mediaFile is an upload that passed validation and is ready for storage.
type mediaFile struct {
	payload     []byte
	extension   string
	contentType string
}

// readMediaFile buffers and validates an uploaded file against the size limit
// and the allowed extensions, sniffing the real MIME type rather than
// trusting the filename alone.
func readMediaFile(file *multipart.FileHeader, allowedExtensions map[string]bool, mimePrefixes []string) (mediaFile, error) {
	if file.Size > maxUploadBytes {
		return mediaFile{}, ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return mediaFile{}, ErrBadFileType
	}

	handle, err := file.Open()
	if err != nil {
		return mediaFile{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, maxUploadBytes+1)); err != nil {
		return mediaFile{}, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(buf.Len()) > maxUploadBytes {
		return mediaFile{}, ErrFileTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	matched := false
	for _, prefix := range mimePrefixes {
		if strings.HasPrefix(mime.String(), prefix) {
			matched = true
			break
		}
	}
	if !matched {
		return mediaFile{}, ErrBadFileType
	}

	return mediaFile{
		payload:     buf.Bytes(),
		extension:   ext,
		contentType: mime.String(),
	}, nil
}

func readImageFile(file *multipart.FileHeader) (mediaFile, error) {
	return readMediaFile(file, imageExtensions, []string{"image/jpeg", "image/png"})
}

func readAudioFile(file *multipart.FileHeader) (mediaFile, error) {
	return readMediaFile(file, audioExtensions, []string{"audio/"})
}

// mediaObjectKey builds folder/<unix>_<rand8>.<ext> keys for question media.
func mediaObjectKey(folder, extension string) string {
	return fmt.Sprintf("%s/%d_%s%s", folder, time.Now().Unix(), uuid.NewString()[:8], extension)
}

// recordingObjectKey builds the deterministic key for one speaking answer.
func recordingObjectKey(studentCode string, questionID uint, extension string) string {
	return fmt.Sprintf("%s/%s_%d%s", recordingFolder, studentCode, questionID, extension)
}
