// Package upload stores uploaded medical files on local disk with extension
// and MIME whitelisting.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrInvalidFileType = errors.New("file type is not allowed")
)

// MaxFileSize is the maximum allowed upload size in bytes (10 MB).
const MaxFileSize = 10 * 1024 * 1024

// allowedExtensions lists accepted file extensions: standard images plus the
// DICOM and NIfTI medical imaging formats.
var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".dcm":  true,
	".nii":  true,
}

// allowedContentTypes lists accepted MIME types. DICOM and NIfTI files are
// often sent as octet-stream by browsers.
var allowedContentTypes = map[string]bool{
	"image/jpeg":               true,
	"image/png":                true,
	"application/dicom":        true,
	"application/octet-stream": true,
}

// Store saves and serves uploaded files.
type Store interface {
	// Save validates and persists the uploaded file, returning the stored
	// relative path. A non-empty previous path is deleted best-effort.
	Save(file *multipart.FileHeader, previous string) (string, error)
	// Path resolves a stored relative path to an absolute filesystem path.
	Path(stored string) string
	// Remove deletes a stored file. Missing files are not an error.
	Remove(stored string) error
}

// DiskStore is a Store backed by a local directory.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Validate checks size, extension and declared content type without saving.
func Validate(file *multipart.FileHeader) error {
	if file.Size > MaxFileSize {
		return ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return ErrInvalidFileType
	}
	contentType := file.Header.Get("Content-Type")
	if contentType != "" {
		// Strip parameters like "; charset=..."
		if i := strings.Index(contentType, ";"); i >= 0 {
			contentType = strings.TrimSpace(contentType[:i])
		}
		if !allowedContentTypes[contentType] {
			return ErrInvalidFileType
		}
	}
	return nil
}

func (s *DiskStore) Save(file *multipart.FileHeader, previous string) (string, error) {
	if err := Validate(file); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := uuid.NewString() + ext
	dstPath := filepath.Join(s.dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dstPath, err)
	}
	defer dst.Close()

	// Copy at most MaxFileSize+1 so a lying Content-Length cannot slip an
	// oversized file through.
	n, err := io.Copy(dst, io.LimitReader(src, MaxFileSize+1))
	if err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if n > MaxFileSize {
		os.Remove(dstPath)
		return "", ErrFileTooLarge
	}

	if previous != "" {
		_ = s.Remove(previous)
	}

	return name, nil
}

func (s *DiskStore) Path(stored string) string {
	// Reject traversal in stored names.
	return filepath.Join(s.dir, filepath.Base(stored))
}

func (s *DiskStore) Remove(stored string) error {
	err := os.Remove(s.Path(stored))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
