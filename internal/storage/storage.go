package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

const MaxFileSize = 5 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// SaveProjectImage stores an uploaded image under
// <uploadDir>/<projectID>/ and returns its URL path.
func SaveProjectImage(uploadDir, projectID string, fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > MaxFileSize {
		return "", fmt.Errorf("image exceeds the maximum size of 5MB")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported image format, only JPG and PNG are allowed")
	}

	dir := filepath.Join(uploadDir, projectID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	path := filepath.Join(dir, "image"+ext)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}

	return "/" + filepath.ToSlash(path), nil
}
