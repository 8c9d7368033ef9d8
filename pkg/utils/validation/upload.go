// pkg/utils/validation/upload.go
package validation

import (
	"errors"
	"mime/multipart"
)

var (
	ErrFileRequired  = errors.New("no file provided")
	ErrImageSize     = errors.New("image exceeds the 10MB limit")
	ErrImageType     = errors.New("invalid image type. Allowed types: JPEG, PNG, WEBP")
	ErrResumeSize    = errors.New("resume exceeds the 5MB limit")
	ErrResumeNotPDF  = errors.New("only PDF resumes are accepted")
)

const (
	MaxImageSize  = 10 * 1024 * 1024
	MaxResumeSize = 5 * 1024 * 1024
)

var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

func ValidateImage(file *multipart.FileHeader) error {
	if file == nil {
		return ErrFileRequired
	}
	if file.Size > MaxImageSize {
		return ErrImageSize
	}
	if !AllowedImageTypes[file.Header.Get("Content-Type")] {
		return ErrImageType
	}
	return nil
}

func ValidateResume(file *multipart.FileHeader) error {
	if file == nil {
		return ErrFileRequired
	}
	if file.Size > MaxResumeSize {
		return ErrResumeSize
	}
	if file.Header.Get("Content-Type") != "application/pdf" {
		return ErrResumeNotPDF
	}
	return nil
}
