package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

func getS3Client() (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			os.Getenv("R2_ACCESS_KEY"),
			os.Getenv("R2_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %v", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", os.Getenv("R2_ACCOUNT_ID")))
		o.UsePathStyle = true
		o.Region = "auto"
	})

	return client, nil
}

func cdnBaseURL() string {
	if base := os.Getenv("CDN_BASE_URL"); base != "" {
		return strings.TrimRight(base, "/")
	}
	return "https://cdn.projexino.com"
}

// UploadBytes stores already-processed content (e.g. a re-encoded image)
// under the given folder and returns its public URL.
func UploadBytes(data *bytes.Buffer, folder, filename, contentType string) (string, error) {
	objectKey := buildObjectKey(folder, filename)

	client, err := getS3Client()
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(os.Getenv("R2_BUCKET_NAME")),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data.Bytes()),
		ContentType: aws.String(contentType),
	}

	if _, err := client.PutObject(context.TODO(), input); err != nil {
		return "", fmt.Errorf("could not upload file to R2: %v", err)
	}

	return fmt.Sprintf("%s/%s", cdnBaseURL(), objectKey), nil
}

// UploadFile streams a multipart upload (e.g. a PDF resume) as-is.
func UploadFile(file *multipart.FileHeader, folder string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("could not open file: %v", err)
	}
	defer src.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, src); err != nil {
		return "", fmt.Errorf("could not read file: %v", err)
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return UploadBytes(buf, folder, file.Filename, contentType)
}

// DeleteObject removes a previously uploaded object by its public URL.
func DeleteObject(fullURL string) error {
	objectKey := getObjectKeyFromURL(fullURL)
	if objectKey == "" {
		return fmt.Errorf("could not derive object key from URL: %s", fullURL)
	}

	client, err := getS3Client()
	if err != nil {
		return err
	}

	_, err = client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(os.Getenv("R2_BUCKET_NAME")),
		Key:    aws.String(objectKey),
	})
	return err
}

func buildObjectKey(folder, filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	uniqueID := fmt.Sprintf("%d-%s", time.Now().UnixNano(), uuid.New().String())
	safeName := slug.Make(base)
	if safeName == "" {
		safeName = "file"
	}
	return filepath.Join(slug.Make(folder), fmt.Sprintf("%s-%s%s", safeName, uniqueID, ext))
}

func getObjectKeyFromURL(fullURL string) string {
	base := cdnBaseURL() + "/"
	if !strings.HasPrefix(fullURL, base) {
		return ""
	}
	return strings.TrimPrefix(fullURL, base)
}
