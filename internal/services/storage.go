package services

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
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
)

var certificateExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

type StoredFile struct {
	OriginalName string
	Name         string
	Path         string
	Ext          string
}

func (f StoredFile) IsPDF() bool {
	return f.Ext == ".pdf"
}

type StorageService interface {
	SaveUpload(file *multipart.FileHeader, prefix string) (*StoredFile, error)
	Save(originalName string, size int64, src io.Reader, prefix string) (*StoredFile, error)
	DeleteFile(path string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath  string
	maxFileSize int64
}

func NewStorageService(uploadPath string, maxFileSize int64) StorageService {
	return &storageService{
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

func (s *storageService) SaveUpload(file *multipart.FileHeader, prefix string) (*StoredFile, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return s.Save(file.Filename, file.Size, src, prefix)
}

// Save writes src under a generated name. Files over the size limit are
// rejected, and a partial file is removed when the copy fails.
func (s *storageService) Save(originalName string, size int64, src io.Reader, prefix string) (*StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !certificateExtensions[ext] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}
	if s.maxFileSize > 0 && size > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, size, s.maxFileSize)
	}

	if err := s.EnsureUploadDir(); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s_%s%s", prefix, uuid.New().String(), ext)
	path := filepath.Join(s.uploadPath, name)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}

	reader := src
	if s.maxFileSize > 0 {
		reader = io.LimitReader(src, s.maxFileSize+1)
	}
	written, err := io.Copy(dst, reader)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && s.maxFileSize > 0 && written > s.maxFileSize {
		err = fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, s.maxFileSize)
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrFileTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &StoredFile{OriginalName: filepath.Base(originalName), Name: name, Path: path, Ext: ext}, nil
}

func (s *storageService) DeleteFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
