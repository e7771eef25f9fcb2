package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedDocument = errors.New("unsupported document type")
	ErrDocumentTooLarge    = errors.New("document too large")
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
}

// UploadedDocument is one résumé held in memory for the duration of a run.
type UploadedDocument struct {
	Filename string
	Data     []byte
}

// StorageService reads uploads into memory. Nothing is written to disk.
type StorageService interface {
	ReadFile(file *multipart.FileHeader) (UploadedDocument, error)
	ReadFiles(files []*multipart.FileHeader) ([]UploadedDocument, error)
}

type storageService struct {
	maxFileSize int64
}

func NewStorageService(maxFileSize int64) StorageService {
	return &storageService{
		maxFileSize: maxFileSize,
	}
}

// ValidateFilename rejects extensions the extractor cannot read.
func ValidateFilename(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: %q", ErrUnsupportedDocument, filename)
	}
	return nil
}

// ValidateDocument applies the upload rules to a document loaded some
// other way. maxFileSize <= 0 disables the size check.
func ValidateDocument(doc UploadedDocument, maxFileSize int64) error {
	if err := ValidateFilename(doc.Filename); err != nil {
		return err
	}
	return checkSize(doc.Filename, int64(len(doc.Data)), maxFileSize)
}

func checkSize(filename string, size, maxFileSize int64) error {
	if maxFileSize > 0 && size > maxFileSize {
		return fmt.Errorf("%w: %s exceeds %d bytes", ErrDocumentTooLarge, filename, maxFileSize)
	}
	return nil
}

// ReadFile implements StorageService.
func (s *storageService) ReadFile(file *multipart.FileHeader) (UploadedDocument, error) {
	if err := ValidateFilename(file.Filename); err != nil {
		return UploadedDocument{}, err
	}

	if err := checkSize(file.Filename, file.Size, s.maxFileSize); err != nil {
		return UploadedDocument{}, err
	}

	src, err := file.Open()
	if err != nil {
		return UploadedDocument{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return UploadedDocument{}, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return UploadedDocument{
		Filename: filepath.Base(file.Filename),
		Data:     data,
	}, nil
}

// ReadFiles implements StorageService. Upload order is preserved.
func (s *storageService) ReadFiles(files []*multipart.FileHeader) ([]UploadedDocument, error) {
	docs := make([]UploadedDocument, 0, len(files))
	for _, f := range files {
		doc, err := s.ReadFile(f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
