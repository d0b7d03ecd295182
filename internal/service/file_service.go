package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"science-chat/internal/domain"
	"science-chat/internal/repository"
)

// FileService guarda archivos subidos y extrae su texto cuando el tipo es conocido.
type FileService struct {
	logger     *zap.Logger
	files      repository.FileRepository
	uploadDir  string
	extractors map[string]TextExtractor
	now        func() time.Time
}

// UploadResult describe el resultado de una subida.
type UploadResult struct {
	StoredName string
	Extracted  bool
	Content    string
}

func NewFileService(logger *zap.Logger, files repository.FileRepository, uploadDir string, extractors map[string]TextExtractor) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if extractors == nil {
		extractors = DefaultExtractors()
	}
	return &FileService{
		logger:     logger,
		files:      files,
		uploadDir:  uploadDir,
		extractors: extractors,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Ingest escribe el archivo en disco y, si hay extractor para contentType,
// devuelve el texto. Solo el primer documento extraido de cada usuario se persiste.
func (s *FileService) Ingest(ctx context.Context, userID, filename, contentType string, src io.Reader) (UploadResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || src == nil {
		return UploadResult{}, ErrInvalidRequest
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return UploadResult{}, fmt.Errorf("%w: create upload dir: %w", ErrStorage, err)
	}
	storedName := strconv.FormatInt(s.now().UnixMilli(), 10) + strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.uploadDir, storedName)

	f, err := os.Create(path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: create file: %w", ErrStorage, err)
	}
	defer f.Close()

	size, err := io.Copy(f, src)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: write file: %w", ErrStorage, err)
	}

	result := UploadResult{StoredName: storedName}
	extractor, ok := s.extractors[mediaType(contentType)]
	if !ok {
		return result, nil
	}

	content, err := extractor.Extract(f, size)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %w", ErrFileExtraction, err)
	}
	result.Extracted = true
	result.Content = content

	if s.files != nil {
		created, err := s.files.CreateIfAbsent(ctx, domain.UploadedFile{
			ID:          uuid.NewString(),
			UserID:      userID,
			FileType:    storedName,
			FileContent: content,
			CreatedAt:   s.now(),
		})
		if err != nil {
			s.logger.Error("persist uploaded file failed", zap.Error(err), zap.String("user_id", userID))
		} else if created {
			s.logger.Info("uploaded file stored", zap.String("user_id", userID), zap.String("file", storedName))
		}
	}

	return result, nil
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}
