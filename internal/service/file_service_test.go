package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"science-chat/internal/domain"
)

type mockFileRepo struct {
	created []domain.UploadedFile
	byUser  map[string]bool
	err     error
}

func (m *mockFileRepo) CreateIfAbsent(_ context.Context, file domain.UploadedFile) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.byUser == nil {
		m.byUser = make(map[string]bool)
	}
	if m.byUser[file.UserID] {
		return false, nil
	}
	m.byUser[file.UserID] = true
	m.created = append(m.created, file)
	return true, nil
}

func newTestFileService(t *testing.T, repo *mockFileRepo) (*FileService, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	svc := NewFileService(zap.NewNop(), repo, dir, nil)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000).UTC() }
	return svc, dir
}

func TestFileServiceIngest_Docx(t *testing.T) {
	repo := &mockFileRepo{}
	svc, dir := newTestFileService(t, repo)
	data := buildDocx(t, sampleDocumentXML)

	res, err := svc.Ingest(context.Background(), "u1", "Notes.DOCX", MimeDocx, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Extracted || !strings.HasPrefix(res.Content, "Newton's laws") {
		t.Fatalf("expected extracted content, got %+v", res)
	}
	if res.StoredName != "1700000000000.docx" {
		t.Fatalf("unexpected stored name %q", res.StoredName)
	}
	if _, err := os.Stat(filepath.Join(dir, res.StoredName)); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
	if len(repo.created) != 1 || repo.created[0].UserID != "u1" || repo.created[0].FileType != res.StoredName {
		t.Fatalf("expected file persisted once, got %+v", repo.created)
	}
}

func TestFileServiceIngest_OnlyFirstDocumentPersisted(t *testing.T) {
	repo := &mockFileRepo{}
	svc, _ := newTestFileService(t, repo)
	data := buildDocx(t, sampleDocumentXML)

	for i := 0; i < 2; i++ {
		if _, err := svc.Ingest(context.Background(), "u1", "a.docx", MimeDocx, bytes.NewReader(data)); err != nil {
			t.Fatalf("upload %d: unexpected error: %v", i, err)
		}
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected a single stored document, got %d", len(repo.created))
	}
}

func TestFileServiceIngest_UnknownType(t *testing.T) {
	repo := &mockFileRepo{}
	svc, _ := newTestFileService(t, repo)

	res, err := svc.Ingest(context.Background(), "u1", "photo.png", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Extracted || res.Content != "" {
		t.Fatalf("expected no extraction, got %+v", res)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected nothing persisted")
	}
}

func TestFileServiceIngest_ExtractionError(t *testing.T) {
	svc, _ := newTestFileService(t, &mockFileRepo{})

	_, err := svc.Ingest(context.Background(), "u1", "broken.docx", MimeDocx, strings.NewReader("not a zip"))
	if !errors.Is(err, ErrFileExtraction) {
		t.Fatalf("expected ErrFileExtraction, got %v", err)
	}
}

func TestFileServiceIngest_PersistErrorIgnored(t *testing.T) {
	svc, _ := newTestFileService(t, &mockFileRepo{err: errors.New("db down")})
	page := "<p>hello</p>"

	res, err := svc.Ingest(context.Background(), "u1", "p.html", "text/html; charset=utf-8", strings.NewReader(page))
	if err != nil {
		t.Fatalf("expected upload to succeed, got %v", err)
	}
	if res.Content != "hello" {
		t.Fatalf("unexpected content %q", res.Content)
	}
}

func TestFileServiceIngest_InvalidInput(t *testing.T) {
	svc, _ := newTestFileService(t, &mockFileRepo{})
	if _, err := svc.Ingest(context.Background(), " ", "a.txt", "text/plain", strings.NewReader("x")); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
