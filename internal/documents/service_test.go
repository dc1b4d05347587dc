package documents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lawexam-backend/internal/filestore"
	"lawexam-backend/internal/ocr"
)

type fakeExtractor struct {
	result ocr.Result
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) (ocr.Result, error) {
	f.calls++
	return f.result, f.err
}

func okResult(text string, pages int) ocr.Result {
	return ocr.Result{
		Text: text,
		Meta: ocr.Metadata{Engine: "tesseract", Language: "ch_tra", TotalPages: pages, Success: true},
	}
}

func newTestService(t *testing.T, ex Extractor) (*Service, *MemoryRepo, *filestore.Store) {
	t.Helper()
	store, err := filestore.New(t.TempDir(), 1<<20, []string{".pdf", ".png"})
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}
	repo := NewMemoryRepo()
	return NewService(repo, store, ex), repo, store
}

func TestUploadAndProcess(t *testing.T) {
	ex := &fakeExtractor{result: okResult("=== 第 1 頁 ===\n下列何者為契約成立要件？", 1)}
	svc, _, store := newTestService(t, ex)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "user-1", "exam.pdf", 12, strings.NewReader("%PDF-1.4 ..."), true)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.ProcessingStatus != StatusCompleted {
		t.Errorf("status = %s, want completed", doc.ProcessingStatus)
	}
	if doc.ExtractedText == nil || !strings.Contains(*doc.ExtractedText, "契約") {
		t.Error("extracted text not persisted")
	}
	if doc.PageCount == nil || *doc.PageCount != 1 {
		t.Errorf("page count = %v, want 1", doc.PageCount)
	}
	if ex.calls != 1 {
		t.Errorf("extractor calls = %d, want 1", ex.calls)
	}
	if _, ok := store.Path(doc.StoredFilename); !ok {
		t.Error("stored file missing after processing")
	}
}

func TestUploadDeferred(t *testing.T) {
	ex := &fakeExtractor{result: okResult("text", 1)}
	svc, _, _ := newTestService(t, ex)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "user-1", "exam.pdf", 4, strings.NewReader("data"), false)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.ProcessingStatus != StatusPending {
		t.Errorf("status = %s, want pending", doc.ProcessingStatus)
	}
	if ex.calls != 0 {
		t.Errorf("extractor called %d times before process requested", ex.calls)
	}

	doc, err = svc.Process(ctx, "user-1", doc.ID)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if doc.ProcessingStatus != StatusCompleted {
		t.Errorf("status = %s, want completed", doc.ProcessingStatus)
	}
}

func TestUploadRejectsType(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeExtractor{})
	_, err := svc.Upload(context.Background(), "user-1", "notes.docx", 4, strings.NewReader("data"), false)
	if !errors.Is(err, filestore.ErrTypeNotAllowed) {
		t.Errorf("err = %v, want ErrTypeNotAllowed", err)
	}
}

func TestUploadRejectsOversize(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeExtractor{})
	_, err := svc.Upload(context.Background(), "user-1", "exam.pdf", 2<<20, strings.NewReader("data"), false)
	if !errors.Is(err, filestore.ErrFileTooLarge) {
		t.Errorf("err = %v, want ErrFileTooLarge", err)
	}
}

func TestProcessExtractionError(t *testing.T) {
	ex := &fakeExtractor{err: errors.New("boom")}
	svc, repo, _ := newTestService(t, ex)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "user-1", "exam.pdf", 4, strings.NewReader("data"), false)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := svc.Process(ctx, "user-1", doc.ID); !errors.Is(err, ErrProcessing) {
		t.Errorf("err = %v, want ErrProcessing", err)
	}
	got, err := repo.GetByID(ctx, "user-1", doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ProcessingStatus != StatusFailed {
		t.Errorf("status = %s, want failed", got.ProcessingStatus)
	}
	if got.ErrorMessage == nil || *got.ErrorMessage != "boom" {
		t.Errorf("error message = %v, want boom", got.ErrorMessage)
	}
}

func TestProcessUnsuccessfulExtraction(t *testing.T) {
	ex := &fakeExtractor{result: ocr.Result{Meta: ocr.Metadata{Engine: "unavailable", Error: "no engine"}}}
	svc, _, _ := newTestService(t, ex)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "user-1", "scan.png", 4, strings.NewReader("data"), false)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	got, err := svc.Process(ctx, "user-1", doc.ID)
	if err != nil {
		t.Fatalf("process returned error for failed outcome: %v", err)
	}
	if got.ProcessingStatus != StatusFailed {
		t.Errorf("status = %s, want failed", got.ProcessingStatus)
	}
}

func TestProcessCompletedShortCircuits(t *testing.T) {
	ex := &fakeExtractor{result: okResult("text", 1)}
	svc, _, _ := newTestService(t, ex)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "user-1", "exam.pdf", 4, strings.NewReader("data"), true)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := svc.Process(ctx, "user-1", doc.ID); err != nil {
		t.Fatalf("reprocess: %v", err)
	}
	if ex.calls != 1 {
		t.Errorf("extractor calls = %d, want 1 (completed must not re-extract)", ex.calls)
	}
}

func TestProcessRetryAfterFailure(t *testing.T) {
	ex := &fakeExtractor{err: errors.New("transient")}
	svc, _, _ := newTestService(t, ex)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "user-1", "exam.pdf", 4, strings.NewReader("data"), false)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := svc.Process(ctx, "user-1", doc.ID); !errors.Is(err, ErrProcessing) {
		t.Fatalf("first process: %v", err)
	}

	ex.err = nil
	ex.result = okResult("recovered", 1)
	got, err := svc.Process(ctx, "user-1", doc.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got.ProcessingStatus != StatusCompleted {
		t.Errorf("status = %s, want completed after retry", got.ProcessingStatus)
	}
	if got.ErrorMessage != nil {
		t.Errorf("error message not cleared: %v", *got.ErrorMessage)
	}
}

func TestOwnershipScoping(t *testing.T) {
	ex := &fakeExtractor{result: okResult("text", 1)}
	svc, _, _ := newTestService(t, ex)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "user-1", "exam.pdf", 4, strings.NewReader("data"), false)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if _, err := svc.Get(ctx, "user-2", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-tenant get: err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, "user-2", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-tenant delete: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Process(ctx, "user-2", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-tenant process: err = %v, want ErrNotFound", err)
	}
}

func TestContentRequiresCompleted(t *testing.T) {
	ex := &fakeExtractor{result: okResult("全文內容", 2)}
	svc, _, _ := newTestService(t, ex)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "user-1", "exam.pdf", 4, strings.NewReader("data"), false)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := svc.Content(ctx, "user-1", doc.ID); !errors.Is(err, ErrNotReady) {
		t.Errorf("err = %v, want ErrNotReady", err)
	}

	if _, err := svc.Process(ctx, "user-1", doc.ID); err != nil {
		t.Fatalf("process: %v", err)
	}
	got, err := svc.Content(ctx, "user-1", doc.ID)
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	if got.ExtractedText == nil || *got.ExtractedText != "全文內容" {
		t.Error("content text mismatch")
	}
}

func TestDeleteRemovesFile(t *testing.T) {
	ex := &fakeExtractor{result: okResult("text", 1)}
	svc, _, store := newTestService(t, ex)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "user-1", "exam.pdf", 4, strings.NewReader("data"), false)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := svc.Delete(ctx, "user-1", doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.Path(doc.StoredFilename); ok {
		t.Error("stored file still present after delete")
	}
	if _, err := svc.Get(ctx, "user-1", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListFilters(t *testing.T) {
	ex := &fakeExtractor{result: okResult("text", 1)}
	svc, _, _ := newTestService(t, ex)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "user-1", "a.pdf", 4, strings.NewReader("data"), true); err != nil {
		t.Fatalf("upload a: %v", err)
	}
	if _, err := svc.Upload(ctx, "user-1", "b.pdf", 4, strings.NewReader("data"), false); err != nil {
		t.Fatalf("upload b: %v", err)
	}

	completed, err := svc.List(ctx, "user-1", 20, 0, StatusCompleted)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(completed) != 1 {
		t.Errorf("completed = %d, want 1", len(completed))
	}

	if _, err := svc.List(ctx, "user-1", 20, 0, "bogus"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bogus status: err = %v, want ErrInvalidInput", err)
	}
}

func TestStats(t *testing.T) {
	ex := &fakeExtractor{result: okResult("text", 1)}
	svc, _, _ := newTestService(t, ex)
	ctx := context.Background()

	for _, name := range []string{"a.pdf", "b.pdf"} {
		if _, err := svc.Upload(ctx, "user-1", name, 4, strings.NewReader("data"), false); err != nil {
			t.Fatalf("upload: %v", err)
		}
	}
	stats, err := svc.Stats(ctx, "user-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalDocuments != 2 {
		t.Errorf("total = %d, want 2", stats.TotalDocuments)
	}
	if stats.ByStatus[StatusPending] != 2 {
		t.Errorf("pending = %d, want 2", stats.ByStatus[StatusPending])
	}
}
