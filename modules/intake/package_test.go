package intake

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
)

type fakeStore struct {
	mu        sync.Mutex
	uploads   map[string][]byte
	uploadErr error
	signErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: make(map[string][]byte)}
}

func (f *fakeStore) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[path] = data
	return nil
}

func (f *fakeStore) CreateSignedURL(ctx context.Context, path string, expiresIn int) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return "https://signed.example/" + path, nil
}

func acceptedCandidate(name string, content []byte) *UploadCandidate {
	return &UploadCandidate{
		ID:       "id-" + name,
		FileName: name,
		MimeType: "image/jpeg",
		Original: content,
		Analyzed: true,
		Accepted: true,
	}
}

func declinedCandidate(name string, reason string) *UploadCandidate {
	return &UploadCandidate{
		ID:            "id-" + name,
		FileName:      name,
		MimeType:      "image/jpeg",
		Original:      []byte("declined-" + name),
		Analyzed:      true,
		DeclineReason: reason,
	}
}

func batchOfAccepted(n int) *Batch {
	b := newBatch(50)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("photo-%d.jpg", i)
		b.Append(acceptedCandidate(name, []byte("image-"+name)))
	}
	return b
}

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("archive not readable: %v", err)
	}
	entries := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open entry %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read entry %s: %v", f.Name, err)
		}
		entries[f.Name] = content
	}
	return entries
}

func TestUploadArchiveRoundTrip(t *testing.T) {
	store := newFakeStore()
	s := newTestService(&stubDetector{}, store, nil, testLimits())
	batch := batchOfAccepted(12)

	result, err := s.Upload(context.Background(), batch, UploadOptions{UserID: "user-1"})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if result.FileCount != 12 {
		t.Fatalf("file count %d, want 12", result.FileCount)
	}
	if result.Warning != "" {
		t.Fatalf("unexpected warning: %q", result.Warning)
	}
	if !strings.HasPrefix(result.ArchivePath, "user-1/") || !strings.HasSuffix(result.ArchivePath, ".zip") {
		t.Fatalf("unexpected archive path: %s", result.ArchivePath)
	}
	if result.SignedURL != "https://signed.example/"+result.ArchivePath {
		t.Fatalf("unexpected signed URL: %s", result.SignedURL)
	}

	entries := readArchive(t, store.uploads[result.ArchivePath])
	if len(entries) != 12 {
		t.Fatalf("archive has %d entries, want 12", len(entries))
	}
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("photo-%d.jpg", i)
		content, ok := entries[name]
		if !ok {
			t.Fatalf("archive missing entry %s", name)
		}
		if string(content) != "image-"+name {
			t.Fatalf("entry %s content mismatch", name)
		}
	}
}

func TestUploadPrefersProcessedContent(t *testing.T) {
	store := newFakeStore()
	s := newTestService(&stubDetector{}, store, nil, testLimits())

	batch := batchOfAccepted(10)
	cropped := acceptedCandidate("cropped.jpg", []byte("raw-bytes"))
	cropped.Processed = []byte("cropped-bytes")
	batch.Append(cropped)

	result, err := s.Upload(context.Background(), batch, UploadOptions{UserID: "user-1"})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	entries := readArchive(t, store.uploads[result.ArchivePath])
	if string(entries["cropped.jpg"]) != "cropped-bytes" {
		t.Fatalf("archive carries raw bytes instead of crop")
	}
}

func TestUploadNoUsableCandidates(t *testing.T) {
	store := newFakeStore()
	s := newTestService(&stubDetector{}, store, nil, testLimits())

	batch := newBatch(50)
	batch.Append(declinedCandidate("bad.jpg", ReasonNoFace))
	batch.Append(&UploadCandidate{ID: "pending", FileName: "pending.jpg", Original: []byte("x")})

	_, err := s.Upload(context.Background(), batch, UploadOptions{UserID: "user-1", AllowFewerThan: true})
	if !errors.Is(err, ErrNoUsableCandidates) {
		t.Fatalf("got %v, want ErrNoUsableCandidates", err)
	}
	if len(store.uploads) != 0 {
		t.Fatalf("storage touched despite hard block")
	}
}

func TestUploadFewerThanRecommendedBlocked(t *testing.T) {
	store := newFakeStore()
	s := newTestService(&stubDetector{}, store, nil, testLimits())
	batch := batchOfAccepted(3)

	_, err := s.Upload(context.Background(), batch, UploadOptions{UserID: "user-1"})

	var countErr *RecommendedCountError
	if !errors.As(err, &countErr) {
		t.Fatalf("got %v, want RecommendedCountError", err)
	}
	if countErr.Count != 3 || countErr.Recommended != 10 {
		t.Fatalf("unexpected counts: %+v", countErr)
	}
	if len(store.uploads) != 0 {
		t.Fatalf("storage touched despite block")
	}
}

func TestUploadFewerThanRecommendedOverride(t *testing.T) {
	store := newFakeStore()
	s := newTestService(&stubDetector{}, store, nil, testLimits())
	batch := batchOfAccepted(3)

	result, err := s.Upload(context.Background(), batch, UploadOptions{UserID: "user-1", AllowFewerThan: true})
	if err != nil {
		t.Fatalf("override upload failed: %v", err)
	}
	if result.FileCount != 3 {
		t.Fatalf("file count %d, want 3", result.FileCount)
	}
	if !strings.Contains(result.Warning, "3 valid image(s)") {
		t.Fatalf("warning missing count: %q", result.Warning)
	}
}

func TestUploadIncludeDeclined(t *testing.T) {
	store := newFakeStore()
	s := newTestService(&stubDetector{}, store, nil, testLimits())

	batch := batchOfAccepted(10)
	batch.Append(declinedCandidate("blurry.jpg", ReasonNoFace))

	result, err := s.Upload(context.Background(), batch, UploadOptions{UserID: "user-1", IncludeDeclined: true})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if result.FileCount != 11 {
		t.Fatalf("file count %d, want 11", result.FileCount)
	}

	entries := readArchive(t, store.uploads[result.ArchivePath])
	if _, ok := entries["blurry.jpg"]; !ok {
		t.Fatalf("declined file missing from archive")
	}
}

func TestUploadFailureLeavesBatchIntact(t *testing.T) {
	store := newFakeStore()
	store.uploadErr = errors.New("storage offline")
	s := newTestService(&stubDetector{}, store, nil, testLimits())
	batch := batchOfAccepted(10)

	_, err := s.Upload(context.Background(), batch, UploadOptions{UserID: "user-1"})

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("got %v, want UploadError", err)
	}
	if uploadErr.Stage != StageUpload {
		t.Fatalf("stage %q, want %q", uploadErr.Stage, StageUpload)
	}
	if batch.Len() != 10 {
		t.Fatalf("batch mutated on failure: len %d", batch.Len())
	}

	// 동일 호출 재시도가 그대로 성공해야 한다
	store.uploadErr = nil
	if _, err := s.Upload(context.Background(), batch, UploadOptions{UserID: "user-1"}); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestUploadSignFailure(t *testing.T) {
	store := newFakeStore()
	store.signErr = errors.New("sign endpoint down")
	s := newTestService(&stubDetector{}, store, nil, testLimits())
	batch := batchOfAccepted(10)

	_, err := s.Upload(context.Background(), batch, UploadOptions{UserID: "user-1"})

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("got %v, want UploadError", err)
	}
	if uploadErr.Stage != StageSign {
		t.Fatalf("stage %q, want %q", uploadErr.Stage, StageSign)
	}
}

func TestUploadCaptionSidecars(t *testing.T) {
	store := newFakeStore()
	captioner := func(ctx context.Context, imageData []byte) string {
		return "A photograph of ohwx."
	}
	s := newTestService(&stubDetector{}, store, captioner, testLimits())
	batch := batchOfAccepted(10)

	result, err := s.Upload(context.Background(), batch, UploadOptions{UserID: "user-1"})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if result.FileCount != 10 {
		t.Fatalf("file count %d, want 10", result.FileCount)
	}

	entries := readArchive(t, store.uploads[result.ArchivePath])
	if len(entries) != 20 {
		t.Fatalf("archive has %d entries, want 20 (images + captions)", len(entries))
	}
	caption, ok := entries["photo-0.txt"]
	if !ok {
		t.Fatalf("caption sidecar missing")
	}
	if string(caption) != "A photograph of ohwx." {
		t.Fatalf("caption content %q", caption)
	}
}
