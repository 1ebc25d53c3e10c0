package intake

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"headshot-studio-server/modules/common/storage"
)

// 업로드 실패 단계 구분
const (
	StageArchive = "archive"
	StageUpload  = "upload"
	StageSign    = "sign"
)

// UploadError - 포장/업로드/서명 중 어느 단계에서 실패했는지 구분하는 에러.
// The batch is left untouched on any failure so the whole call can be
// retried as-is.
type UploadError struct {
	Stage string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed at %s stage: %v", e.Stage, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// ErrNoUsableCandidates - 업로드할 후보가 하나도 없음 (하드 블록)
var ErrNoUsableCandidates = errors.New("no usable images to upload")

// RecommendedCountError - 권장 수량 미달 (override 가능한 경고성 블록)
type RecommendedCountError struct {
	Count       int
	Recommended int
}

func (e *RecommendedCountError) Error() string {
	return fmt.Sprintf("You have uploaded %d valid image(s). If you upload fewer than %d images, you will not be eligible for refunds or redos.", e.Count, e.Recommended)
}

// UploadOptions - 최종 업로드 옵션
type UploadOptions struct {
	UserID          string
	IncludeDeclined bool
	AllowFewerThan  bool // 권장 수량 미달 경고를 무시하고 진행
}

// UploadResult - 업로드 성공 결과
type UploadResult struct {
	SignedURL   string `json:"signedUrl"`
	ArchivePath string `json:"archivePath"`
	FileCount   int    `json:"fileCount"`
	Warning     string `json:"warning,omitempty"`
}

// Upload - 배치를 ZIP으로 포장해 스토리지에 올리고 서명 URL 반환
func (s *Service) Upload(ctx context.Context, batch *Batch, opts UploadOptions) (*UploadResult, error) {
	selected, acceptedCount := batch.SelectForUpload(opts.IncludeDeclined)
	if len(selected) == 0 {
		return nil, ErrNoUsableCandidates
	}

	var warning string
	if acceptedCount < s.limits.MinRecommended {
		countErr := &RecommendedCountError{Count: acceptedCount, Recommended: s.limits.MinRecommended}
		if !opts.AllowFewerThan {
			return nil, countErr
		}
		warning = countErr.Error()
	}

	archive, err := s.buildArchive(ctx, selected)
	if err != nil {
		return nil, &UploadError{Stage: StageArchive, Err: err}
	}

	path := storage.BuildArchivePath(opts.UserID)
	log.Printf("📤 아카이브 업로드: %s (%d개 파일, %d bytes)", path, len(selected), len(archive))

	if err := s.store.Upload(ctx, path, archive, "application/zip"); err != nil {
		return nil, &UploadError{Stage: StageUpload, Err: err}
	}

	signedURL, err := s.store.CreateSignedURL(ctx, path, storage.SignedURLTTL)
	if err != nil {
		return nil, &UploadError{Stage: StageSign, Err: err}
	}

	log.Printf("✅ 아카이브 업로드 완료: %s", path)
	return &UploadResult{
		SignedURL:   signedURL,
		ArchivePath: path,
		FileCount:   len(selected),
		Warning:     warning,
	}, nil
}

// buildArchive - 후보들을 원본 파일명 그대로 ZIP에 담는다.
// Captions, when enabled, ride along as sidecar .txt entries sharing
// the image's base name.
func (s *Service) buildArchive(ctx context.Context, selected []*UploadCandidate) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, c := range selected {
		w, err := zw.Create(c.FileName)
		if err != nil {
			return nil, fmt.Errorf("failed to create zip entry %s: %w", c.FileName, err)
		}
		if _, err := w.Write(c.Content()); err != nil {
			return nil, fmt.Errorf("failed to write zip entry %s: %w", c.FileName, err)
		}

		if s.captioner == nil {
			continue
		}
		caption := s.captioner(ctx, c.Content())
		sidecar := strings.TrimSuffix(c.FileName, filepath.Ext(c.FileName)) + ".txt"
		cw, err := zw.Create(sidecar)
		if err != nil {
			return nil, fmt.Errorf("failed to create caption entry %s: %w", sidecar, err)
		}
		if _, err := cw.Write([]byte(caption)); err != nil {
			return nil, fmt.Errorf("failed to write caption entry %s: %w", sidecar, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}
