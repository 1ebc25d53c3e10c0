package intake

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"headshot-studio-server/modules/common/detector"
)

func TestProcessFilesValidation(t *testing.T) {
	det := &stubDetector{faces: []detector.Face{frontalFace(20, 20, 60)}}
	limits := testLimits()
	limits.MaxFileSize = 1024 * 1024
	s := newTestService(det, nil, nil, limits)
	batch := newBatch(limits.MaxBatchSize)

	valid := encodeTestImage(t, testImage(100, 100), "image/png")
	files := []IncomingFile{
		{Name: "huge.jpg", MimeType: "image/jpeg", Data: bytes.Repeat([]byte{0xff}, 1024*1024+1)},
		{Name: "notes.txt", MimeType: "text/plain", Data: []byte("hello")},
		{Name: "good.png", MimeType: "image/png", Data: valid},
	}

	rejections, err := s.ProcessFiles(context.Background(), "session-a", batch, files)
	if err != nil {
		t.Fatalf("ProcessFiles failed: %v", err)
	}

	if len(rejections) != 2 {
		t.Fatalf("got %d rejections, want 2", len(rejections))
	}
	if !strings.Contains(rejections[0].Reason, "too large") {
		t.Fatalf("oversize rejection reason: %q", rejections[0].Reason)
	}
	if !strings.Contains(rejections[1].Reason, "not an allowed type") {
		t.Fatalf("type rejection reason: %q", rejections[1].Reason)
	}

	if batch.Len() != 1 {
		t.Fatalf("batch length %d, want 1", batch.Len())
	}
	c := batch.Snapshot()[0]
	if !c.Analyzed || !c.Accepted {
		t.Fatalf("valid file not accepted: %+v", c)
	}
	if c.Width != 100 || c.Height != 100 {
		t.Fatalf("dimensions not recorded: %dx%d", c.Width, c.Height)
	}
}

func TestProcessFilesDetectorNotReady(t *testing.T) {
	det := &stubDetector{readyErr: errors.New("cascade file missing")}
	s := newTestService(det, nil, nil, testLimits())
	batch := newBatch(50)

	valid := encodeTestImage(t, testImage(100, 100), "image/png")
	_, err := s.ProcessFiles(context.Background(), "session-a", batch, []IncomingFile{
		{Name: "good.png", MimeType: "image/png", Data: valid},
	})

	if err == nil {
		t.Fatalf("expected error when detection models are unavailable")
	}
	if batch.Len() != 0 {
		t.Fatalf("candidates entered batch despite blocked stage")
	}
}

func TestProcessFilesBatchCap(t *testing.T) {
	det := &stubDetector{faces: []detector.Face{frontalFace(20, 20, 60)}}
	limits := testLimits()
	limits.MaxBatchSize = 2
	s := newTestService(det, nil, nil, limits)
	batch := newBatch(limits.MaxBatchSize)

	valid := encodeTestImage(t, testImage(100, 100), "image/png")
	files := []IncomingFile{
		{Name: "a.png", MimeType: "image/png", Data: valid},
		{Name: "b.png", MimeType: "image/png", Data: valid},
		{Name: "c.png", MimeType: "image/png", Data: valid},
	}

	rejections, err := s.ProcessFiles(context.Background(), "session-a", batch, files)
	if err != nil {
		t.Fatalf("ProcessFiles failed: %v", err)
	}

	// 한도 초과는 거부 목록이 아니라 조용한 절삭이다
	if len(rejections) != 0 {
		t.Fatalf("cap overflow produced rejections: %v", rejections)
	}
	if batch.Len() != 2 {
		t.Fatalf("batch length %d, want 2", batch.Len())
	}
	if det.callCount() != 2 {
		t.Fatalf("analysis ran %d times, want 2", det.callCount())
	}

	names := []string{batch.Snapshot()[0].FileName, batch.Snapshot()[1].FileName}
	if names[0] != "a.png" || names[1] != "b.png" {
		t.Fatalf("drop order not preserved: %v", names)
	}
}

func TestProcessFilesVerdictsAsData(t *testing.T) {
	// 검출 결과가 섞여 있어도 에러 없이 후보별 판정으로 귀결된다
	det := &stubDetector{} // no faces anywhere
	s := newTestService(det, nil, nil, testLimits())
	batch := newBatch(50)

	valid := encodeTestImage(t, testImage(100, 100), "image/png")
	small := encodeTestImage(t, testImage(32, 32), "image/png")

	_, err := s.ProcessFiles(context.Background(), "session-a", batch, []IncomingFile{
		{Name: "faceless.png", MimeType: "image/png", Data: valid},
		{Name: "tiny.png", MimeType: "image/png", Data: small},
		{Name: "broken.png", MimeType: "image/png", Data: []byte("garbage")},
	})
	if err != nil {
		t.Fatalf("ProcessFiles failed: %v", err)
	}

	if batch.Len() != 3 {
		t.Fatalf("batch length %d, want 3", batch.Len())
	}

	wantReasons := map[string]string{
		"faceless.png": ReasonNoFace,
		"tiny.png":     reasonTooSmall(64),
		"broken.png":   ReasonUndecodable,
	}
	for _, c := range batch.Snapshot() {
		if !c.Analyzed || c.Accepted {
			t.Fatalf("candidate %s should be analyzed and declined", c.FileName)
		}
		if c.DeclineReason != wantReasons[c.FileName] {
			t.Fatalf("%s: reason %q, want %q", c.FileName, c.DeclineReason, wantReasons[c.FileName])
		}
	}
}
