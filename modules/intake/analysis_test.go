package intake

import (
	"image"
	"image/color"
	"sync"
	"testing"

	"headshot-studio-server/modules/common/detector"
	"headshot-studio-server/modules/common/utils"
)

// stubDetector - 검출 결과를 고정해서 돌려주는 테스트용 구현
type stubDetector struct {
	mu        sync.Mutex
	faces     []detector.Face
	detectErr error
	readyErr  error
	calls     int
}

func (d *stubDetector) Ready() error { return d.readyErr }

func (d *stubDetector) DetectFaces(img image.Image) ([]detector.Face, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	return d.faces, d.detectErr
}

func (d *stubDetector) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// frontalFace - 코가 두 눈 중앙에 오는 정면 얼굴
func frontalFace(x, y, size int) detector.Face {
	return detector.Face{
		Box: image.Rect(x, y, x+size, y+size),
		Landmarks: detector.Landmarks{
			LeftEye:  image.Pt(x+size/4, y+size/3),
			RightEye: image.Pt(x+3*size/4, y+size/3),
			Nose:     image.Pt(x+size/2, y+2*size/3),
		},
	}
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	return img
}

func encodeTestImage(t *testing.T, img image.Image, mimeType string) []byte {
	t.Helper()
	data, err := utils.EncodeImage(img, mimeType)
	if err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return data
}

// testLimits - 테스트용으로 최소 해상도를 낮춘 임계값
func testLimits() Limits {
	l := DefaultLimits()
	l.MinDimension = 64
	l.PreviewMaxDim = 32
	return l
}

func newTestService(det detector.Detector, store ObjectStore, captioner CaptionFunc, limits Limits) *Service {
	return NewService(limits, det, store, nil, captioner)
}

func TestAnalyzeUndecodable(t *testing.T) {
	s := newTestService(&stubDetector{}, nil, nil, testLimits())

	out := s.analyze("broken.jpg", "image/jpeg", []byte("not an image"))
	if out.accepted {
		t.Fatalf("undecodable input was accepted")
	}
	if out.declineReason != ReasonUndecodable {
		t.Fatalf("got reason %q, want %q", out.declineReason, ReasonUndecodable)
	}
}

func TestAnalyzeTooSmallSkipsDetection(t *testing.T) {
	det := &stubDetector{faces: []detector.Face{frontalFace(0, 0, 20)}}
	s := newTestService(det, nil, nil, testLimits())

	data := encodeTestImage(t, testImage(32, 32), "image/png")
	out := s.analyze("tiny.png", "image/png", data)

	if out.accepted {
		t.Fatalf("undersized image was accepted")
	}
	if want := reasonTooSmall(64); out.declineReason != want {
		t.Fatalf("got reason %q, want %q", out.declineReason, want)
	}
	if det.callCount() != 0 {
		t.Fatalf("face detection ran on undersized image")
	}
	if out.width != 32 || out.height != 32 {
		t.Fatalf("dimensions not recorded: %dx%d", out.width, out.height)
	}
}

func TestJudgeFaces(t *testing.T) {
	s := newTestService(&stubDetector{}, nil, nil, testLimits())

	good := frontalFace(50, 50, 100)

	crooked := frontalFace(50, 50, 100)
	// 눈 간격 50px, 코가 중앙에서 15px 이탈 (0.3 > 0.2)
	crooked.Landmarks.Nose.X = crooked.Landmarks.LeftEye.X + 25 + 15

	collapsed := frontalFace(50, 50, 100)
	collapsed.Landmarks.RightEye = collapsed.Landmarks.LeftEye

	cases := []struct {
		name       string
		faces      []detector.Face
		imageWidth int
		want       string
	}{
		{"no faces", nil, 400, ReasonNoFace},
		{"multiple faces", []detector.Face{good, good}, 400, ReasonMultipleFaces},
		{"face too small", []detector.Face{frontalFace(0, 0, 30)}, 400, ReasonFaceTooSmall},
		{"nose off center", []detector.Face{crooked}, 400, ReasonNotFrontal},
		{"zero eye distance", []detector.Face{collapsed}, 400, ReasonNotFrontal},
		{"frontal face", []detector.Face{good}, 400, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.judgeFaces(tc.faces, tc.imageWidth); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAnalyzeAccepted(t *testing.T) {
	det := &stubDetector{faces: []detector.Face{frontalFace(50, 50, 100)}}
	s := newTestService(det, nil, nil, testLimits())

	data := encodeTestImage(t, testImage(200, 200), "image/png")
	out := s.analyze("good.png", "image/png", data)

	if !out.accepted {
		t.Fatalf("frontal face declined: %q", out.declineReason)
	}
	if out.declineReason != "" {
		t.Fatalf("accepted outcome carries decline reason %q", out.declineReason)
	}
	if out.processed == nil {
		t.Fatalf("no crop produced for accepted image")
	}

	cropped, err := utils.DecodeImage(out.processed)
	if err != nil {
		t.Fatalf("crop output not decodable: %v", err)
	}
	b := cropped.Bounds()
	if b.Dx() != b.Dy() {
		t.Fatalf("crop is not square: %dx%d", b.Dx(), b.Dy())
	}
}

func TestAnalyzeDeclinedKeepsDimensions(t *testing.T) {
	det := &stubDetector{} // no faces
	s := newTestService(det, nil, nil, testLimits())

	data := encodeTestImage(t, testImage(200, 150), "image/jpeg")
	out := s.analyze("empty.jpg", "image/jpeg", data)

	if out.accepted {
		t.Fatalf("faceless image was accepted")
	}
	if out.declineReason != ReasonNoFace {
		t.Fatalf("got reason %q, want %q", out.declineReason, ReasonNoFace)
	}
	if out.width != 200 || out.height != 150 {
		t.Fatalf("dimensions not recorded: %dx%d", out.width, out.height)
	}
	if out.processed != nil {
		t.Fatalf("declined image should not be cropped")
	}
}
