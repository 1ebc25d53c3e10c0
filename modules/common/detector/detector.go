package detector

import (
	"fmt"
	"image"
	"log"
	"os"
	"sync"

	pigo "github.com/esimov/pigo/core"
)

// Detection tuning. MinFaceSize is deliberately permissive: the intake
// heuristics apply their own face-to-image ratio floor afterwards.
const (
	minFaceSize      = 60
	shiftFactor      = 0.1
	scaleFactor      = 1.1
	iouThreshold     = 0.2
	qualityThreshold = 5.0
	puplocPerturbs   = 63
)

// Landmarks - eye and nose positions in original image pixel coordinates
type Landmarks struct {
	LeftEye  image.Point
	RightEye image.Point
	Nose     image.Point
}

// Face - one detected face with its landmark set
type Face struct {
	Box       image.Rectangle
	Landmarks Landmarks
	Quality   float32
}

// Detector - what the analysis stage needs from the model collaborator
type Detector interface {
	Ready() error
	DetectFaces(img image.Image) ([]Face, error)
}

// Handle - lazily loaded cascade pair (face finder + puploc), shared
// read-only across all analyses once loaded.
type Handle struct {
	facePath   string
	puplocPath string

	once    sync.Once
	loadErr error

	classifier *pigo.Pigo
	puploc     *pigo.PuplocCascade
}

// NewHandle - Handle 생성 (로드는 Ready() 시점에)
func NewHandle(facePath, puplocPath string) *Handle {
	return &Handle{facePath: facePath, puplocPath: puplocPath}
}

// Ready - loads both cascades exactly once; every analysis must pass
// through here before detection can run.
func (h *Handle) Ready() error {
	h.once.Do(func() {
		log.Printf("🔍 Loading detection cascades: %s, %s", h.facePath, h.puplocPath)

		faceBytes, err := os.ReadFile(h.facePath)
		if err != nil {
			h.loadErr = fmt.Errorf("failed to read face cascade: %w", err)
			return
		}

		classifier, err := pigo.NewPigo().Unpack(faceBytes)
		if err != nil {
			h.loadErr = fmt.Errorf("failed to unpack face cascade: %w", err)
			return
		}

		plBytes, err := os.ReadFile(h.puplocPath)
		if err != nil {
			h.loadErr = fmt.Errorf("failed to read puploc cascade: %w", err)
			return
		}

		plc, err := pigo.NewPuplocCascade().UnpackCascade(plBytes)
		if err != nil {
			h.loadErr = fmt.Errorf("failed to unpack puploc cascade: %w", err)
			return
		}

		h.classifier = classifier
		h.puploc = plc
		log.Printf("✅ Detection cascades loaded")
	})
	return h.loadErr
}

// DetectFaces - 얼굴 + 랜드마크 검출 (원본 픽셀 좌표 기준)
func (h *Handle) DetectFaces(img image.Image) ([]Face, error) {
	if err := h.Ready(); err != nil {
		return nil, err
	}

	src := pigo.ImgToNRGBA(img)
	pixels := pigo.RgbToGrayscale(src)
	cols, rows := src.Bounds().Dx(), src.Bounds().Dy()

	imgParams := pigo.ImageParams{
		Pixels: pixels,
		Rows:   rows,
		Cols:   cols,
		Dim:    cols,
	}

	maxSize := rows
	if cols > maxSize {
		maxSize = cols
	}

	cParams := pigo.CascadeParams{
		MinSize:     minFaceSize,
		MaxSize:     maxSize,
		ShiftFactor: shiftFactor,
		ScaleFactor: scaleFactor,
		ImageParams: imgParams,
	}

	dets := h.classifier.RunCascade(cParams, 0.0)
	dets = h.classifier.ClusterDetections(dets, iouThreshold)

	faces := make([]Face, 0, len(dets))
	for _, det := range dets {
		if det.Q < qualityThreshold {
			continue
		}

		half := det.Scale / 2
		box := image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half)

		faces = append(faces, Face{
			Box:       box,
			Landmarks: h.locateLandmarks(det, imgParams),
			Quality:   det.Q,
		})
	}

	return faces, nil
}

// locateLandmarks - puploc 캐스케이드로 눈동자/코 위치 추정.
// Seed offsets follow the usual pigo puploc geometry relative to the
// face box; the nose seed sits on the vertical face axis below the eyes.
func (h *Handle) locateLandmarks(det pigo.Detection, imgParams pigo.ImageParams) Landmarks {
	scale := float32(det.Scale)

	seed := func(rowOff, colOff float32) *pigo.Puploc {
		pl := pigo.Puploc{
			Row:      det.Row + int(rowOff*scale),
			Col:      det.Col + int(colOff*scale),
			Scale:    scale * 0.25,
			Perturbs: puplocPerturbs,
		}
		return h.puploc.RunDetector(pl, imgParams, 0.0, false)
	}

	leftEye := seed(-0.075, -0.175)
	rightEye := seed(-0.075, 0.175)
	nose := seed(0.15, 0.0)

	return Landmarks{
		LeftEye:  image.Point{X: leftEye.Col, Y: leftEye.Row},
		RightEye: image.Point{X: rightEye.Col, Y: rightEye.Row},
		Nose:     image.Point{X: nose.Col, Y: nose.Row},
	}
}
