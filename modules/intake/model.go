package intake

import "fmt"

// Decline reasons - user-visible, recorded as data on the candidate,
// never raised as errors.
const (
	ReasonNoFace        = "No face detected"
	ReasonMultipleFaces = "Multiple faces detected"
	ReasonFaceTooSmall  = "Face is too small"
	ReasonNotFrontal    = "Face is not sufficiently frontal"
	ReasonUndecodable   = "Image could not be decoded"
	ReasonDetection     = "Face detection failed"
)

func reasonTooSmall(minDim int) string {
	return fmt.Sprintf("Image is too small. Minimum size is %dx%d pixels.", minDim, minDim)
}

// UploadCandidate - 업로드된 파일 한 장의 전체 라이프사이클 상태.
// Original bytes are set at creation and never mutated afterwards; all
// other fields are written only through the owning batch's lock.
type UploadCandidate struct {
	ID       string
	FileName string
	MimeType string
	Size     int64

	Original  []byte
	Processed []byte // square crop, nil until crop succeeds
	Preview   []byte // WebP thumbnail, nil once the handle is revoked

	Width  int
	Height int

	Analyzed      bool
	Accepted      bool
	DeclineReason string // set if and only if analyzed and not accepted
}

// Content - 포장 시 사용할 최적 컨텐츠 (크롭 결과 우선, 없으면 원본)
func (c *UploadCandidate) Content() []byte {
	if c.Processed != nil {
		return c.Processed
	}
	return c.Original
}

// IncomingFile - 드롭/선택된 파일 한 개의 입력 표현
type IncomingFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// Rejection - 인테이크 단계에서 거부된 파일 (배치에 들어가지 못함)
type Rejection struct {
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}

// CandidateView - 렌더링용 read-only projection
type CandidateView struct {
	ID            string `json:"id"`
	FileName      string `json:"fileName"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	Analyzed      bool   `json:"analyzed"`
	Accepted      bool   `json:"accepted"`
	DeclineReason string `json:"declineReason,omitempty"`
	PreviewURL    string `json:"previewUrl,omitempty"`
}

// analysisOutcome - 분석 단계가 후보에 적용할 결과
type analysisOutcome struct {
	width         int
	height        int
	accepted      bool
	declineReason string
	processed     []byte
	preview       []byte
}
