package intake

// Limits - 인테이크 파이프라인 전체의 임계값 모음.
// Every heuristic threshold lives here so tests can tighten or relax
// them without touching the analysis code.
type Limits struct {
	MaxFileSize      int64    // bytes, per file
	MaxBatchSize     int      // candidates kept per session
	MinDimension     int      // both width and height must reach this
	MinFaceRatio     float64  // face box width / image width floor
	MaxNoseDeviation float64  // nose offset / eye distance ceiling
	MinRecommended   int      // accepted-count advisory floor
	PreviewMaxDim    int      // longest side of the WebP thumbnail
	PreviewQuality   float32  // WebP lossy quality
	AllowedTypes     []string // acceptable MIME types
}

// DefaultLimits - 운영 기본값
func DefaultLimits() Limits {
	return Limits{
		MaxFileSize:      50 * 1024 * 1024,
		MaxBatchSize:     50,
		MinDimension:     1024,
		MinFaceRatio:     0.1,
		MaxNoseDeviation: 0.2,
		MinRecommended:   10,
		PreviewMaxDim:    512,
		PreviewQuality:   80,
		AllowedTypes:     []string{"image/jpeg", "image/jpg", "image/png"},
	}
}

func (l Limits) typeAllowed(mimeType string) bool {
	for _, t := range l.AllowedTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}
