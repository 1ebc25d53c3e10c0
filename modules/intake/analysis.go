package intake

import (
	"log"

	"headshot-studio-server/modules/common/detector"
	"headshot-studio-server/modules/common/utils"
)

// analyze - 이미지 한 장의 전체 판정 파이프라인.
// Every input produces an outcome; heuristic failures become decline
// reasons on the candidate, never errors.
func (s *Service) analyze(name, mimeType string, data []byte) analysisOutcome {
	img, err := utils.DecodeImage(data)
	if err != nil {
		log.Printf("❌ 이미지 디코딩 실패 (%s): %v", name, err)
		return analysisOutcome{declineReason: ReasonUndecodable}
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := analysisOutcome{width: w, height: h}

	// 크기 미달이면 얼굴 검출 없이 즉시 거절
	if w < s.limits.MinDimension || h < s.limits.MinDimension {
		out.declineReason = reasonTooSmall(s.limits.MinDimension)
		out.preview = s.renderPreview(img, name)
		return out
	}

	faces, err := s.detector.DetectFaces(img)
	if err != nil {
		log.Printf("❌ 얼굴 검출 실패 (%s): %v", name, err)
		out.declineReason = ReasonDetection
		out.preview = s.renderPreview(img, name)
		return out
	}

	if reason := s.judgeFaces(faces, w); reason != "" {
		out.declineReason = reason
		out.preview = s.renderPreview(img, name)
		return out
	}

	out.accepted = true

	// 크롭 실패는 원본으로 조용히 폴백
	processed, cropped, err := s.smartCrop(img, mimeType)
	if err != nil {
		log.Printf("⚠️ 스마트 크롭 실패, 원본 사용 (%s): %v", name, err)
		out.preview = s.renderPreview(img, name)
		return out
	}
	out.processed = processed
	out.preview = s.renderPreview(cropped, name)
	return out
}

// judgeFaces - 얼굴 개수/크기/정면성 판정. 통과하면 빈 문자열 반환.
func (s *Service) judgeFaces(faces []detector.Face, imageWidth int) string {
	if len(faces) == 0 {
		return ReasonNoFace
	}
	if len(faces) > 1 {
		return ReasonMultipleFaces
	}

	face := faces[0]
	ratio := float64(face.Box.Dx()) / float64(imageWidth)
	if ratio < s.limits.MinFaceRatio {
		return ReasonFaceTooSmall
	}

	left, right, nose := face.Landmarks.LeftEye, face.Landmarks.RightEye, face.Landmarks.Nose
	eyeDistance := abs(right.X - left.X)
	if eyeDistance == 0 {
		return ReasonNotFrontal
	}
	noseDeviation := abs(nose.X - (left.X+right.X)/2)
	if float64(noseDeviation)/float64(eyeDistance) > s.limits.MaxNoseDeviation {
		return ReasonNotFrontal
	}
	return ""
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
