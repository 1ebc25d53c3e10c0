package intake

import (
	"fmt"
	"image"
	"log"

	"github.com/disintegration/imaging"

	"headshot-studio-server/modules/common/utils"
)

// cropSize - 크롭 목표 변 길이 (최소 해상도 이상, 짧은 변 기준)
func (s *Service) cropSize(w, h int) int {
	size := w
	if h < w {
		size = h
	}
	if size < s.limits.MinDimension {
		size = s.limits.MinDimension
	}
	return size
}

// smartCrop - 컨텐츠 인식 정방형 크롭. Returns the encoded bytes in the
// candidate's original MIME type plus the cropped image for previewing.
func (s *Service) smartCrop(img image.Image, mimeType string) ([]byte, image.Image, error) {
	bounds := img.Bounds()
	size := s.cropSize(bounds.Dx(), bounds.Dy())

	var cropped image.Image
	rect, err := s.cropAnalyzer.FindBestCrop(img, size, size)
	if err != nil {
		// 분석기 실패 시 중앙 크롭으로 대체
		log.Printf("⚠️ 크롭 분석기 실패, 중앙 크롭 사용: %v", err)
		cropped = utils.CenterCropSquare(img, size)
	} else {
		cropped = imaging.Crop(img, rect)
		if cropped.Bounds().Dx() != size || cropped.Bounds().Dy() != size {
			cropped = imaging.Resize(cropped, size, size, imaging.Lanczos)
		}
	}

	data, err := utils.EncodeImage(cropped, mimeType)
	if err != nil {
		return nil, nil, fmt.Errorf("크롭 결과 인코딩 실패: %w", err)
	}
	return data, cropped, nil
}

// renderPreview - 브라우저 표시용 WebP 썸네일 생성 (실패 시 nil)
func (s *Service) renderPreview(img image.Image, name string) []byte {
	preview, err := utils.EncodePreviewWebP(img, s.limits.PreviewMaxDim, s.limits.PreviewQuality)
	if err != nil {
		log.Printf("⚠️ 썸네일 생성 실패 (%s): %v", name, err)
		return nil
	}
	return preview
}
