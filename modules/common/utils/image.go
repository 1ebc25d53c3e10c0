package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

const jpegQuality = 95

// DecodeImage - 이미지 바이너리 디코딩 (JPEG/PNG 자동 감지)
func DecodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// EncodeImage - 이미지를 원본 MIME 타입으로 재인코딩
func EncodeImage(img image.Image, mimeType string) ([]byte, error) {
	var buf bytes.Buffer
	switch mimeType {
	case "image/png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
	case "image/jpeg", "image/jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported mime type: %s", mimeType)
	}
	return buf.Bytes(), nil
}

// EncodePreviewWebP - 대시보드 노출용 WebP 썸네일 생성
func EncodePreviewWebP(img image.Image, maxDim int, quality float32) ([]byte, error) {
	thumb := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, thumb, options); err != nil {
		return nil, fmt.Errorf("failed to encode WebP: %w", err)
	}

	return buf.Bytes(), nil
}

// CenterCropSquare - size x size 중앙 크롭 (smart crop 실패 시 fallback)
func CenterCropSquare(img image.Image, size int) image.Image {
	bounds := img.Bounds()
	side := bounds.Dx()
	if bounds.Dy() < side {
		side = bounds.Dy()
	}
	cropped := imaging.CropCenter(img, side, side)
	if side == size {
		return cropped
	}
	return imaging.Resize(cropped, size, size, imaging.Lanczos)
}
