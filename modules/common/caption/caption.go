package caption

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"google.golang.org/genai"

	"headshot-studio-server/modules/common/config"
	"headshot-studio-server/modules/common/utils"
)

// apiMaxDim - 캡션 API 호출용 이미지 축소 크기 (업로드 원본은 그대로 유지)
const apiMaxDim = 1024

const maxRetriesPerKey = 3

// DefaultCaption - 캡션 생성 실패 시 사용하는 기본 캡션
func DefaultCaption(trigger string) string {
	return fmt.Sprintf("A photograph of %s.", trigger)
}

// Generate - 이미지 한 장의 학습용 캡션 생성.
// Failures never propagate: packaging must not block on captioning, so
// the default caption is returned instead of an error.
func Generate(ctx context.Context, imageData []byte, trigger string) string {
	cfg := config.GetConfig()

	compressed, err := compressForAPI(imageData)
	if err != nil {
		log.Printf("⚠️  [Caption] Failed to compress image for API: %v", err)
		return DefaultCaption(trigger)
	}

	instruction := fmt.Sprintf(
		"Describe this photograph in one concise sentence suitable as an image training caption. Start the sentence with: A photograph of %s", trigger)

	content := &genai.Content{
		Parts: []*genai.Part{
			genai.NewPartFromBytes(compressed, "image/jpeg"),
			genai.NewPartFromText(instruction),
		},
	}

	result, err := generateWithRetry(ctx, cfg.GeminiAPIKeys, cfg.GeminiModel, []*genai.Content{content})
	if err != nil {
		log.Printf("⚠️  [Caption] Generation failed, using default caption: %v", err)
		return DefaultCaption(trigger)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return DefaultCaption(trigger)
	}

	log.Printf("✅ [Caption] Generated: %.60s...", text)
	return text
}

// compressForAPI - API 전송용으로 이미지 축소 (최대 1024px, JPEG)
func compressForAPI(imageData []byte) ([]byte, error) {
	img, err := utils.DecodeImage(imageData)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Dx() > apiMaxDim || bounds.Dy() > apiMaxDim {
		img = imaging.Fit(img, apiMaxDim, apiMaxDim, imaging.Lanczos)
	}

	return utils.EncodeImage(img, "image/jpeg")
}

// generateWithRetry - 429 에러 시 여러 API 키로 재시도하는 헬퍼 함수
// 각 키당 최대 3번 재시도
func generateWithRetry(
	ctx context.Context,
	apiKeys []string,
	model string,
	contents []*genai.Content,
) (*genai.GenerateContentResponse, error) {

	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("no API keys provided")
	}

	var lastErr error

	for keyIndex, apiKey := range apiKeys {
		for attempt := 1; attempt <= maxRetriesPerKey; attempt++ {
			client, err := genai.NewClient(ctx, &genai.ClientConfig{
				APIKey:  apiKey,
				Backend: genai.BackendGeminiAPI,
			})
			if err != nil {
				log.Printf("⚠️  [Caption Retry] Failed to create client with key #%d (attempt %d): %v", keyIndex+1, attempt, err)
				lastErr = err
				continue
			}

			result, err := client.Models.GenerateContent(ctx, model, contents, nil)
			if err == nil {
				return result, nil
			}

			lastErr = err

			// 429가 아닌 다른 에러면 바로 반환 (재시도 안 함)
			if !is429Error(err) {
				return nil, err
			}

			log.Printf("⚠️  [Caption Retry] Key #%d hit rate limit (429) on attempt %d/%d", keyIndex+1, attempt, maxRetriesPerKey)
			if attempt < maxRetriesPerKey {
				time.Sleep(time.Second * 2)
			}
		}

		log.Printf("⚠️  [Caption Retry] Key #%d exhausted all %d attempts, trying next key...", keyIndex+1, maxRetriesPerKey)
	}

	return nil, fmt.Errorf("all %d API keys exhausted (%d attempts each), last error: %w", len(apiKeys), maxRetriesPerKey, lastErr)
}

// is429Error - 429 Rate Limit 에러인지 확인
func is429Error(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(strings.ToLower(errStr), "rate limit") ||
		strings.Contains(strings.ToLower(errStr), "quota")
}
