package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"headshot-studio-server/modules/common/config"
)

// SignedURLTTL - 업로드된 아카이브의 signed URL 유효 시간 (6시간)
const SignedURLTTL = 21600

type Client struct {
	httpClient *http.Client
}

// NewClient - Storage 클라이언트 생성
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// BuildArchivePath - 업로드 경로 생성: {userId}/{randomId}/{timestamp}.zip
func BuildArchivePath(userID string) string {
	return fmt.Sprintf("%s/%s/%d.zip", userID, uuid.New().String(), time.Now().UnixMilli())
}

// Upload - Supabase Storage에 오브젝트 업로드
func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	cfg := config.GetConfig()

	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", cfg.SupabaseURL, cfg.StorageBucket, path)
	log.Printf("📤 Uploading archive to storage: %s (%d bytes)", path, len(data))

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cfg.SupabaseServiceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	log.Printf("✅ Archive uploaded successfully: %s", path)
	return nil
}

// CreateSignedURL - 업로드된 오브젝트의 시간 제한 signed URL 발급
func (c *Client) CreateSignedURL(ctx context.Context, path string, expiresIn int) (string, error) {
	cfg := config.GetConfig()

	signURL := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", cfg.SupabaseURL, cfg.StorageBucket, path)

	payload, err := json.Marshal(map[string]int{"expiresIn": expiresIn})
	if err != nil {
		return "", fmt.Errorf("failed to marshal sign request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", signURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create sign request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cfg.SupabaseServiceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request signed URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("sign failed with status %d: %s", resp.StatusCode, string(body))
	}

	var signResp struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&signResp); err != nil {
		return "", fmt.Errorf("failed to parse sign response: %w", err)
	}
	if signResp.SignedURL == "" {
		return "", fmt.Errorf("sign response contained no signedURL")
	}

	fullURL := cfg.SupabaseURL + "/storage/v1" + signResp.SignedURL
	log.Printf("✅ Signed URL created for %s (expires in %ds)", path, expiresIn)
	return fullURL, nil
}
