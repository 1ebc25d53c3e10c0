package model

import (
	"time"

	"headshot-studio-server/modules/prompt"
)

// StudioJob - studio_jobs 테이블 구조
type StudioJob struct {
	JobID       string                     `json:"job_id"`
	UserID      string                     `json:"user_id"`
	JobStatus   string                     `json:"job_status"`
	ImagesURL   string                     `json:"images_url"` // signed URL of the training archive
	StylesLimit int                        `json:"styles_limit"`
	Character   prompt.CharacterAttributes `json:"character"`
	StylePairs  []prompt.StylePair         `json:"style_pairs"`
	Prompts     []prompt.GeneratedPrompt   `json:"prompts,omitempty"`
	ErrorMsg    *string                    `json:"error_message"`
	CreatedAt   time.Time                  `json:"created_at"`
	StartedAt   *time.Time                 `json:"started_at"`
	CompletedAt *time.Time                 `json:"completed_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
