package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/supabase-community/supabase-go"

	"headshot-studio-server/modules/common/config"
	"headshot-studio-server/modules/common/model"
)

type Client struct {
	supabase *supabase.Client
}

// NewClient - Database 클라이언트 생성
func NewClient() *Client {
	cfg := config.GetConfig()

	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		log.Printf("❌ Failed to create Supabase client: %v", err)
		return nil
	}

	return &Client{
		supabase: supabaseClient,
	}
}

// FetchJob - studio_jobs에서 Job 데이터 조회
func (c *Client) FetchJob(jobID string) (*model.StudioJob, error) {
	log.Printf("🔍 Fetching job from Supabase: %s", jobID)

	var jobs []model.StudioJob

	data, _, err := c.supabase.From("studio_jobs").
		Select("*", "exact", false).
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to query studio_jobs: %w", err)
	}

	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse job response: %w", err)
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	job := &jobs[0]
	log.Printf("✅ Job fetched successfully: %s (status: %s, styles_limit: %d)",
		job.JobID, job.JobStatus, job.StylesLimit)

	return job, nil
}

// InsertJob - 새 Job row 생성
func (c *Client) InsertJob(ctx context.Context, job *model.StudioJob) error {
	log.Printf("📝 Inserting job: %s (user: %s)", job.JobID, job.UserID)

	insertData := map[string]interface{}{
		"job_id":       job.JobID,
		"user_id":      job.UserID,
		"job_status":   model.StatusPending,
		"images_url":   job.ImagesURL,
		"styles_limit": job.StylesLimit,
		"character":    job.Character,
		"style_pairs":  job.StylePairs,
	}

	_, _, err := c.supabase.From("studio_jobs").
		Insert(insertData, false, "", "", "").
		Execute()

	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	log.Printf("✅ Job %s inserted", job.JobID)
	return nil
}

// UpdateJobStatus - Job 상태 업데이트
func (c *Client) UpdateJobStatus(ctx context.Context, jobID string, status string) error {
	log.Printf("📝 Updating job %s status to: %s", jobID, status)

	updateData := map[string]interface{}{
		"job_status": status,
		"updated_at": "now()",
	}

	if status == model.StatusProcessing {
		updateData["started_at"] = "now()"
	} else if status == model.StatusCompleted || status == model.StatusFailed {
		updateData["completed_at"] = "now()"
	}

	_, _, err := c.supabase.From("studio_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	log.Printf("✅ Job %s status updated to: %s", jobID, status)
	return nil
}

// FailJob - 실패 상태와 에러 메시지 기록
func (c *Client) FailJob(ctx context.Context, jobID string, errMsg string) error {
	updateData := map[string]interface{}{
		"job_status":   model.StatusFailed,
		"error_msg":    errMsg,
		"completed_at": "now()",
		"updated_at":   "now()",
	}

	_, _, err := c.supabase.From("studio_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}

	log.Printf("✅ Job %s marked failed", jobID)
	return nil
}

// SaveJobPrompts - 생성된 프롬프트를 Job row에 저장
func (c *Client) SaveJobPrompts(ctx context.Context, jobID string, prompts interface{}) error {
	log.Printf("📝 Saving prompts for job %s", jobID)

	updateData := map[string]interface{}{
		"prompts":    prompts,
		"updated_at": "now()",
	}

	_, _, err := c.supabase.From("studio_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to save prompts: %w", err)
	}

	return nil
}
