package studio

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"headshot-studio-server/modules/common/database"
	"headshot-studio-server/modules/common/model"
	"headshot-studio-server/modules/prompt"
)

const jobQueue = "studio:jobs"

type Service struct {
	db  *database.Client
	rdb *redis.Client
}

func NewService(db *database.Client, rdb *redis.Client) *Service {
	if db == nil {
		log.Println("❌ Failed to initialize studio service: no database client")
		return nil
	}
	return &Service{db: db, rdb: rdb}
}

// EnqueueJob - Job row 생성 후 워커 큐에 투입
func (s *Service) EnqueueJob(ctx context.Context, job *model.StudioJob) error {
	if err := s.db.InsertJob(ctx, job); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	if err := s.rdb.LPush(ctx, jobQueue, job.JobID).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	log.Printf("📬 Job %s queued", job.JobID)
	return nil
}

// ProcessJob - Job 한 건 처리: 조회 → 프롬프트 생성 → 저장
func (s *Service) ProcessJob(ctx context.Context, jobID string) {
	log.Printf("🚀 Processing job: %s", jobID)

	job, err := s.db.FetchJob(jobID)
	if err != nil {
		log.Printf("❌ Failed to fetch job %s: %v", jobID, err)
		return
	}

	if job.JobStatus != model.StatusPending {
		log.Printf("⚠️ Job %s is %s, skipping", jobID, job.JobStatus)
		return
	}

	if err := s.db.UpdateJobStatus(ctx, jobID, model.StatusProcessing); err != nil {
		log.Printf("❌ Failed to mark job %s processing: %v", jobID, err)
		return
	}

	prompts := prompt.Generate(job.Character, job.StylePairs, job.StylesLimit)
	if len(prompts) == 0 {
		s.failJob(ctx, jobID, "no prompts could be generated for the given style pairs")
		return
	}

	if err := s.db.SaveJobPrompts(ctx, jobID, prompts); err != nil {
		s.failJob(ctx, jobID, fmt.Sprintf("failed to save prompts: %v", err))
		return
	}

	if err := s.db.UpdateJobStatus(ctx, jobID, model.StatusCompleted); err != nil {
		log.Printf("❌ Failed to mark job %s completed: %v", jobID, err)
		return
	}

	log.Printf("✅ Job %s completed with %d prompts", jobID, len(prompts))
}

func (s *Service) failJob(ctx context.Context, jobID string, reason string) {
	log.Printf("❌ Job %s failed: %s", jobID, reason)
	if err := s.db.FailJob(ctx, jobID, reason); err != nil {
		log.Printf("❌ Failed to mark job %s failed: %v", jobID, err)
	}
}
