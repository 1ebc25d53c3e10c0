package studio

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"headshot-studio-server/modules/common/model"
	"headshot-studio-server/modules/prompt"
)

type StudioHandler struct {
	service *Service
}

func NewStudioHandler(service *Service) *StudioHandler {
	return &StudioHandler{service: service}
}

// RegisterRoutes - 라우터에 Studio 엔드포인트 등록
func (h *StudioHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/studio/jobs", h.SubmitJob).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/studio/jobs/{jobId}", h.GetJobStatus).Methods("GET")
	log.Println("✅ Studio routes registered: /api/studio/jobs")
}

type submitJobRequest struct {
	UserID      string                     `json:"userId"`
	ImagesURL   string                     `json:"imagesUrl"`
	StylesLimit int                        `json:"stylesLimit"`
	Character   prompt.CharacterAttributes `json:"character"`
	StylePairs  []prompt.StylePair         `json:"stylePairs"`
}

// SubmitJob - Studio 작업 제출 (Redis Queue에 추가)
func (h *StudioHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req submitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Failed to parse request: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Invalid request format",
		})
		return
	}

	if req.UserID == "" || req.ImagesURL == "" || len(req.StylePairs) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Missing required fields: userId, imagesUrl, stylePairs",
		})
		return
	}

	if req.StylesLimit < 1 || req.StylesLimit > 100 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "stylesLimit must be between 1 and 100",
		})
		return
	}

	job := &model.StudioJob{
		JobID:       uuid.New().String(),
		UserID:      req.UserID,
		JobStatus:   model.StatusPending,
		ImagesURL:   req.ImagesURL,
		StylesLimit: req.StylesLimit,
		Character:   req.Character,
		StylePairs:  req.StylePairs,
	}

	log.Printf("🎨 Studio job submission: user=%s, stylesLimit=%d, pairs=%d",
		req.UserID, req.StylesLimit, len(req.StylePairs))

	if err := h.service.EnqueueJob(r.Context(), job); err != nil {
		log.Printf("❌ Failed to enqueue job: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Failed to create job",
		})
		return
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"jobId":  job.JobID,
		"status": model.StatusPending,
	})
}

// GetJobStatus - Job 상태 조회
func (h *StudioHandler) GetJobStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	jobID := mux.Vars(r)["jobId"]
	job, err := h.service.db.FetchJob(jobID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Job not found",
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"jobId":       job.JobID,
		"status":      job.JobStatus,
		"promptCount": len(job.Prompts),
		"createdAt":   job.CreatedAt,
		"completedAt": job.CompletedAt,
	})
}
