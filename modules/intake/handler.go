package intake

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const multipartMemoryLimit = 64 << 20

type IntakeHandler struct {
	service  *Service
	batches  *Manager
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewIntakeHandler(service *Service, batches *Manager, hub *Hub) *IntakeHandler {
	return &IntakeHandler{
		service: service,
		batches: batches,
		hub:     hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// 개발용 - 모든 origin 허용
				return true
			},
		},
	}
}

// RegisterRoutes - 라우터에 인테이크 엔드포인트 등록
func (h *IntakeHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/intake/{sessionId}/files", h.DropFiles).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/intake/{sessionId}/files", h.ClearBatch).Methods("DELETE", "OPTIONS")
	r.HandleFunc("/api/intake/{sessionId}/files/{candidateId}", h.RemoveCandidate).Methods("DELETE", "OPTIONS")
	r.HandleFunc("/api/intake/{sessionId}/files/{candidateId}/preview", h.GetPreview).Methods("GET")
	r.HandleFunc("/api/intake/{sessionId}/upload", h.UploadBatch).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/intake/{sessionId}", h.GetBatchState).Methods("GET")
	r.HandleFunc("/api/intake/{sessionId}/events", h.StreamEvents)
	log.Println("✅ Intake routes registered: /api/intake/{sessionId}/...")
}

// DropFiles - 파일 묶음 수신 및 분석 (multipart/form-data, field: files)
func (h *IntakeHandler) DropFiles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	sessionID := mux.Vars(r)["sessionId"]

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Invalid multipart request",
		})
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "No files provided",
		})
		return
	}

	var files []IncomingFile
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "Failed to read file " + fh.Filename,
			})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "Failed to read file " + fh.Filename,
			})
			return
		}

		mimeType := fh.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = http.DetectContentType(data)
		}
		files = append(files, IncomingFile{
			Name:     fh.Filename,
			MimeType: mimeType,
			Data:     data,
		})
	}

	batch := h.batches.GetOrCreate(sessionID)
	rejections, err := h.service.ProcessFiles(r.Context(), sessionID, batch, files)
	if err != nil {
		log.Printf("❌ 파일 처리 실패 (세션: %s): %v", sessionID, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Face detection models are not available",
		})
		return
	}

	if rejections == nil {
		rejections = []Rejection{}
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"rejected": rejections,
		"batch":    h.batchView(sessionID, batch),
	})
}

// GetBatchState - 배치 현재 상태 조회
func (h *IntakeHandler) GetBatchState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	sessionID := mux.Vars(r)["sessionId"]
	batch := h.batches.Lookup(sessionID)
	if batch == nil {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []CandidateView{},
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"candidates": h.batchView(sessionID, batch),
	})
}

// RemoveCandidate - 후보 한 개 제거
func (h *IntakeHandler) RemoveCandidate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	vars := mux.Vars(r)
	sessionID := vars["sessionId"]
	candidateID := vars["candidateId"]

	batch := h.batches.Lookup(sessionID)
	if batch == nil || !batch.Remove(candidateID) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Candidate not found",
		})
		return
	}

	h.hub.Publish(sessionID, Event{
		Type:        EventCandidateRemoved,
		SessionID:   sessionID,
		CandidateID: candidateID,
	})
	json.NewEncoder(w).Encode(map[string]bool{"removed": true})
}

// ClearBatch - 배치 전체 비우기
func (h *IntakeHandler) ClearBatch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	sessionID := mux.Vars(r)["sessionId"]
	if batch := h.batches.Lookup(sessionID); batch != nil {
		batch.Clear()
		h.hub.Publish(sessionID, Event{
			Type:      EventBatchCleared,
			SessionID: sessionID,
		})
	}
	json.NewEncoder(w).Encode(map[string]bool{"cleared": true})
}

// GetPreview - WebP 썸네일 서빙
func (h *IntakeHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["sessionId"]
	candidateID := vars["candidateId"]

	batch := h.batches.Lookup(sessionID)
	if batch == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	preview := batch.PreviewOf(candidateID)
	if preview == nil {
		http.Error(w, "Preview not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(preview)
}

type uploadRequest struct {
	IncludeDeclined bool `json:"includeDeclined"`
	AllowFewerThan  bool `json:"allowFewerThanRecommended"`
}

// UploadBatch - 배치 포장 및 스토리지 업로드
func (h *IntakeHandler) UploadBatch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	sessionID := mux.Vars(r)["sessionId"]
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Missing X-User-Id header",
		})
		return
	}

	var req uploadRequest
	if r.Body != nil {
		// 빈 바디 허용 (기본 옵션 사용)
		json.NewDecoder(r.Body).Decode(&req)
	}

	batch := h.batches.Lookup(sessionID)
	if batch == nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Session not found",
		})
		return
	}

	result, err := h.service.Upload(r.Context(), batch, UploadOptions{
		UserID:          userID,
		IncludeDeclined: req.IncludeDeclined,
		AllowFewerThan:  req.AllowFewerThan,
	})
	if err != nil {
		h.writeUploadError(w, sessionID, err)
		return
	}

	json.NewEncoder(w).Encode(result)
}

func (h *IntakeHandler) writeUploadError(w http.ResponseWriter, sessionID string, err error) {
	var countErr *RecommendedCountError
	var uploadErr *UploadError

	switch {
	case errors.Is(err, ErrNoUsableCandidates):
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": err.Error(),
		})
	case errors.As(err, &countErr):
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":       countErr.Error(),
			"overridable": true,
			"count":       countErr.Count,
		})
	case errors.As(err, &uploadErr):
		log.Printf("❌ 업로드 실패 (세션: %s, 단계: %s): %v", sessionID, uploadErr.Stage, uploadErr.Err)
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Upload failed, please try again",
			"stage": uploadErr.Stage,
		})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Internal server error",
		})
	}
}

// StreamEvents - 세션 진행 상황 WebSocket 스트림
func (h *IntakeHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ WebSocket 업그레이드 실패: %v", err)
		return
	}
	h.hub.Subscribe(sessionID, conn)
}

func (h *IntakeHandler) batchView(sessionID string, batch *Batch) []CandidateView {
	return batch.Views(func(id string) string {
		return "/api/intake/" + sessionID + "/files/" + id + "/preview"
	})
}
