package prompt

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"headshot-studio-server/modules/common/config"
)

type Handler struct {
	secret string
}

func NewHandler() *Handler {
	return &Handler{secret: config.GetConfig().WebhookSecret}
}

// RegisterRoutes - 프롬프트 생성 엔드포인트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/prompts/generate", h.handleGenerate).Methods("POST", "OPTIONS")
	log.Println("✅ Prompt routes registered: /api/prompts/generate")
}

type generateRequest struct {
	UserCharacterInputs CharacterAttributes `json:"userCharacterInputs"`
	StylePairs          []StylePair         `json:"stylePairs"`
	StylesLimit         int                 `json:"stylesLimit"`
}

type generateResponse struct {
	Success bool              `json:"success"`
	Prompts []GeneratedPrompt `json:"prompts"`
	Count   int               `json:"count"`
}

// verifyAPIKey - 요청 API 키 검증 (상수 시간 비교)
func (h *Handler) verifyAPIKey(apiKey string) bool {
	if apiKey == "" || h.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(apiKey), []byte(h.secret)) == 1
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if !h.verifyAPIKey(r.Header.Get("x-api-key")) {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if len(req.StylePairs) == 0 || req.StylesLimit <= 0 {
		writeError(w, "Missing required fields: userCharacterInputs, stylePairs, stylesLimit", http.StatusBadRequest)
		return
	}

	prompts := Generate(req.UserCharacterInputs, req.StylePairs, req.StylesLimit)
	if len(prompts) == 0 {
		writeError(w, "Failed to generate prompts", http.StatusBadRequest)
		return
	}

	if err := json.NewEncoder(w).Encode(generateResponse{
		Success: true,
		Prompts: prompts,
		Count:   len(prompts),
	}); err != nil {
		log.Printf("❌ Failed to encode prompts response: %v", err)
	}
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
