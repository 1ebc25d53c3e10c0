package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"headshot-studio-server/modules/common/caption"
	"headshot-studio-server/modules/common/config"
	"headshot-studio-server/modules/common/database"
	"headshot-studio-server/modules/common/detector"
	"headshot-studio-server/modules/common/redis"
	"headshot-studio-server/modules/common/storage"
	"headshot-studio-server/modules/intake"
	"headshot-studio-server/modules/prompt"
	"headshot-studio-server/modules/studio"
)

var serverStartTime = time.Now()

// CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-Id, x-api-key")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(serverStartTime).String(),
	})
}

func main() {
	log.Println("🚀 Headshot Studio Server starting...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// 얼굴 검출 캐스케이드 (lazy load, 첫 사용 시 로드)
	faceDetector := detector.NewHandle(cfg.FaceCascadePath, cfg.PuplocCascadePath)
	if err := faceDetector.Ready(); err != nil {
		log.Printf("⚠️ Face detection cascades not loaded yet: %v", err)
	} else {
		log.Println("✅ Face detection cascades loaded")
	}

	store := storage.NewClient()
	hub := intake.NewHub()

	// 캡션은 선택 기능
	var captioner intake.CaptionFunc
	if cfg.CaptionsOn {
		captioner = func(ctx context.Context, imageData []byte) string {
			return caption.Generate(ctx, imageData, cfg.TriggerWord)
		}
		log.Println("✅ Image captioning enabled")
	}

	intakeService := intake.NewService(intake.DefaultLimits(), faceDetector, store, hub, captioner)
	batches := intake.NewManager(intake.DefaultLimits().MaxBatchSize)
	batches.StartCleanupRoutine()

	// Studio 작업 큐 (DB/Redis가 없으면 비활성화)
	var studioService *studio.Service
	if db := database.NewClient(); db != nil {
		if rdb := redis.Connect(cfg); rdb != nil {
			studioService = studio.NewService(db, rdb)
			go studio.StartWorker(studioService)
		} else {
			log.Println("⚠️ Redis unavailable, studio queue disabled")
		}
	} else {
		log.Println("⚠️ Database unavailable, studio queue disabled")
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", healthCheck).Methods("GET")

	intake.NewIntakeHandler(intakeService, batches, hub).RegisterRoutes(r)
	prompt.NewHandler().RegisterRoutes(r)
	if studioService != nil {
		studio.NewStudioHandler(studioService).RegisterRoutes(r)
	}

	addr := ":" + cfg.Port
	log.Printf("🌐 Server listening on %s", addr)
	if err := http.ListenAndServe(addr, enableCORS(r)); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
