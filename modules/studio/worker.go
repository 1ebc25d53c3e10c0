package studio

import (
	"context"
	"log"
	"time"
)

// StartWorker - Redis Queue Worker 시작
func StartWorker(service *Service) {
	log.Println("🔄 Studio worker starting...")

	if service == nil {
		log.Println("❌ Studio worker not started: service unavailable")
		return
	}

	log.Printf("👀 Watching queue: %s", jobQueue)

	ctx := context.Background()

	// 무한 루프로 Queue 감시
	for {
		result, err := service.rdb.BRPop(ctx, 0, jobQueue).Result()
		if err != nil {
			log.Printf("❌ Redis BRPOP error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		// result[0]은 큐 이름, result[1]이 job_id
		jobID := result[1]
		log.Printf("🎯 Received new job: %s", jobID)

		go service.ProcessJob(ctx, jobID)
	}
}
