package intake

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/muesli/smartcrop"
	"github.com/muesli/smartcrop/nfnt"
	"golang.org/x/sync/errgroup"

	"headshot-studio-server/modules/common/detector"
)

// ObjectStore - 아카이브 업로드 대상 스토리지 추상화
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	CreateSignedURL(ctx context.Context, path string, expiresIn int) (string, error)
}

// CaptionFunc - 이미지 캡션 생성기 (nil이면 캡션 비활성화)
type CaptionFunc func(ctx context.Context, imageData []byte) string

// Service - 인테이크 파이프라인 서비스
type Service struct {
	limits       Limits
	detector     detector.Detector
	store        ObjectStore
	captioner    CaptionFunc
	hub          *Hub
	cropAnalyzer smartcrop.Analyzer
}

func NewService(limits Limits, det detector.Detector, store ObjectStore, hub *Hub, captioner CaptionFunc) *Service {
	return &Service{
		limits:       limits,
		detector:     det,
		store:        store,
		captioner:    captioner,
		hub:          hub,
		cropAnalyzer: smartcrop.NewAnalyzer(nfnt.NewDefaultResizer()),
	}
}

// ProcessFiles - 드롭된 파일 묶음 처리.
// Size/type gatekeeping happens synchronously and rejected files never
// enter the batch. Survivors are inserted immediately so state reads
// show them as pending, then analyzed concurrently.
func (s *Service) ProcessFiles(ctx context.Context, sessionID string, batch *Batch, files []IncomingFile) ([]Rejection, error) {
	if err := s.detector.Ready(); err != nil {
		return nil, fmt.Errorf("얼굴 검출 모델 사용 불가: %w", err)
	}

	var rejections []Rejection
	var candidates []*UploadCandidate
	for _, f := range files {
		if int64(len(f.Data)) > s.limits.MaxFileSize {
			rejections = append(rejections, Rejection{
				FileName: f.Name,
				Reason:   fmt.Sprintf("File %s is too large. Max size is %dMB.", f.Name, s.limits.MaxFileSize/(1024*1024)),
			})
			continue
		}
		if !s.limits.typeAllowed(f.MimeType) {
			rejections = append(rejections, Rejection{
				FileName: f.Name,
				Reason:   fmt.Sprintf("File %s is not an allowed type. Only JPG and PNG are allowed.", f.Name),
			})
			continue
		}
		candidates = append(candidates, &UploadCandidate{
			ID:       uuid.New().String(),
			FileName: f.Name,
			MimeType: f.MimeType,
			Size:     int64(len(f.Data)),
			Original: f.Data,
		})
	}

	added := batch.Append(candidates...)
	toAnalyze := candidates[:added]
	if len(toAnalyze) == 0 {
		return rejections, nil
	}

	log.Printf("🔍 세션 %s: %d개 이미지 분석 시작", sessionID, len(toAnalyze))

	g, _ := errgroup.WithContext(ctx)
	for _, c := range toAnalyze {
		c := c
		g.Go(func() error {
			outcome := s.analyze(c.FileName, c.MimeType, c.Original)
			if !batch.applyOutcome(c.ID, outcome) {
				// 분석 중 제거된 후보의 결과는 버린다
				log.Printf("🗑️ 제거된 후보의 분석 결과 폐기: %s", c.FileName)
				return nil
			}
			s.publishVerdict(sessionID, c.ID, c.FileName, outcome)
			return nil
		})
	}
	g.Wait()

	return rejections, nil
}

func (s *Service) publishVerdict(sessionID, candidateID, fileName string, out analysisOutcome) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(sessionID, Event{
		Type:          EventCandidateUpdate,
		SessionID:     sessionID,
		CandidateID:   candidateID,
		FileName:      fileName,
		Analyzed:      true,
		Accepted:      out.accepted,
		DeclineReason: out.declineReason,
	})
}
