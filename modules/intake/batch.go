package intake

import (
	"log"
	"sync"
	"time"
)

// Batch - 세션 하나의 후보 목록. Preserves drop order and enforces the
// batch cap by silently discarding overflow.
type Batch struct {
	mu         sync.RWMutex
	candidates []*UploadCandidate
	maxSize    int
}

func newBatch(maxSize int) *Batch {
	return &Batch{maxSize: maxSize}
}

// Append - 후보 추가. Returns how many were actually kept; anything past
// the cap is dropped without error.
func (b *Batch) Append(cands ...*UploadCandidate) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	room := b.maxSize - len(b.candidates)
	if room <= 0 {
		return 0
	}
	if len(cands) > room {
		log.Printf("⚠️ 배치 한도 초과: %d개 중 %d개만 유지", len(cands), room)
		cands = cands[:room]
	}
	b.candidates = append(b.candidates, cands...)
	return len(cands)
}

// Get - ID로 후보 조회 (없으면 nil)
func (b *Batch) Get(id string) *UploadCandidate {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.candidates {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Remove - 후보 제거 및 썸네일 핸들 해제
func (b *Batch) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, c := range b.candidates {
		if c.ID == id {
			c.Preview = nil
			b.candidates = append(b.candidates[:i], b.candidates[i+1:]...)
			return true
		}
	}
	return false
}

// Clear - 전체 제거
func (b *Batch) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.candidates {
		c.Preview = nil
	}
	b.candidates = nil
}

// Len - 현재 후보 수
func (b *Batch) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.candidates)
}

// Snapshot - 현재 순서대로 후보 포인터 복사본 반환
func (b *Batch) Snapshot() []*UploadCandidate {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*UploadCandidate, len(b.candidates))
	copy(out, b.candidates)
	return out
}

// SelectForUpload - 포장 대상 선택. Pending candidates are always
// skipped; analyzed candidates never change again so the returned
// pointers are safe to read without the lock.
func (b *Batch) SelectForUpload(includeDeclined bool) (selected []*UploadCandidate, acceptedCount int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.candidates {
		if !c.Analyzed {
			continue
		}
		if c.Accepted {
			acceptedCount++
		}
		if c.Accepted || includeDeclined {
			selected = append(selected, c)
		}
	}
	return selected, acceptedCount
}

// applyOutcome - 분석 결과 반영. Returns false when the candidate was
// removed while analysis was in flight; the result is then discarded.
func (b *Batch) applyOutcome(id string, out analysisOutcome) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.candidates {
		if c.ID != id {
			continue
		}
		c.Width = out.width
		c.Height = out.height
		c.Analyzed = true
		c.Accepted = out.accepted
		c.DeclineReason = out.declineReason
		c.Processed = out.processed
		c.Preview = out.preview
		return true
	}
	return false
}

// Views - 핸들러 응답용 read-only 프로젝션.
// previewURL builds the preview link for candidates that have one.
func (b *Batch) Views(previewURL func(id string) string) []CandidateView {
	b.mu.RLock()
	defer b.mu.RUnlock()
	views := make([]CandidateView, 0, len(b.candidates))
	for _, c := range b.candidates {
		view := CandidateView{
			ID:            c.ID,
			FileName:      c.FileName,
			Width:         c.Width,
			Height:        c.Height,
			Analyzed:      c.Analyzed,
			Accepted:      c.Accepted,
			DeclineReason: c.DeclineReason,
		}
		if c.Preview != nil && previewURL != nil {
			view.PreviewURL = previewURL(c.ID)
		}
		views = append(views, view)
	}
	return views
}

// PreviewOf - 썸네일 바이트 조회 (제거되었거나 아직 없으면 nil)
func (b *Batch) PreviewOf(id string) []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.candidates {
		if c.ID == id {
			return c.Preview
		}
	}
	return nil
}

type sessionEntry struct {
	batch        *Batch
	createdAt    time.Time
	lastActivity time.Time
}

// Manager - 세션별 배치 관리자
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	maxBatch int
}

func NewManager(maxBatch int) *Manager {
	return &Manager{
		sessions: make(map[string]*sessionEntry),
		maxBatch: maxBatch,
	}
}

// GetOrCreate - 세션의 배치 반환 (없으면 생성)
func (m *Manager) GetOrCreate(sessionID string) *Batch {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[sessionID]
	if !ok {
		entry = &sessionEntry{
			batch:     newBatch(m.maxBatch),
			createdAt: time.Now(),
		}
		m.sessions[sessionID] = entry
		log.Printf("📝 새 인테이크 세션 생성: %s", sessionID)
	}
	entry.lastActivity = time.Now()
	return entry.batch
}

// Lookup - 생성 없이 조회
func (m *Manager) Lookup(sessionID string) *Batch {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if entry, ok := m.sessions[sessionID]; ok {
		return entry.batch
	}
	return nil
}

// Drop - 세션 제거
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.sessions[sessionID]; ok {
		entry.batch.Clear()
		delete(m.sessions, sessionID)
	}
}

// StartCleanupRoutine - 방치된 세션 정리 고루틴 시작
func (m *Manager) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			m.cleanupStale(2 * time.Hour)
		}
	}()
}

func (m *Manager) cleanupStale(maxIdle time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for id, entry := range m.sessions {
		if now.Sub(entry.lastActivity) > maxIdle {
			entry.batch.Clear()
			delete(m.sessions, id)
			log.Printf("🗑️ 방치된 세션 정리: %s", id)
		}
	}
}
