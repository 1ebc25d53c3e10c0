package intake

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// 이벤트 타입
const (
	EventCandidateUpdate  = "candidate_update"
	EventCandidateRemoved = "candidate_removed"
	EventBatchCleared     = "batch_cleared"
)

// Event - 세션 구독자에게 푸시되는 진행 상황 이벤트
type Event struct {
	Type          string `json:"type"`
	SessionID     string `json:"sessionId"`
	CandidateID   string `json:"candidateId,omitempty"`
	FileName      string `json:"fileName,omitempty"`
	Analyzed      bool   `json:"analyzed,omitempty"`
	Accepted      bool   `json:"accepted,omitempty"`
	DeclineReason string `json:"declineReason,omitempty"`
}

// 연결된 클라이언트 정보
type eventClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub - 세션별 이벤트 구독자 관리
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*eventClient]bool
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[*eventClient]bool)}
}

// Subscribe - 연결을 세션 이벤트 스트림에 등록하고 펌프 고루틴을 띄운다
func (h *Hub) Subscribe(sessionID string, conn *websocket.Conn) {
	client := &eventClient{
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.mu.Lock()
	if h.subscribers[sessionID] == nil {
		h.subscribers[sessionID] = make(map[*eventClient]bool)
	}
	h.subscribers[sessionID][client] = true
	count := len(h.subscribers[sessionID])
	h.mu.Unlock()

	log.Printf("🔌 세션 %s 이벤트 구독 시작 (구독자 %d명)", sessionID, count)

	go client.writePump()
	go h.readPump(sessionID, client)
}

// Publish - 세션의 모든 구독자에게 이벤트 전송
func (h *Hub) Publish(sessionID string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("❌ 이벤트 직렬화 실패: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.subscribers[sessionID] {
		select {
		case client.send <- data:
		default:
			// 밀린 클라이언트는 건너뛴다
			log.Printf("⚠️ 이벤트 버퍼 가득참, 메시지 유실 (세션: %s)", sessionID)
		}
	}
}

func (h *Hub) unsubscribe(sessionID string, client *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.subscribers[sessionID]; ok {
		if clients[client] {
			delete(clients, client)
			close(client.send)
		}
		if len(clients) == 0 {
			delete(h.subscribers, sessionID)
		}
	}
}

// readPump - 구독자는 메시지를 보내지 않으므로 종료 감지 전용
func (h *Hub) readPump(sessionID string, client *eventClient) {
	defer func() {
		h.unsubscribe(sessionID, client)
		client.conn.Close()
		log.Printf("🔌 세션 %s 이벤트 구독 종료", sessionID)
	}()

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

func (c *eventClient) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
