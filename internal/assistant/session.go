// Package assistant holds the chat transcript shown in the side panel.
package assistant

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/san-kum/gpunexus/internal/explain"
)

const Welcome = "欢迎来到 GPU Nexus。我已连接到神经网络。点击任何组件或管线阶段，我会为您详细解释！"

// Placeholder is the pending text shown while an explanation is generated.
func Placeholder(topic string) string {
	return fmt.Sprintf("**正在分析 %s...**\n\n思考中...", topic)
}

type Message struct {
	ID      ulid.ULID
	Role    explain.Role
	Text    string
	Time    time.Time
	Pending bool
}

// Session is safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	messages []Message
	open     bool
	inflight int
	now      func() time.Time
}

func NewSession() *Session {
	s := &Session{open: true, now: time.Now}
	s.append(explain.RoleAssistant, Welcome, false)
	return s
}

func (s *Session) append(role explain.Role, text string, pending bool) ulid.ULID {
	t := s.now()
	m := Message{
		ID:      ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()),
		Role:    role,
		Text:    text,
		Time:    t,
		Pending: pending,
	}
	s.messages = append(s.messages, m)
	return m.ID
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// BeginExplain appends a pending placeholder for topic and opens the panel.
func (s *Session) BeginExplain(topic string) ulid.ULID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.inflight++
	return s.append(explain.RoleAssistant, Placeholder(topic), true)
}

// Resolve replaces the placeholder with id. It reports false if no pending
// message has that id.
func (s *Session) Resolve(id ulid.ULID, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		m := &s.messages[i]
		if m.ID != id || !m.Pending {
			continue
		}
		m.Text = text
		m.Pending = false
		s.done()
		return true
	}
	return false
}

// BeginAsk records a user message and returns the turns that preceded it.
// Blank input is rejected.
func (s *Session) BeginAsk(text string) ([]explain.Turn, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]explain.Turn, 0, len(s.messages))
	for _, m := range s.messages {
		if m.Pending {
			continue
		}
		history = append(history, explain.Turn{Role: m.Role, Text: m.Text})
	}
	s.append(explain.RoleUser, text, false)
	s.inflight++
	return history, true
}

// Reply appends the answer to the last BeginAsk.
func (s *Session) Reply(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.append(explain.RoleAssistant, text, false)
	s.done()
}

func (s *Session) done() {
	if s.inflight > 0 {
		s.inflight--
	}
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

func (s *Session) Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Session) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = !s.open
	return s.open
}
