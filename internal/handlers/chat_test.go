package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/threadstream-backend/internal/logger"
	"github.com/yungbote/threadstream-backend/internal/services"
)

type fakeChatService struct {
	threadID uuid.UUID
	beginErr error
	deltas   []string

	gotModel string
}

func (f *fakeChatService) BeginTurn(_ context.Context, _ string, _ []services.IncomingMessage) (uuid.UUID, error) {
	if f.beginErr != nil {
		return uuid.Nil, f.beginErr
	}
	return f.threadID, nil
}

func (f *fakeChatService) StreamReply(_ context.Context, _ uuid.UUID, _ []services.IncomingMessage, model string, onFragment func(string)) string {
	f.gotModel = model
	var full strings.Builder
	for _, d := range f.deltas {
		full.WriteString(d)
		if onFragment != nil {
			onFragment(d)
		}
	}
	return full.String()
}

func newChatRouter(t *testing.T, svc services.ChatService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	router := gin.New()
	router.POST("/api/chat", NewChatHandler(log, svc).Chat)
	return router
}

func sseFrames(t *testing.T, body string) []map[string]any {
	t.Helper()
	var frames []map[string]any
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var frame map[string]any
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &frame); err != nil {
			t.Fatalf("frame decode %q: %v", line, err)
		}
		frames = append(frames, frame)
	}
	return frames
}

func TestChatStreamFrameSequence(t *testing.T) {
	threadID := uuid.New()
	svc := &fakeChatService{threadID: threadID, deltas: []string{"Hel", "lo"}}
	router := newChatRouter(t, svc)

	payload := `{"messages":[{"role":"user","content":[{"type":"text","text":"hi"}]}],"model":"gpt-4o-mini"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content type: got=%q", got)
	}
	if svc.gotModel != "gpt-4o-mini" {
		t.Fatalf("model: want=%q got=%q", "gpt-4o-mini", svc.gotModel)
	}

	frames := sseFrames(t, rec.Body.String())
	if len(frames) != 3 {
		t.Fatalf("frames: want=3 got=%d (%v)", len(frames), frames)
	}
	if frames[0]["text"] != "Hel" || frames[1]["text"] != "lo" {
		t.Fatalf("text frames: got=%v", frames)
	}
	for i, frame := range frames {
		if frame["thread_id"] != threadID.String() {
			t.Fatalf("frame[%d] thread id: got=%v", i, frame["thread_id"])
		}
	}
	last := frames[len(frames)-1]
	if last["done"] != true {
		t.Fatalf("terminal frame: got=%v", last)
	}
}

func TestChatModelProviderFallback(t *testing.T) {
	svc := &fakeChatService{threadID: uuid.New()}
	router := newChatRouter(t, svc)

	payload := `{"messages":[{"role":"user","content":[{"type":"text","text":"hi"}]}],"model_provider":"claude-3-sonnet"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if svc.gotModel != "claude-3-sonnet" {
		t.Fatalf("model fallback: want=%q got=%q", "claude-3-sonnet", svc.gotModel)
	}
}

func TestChatEmptyMessagesShortCircuits(t *testing.T) {
	router := newChatRouter(t, &fakeChatService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"messages":[]}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["text"] != "No message received." {
		t.Fatalf("body: got=%v", resp)
	}
}

func TestChatBeginTurnFailureIsStructuredError(t *testing.T) {
	router := newChatRouter(t, &fakeChatService{beginErr: errors.New("db down")})

	payload := `{"messages":[{"role":"user","content":[{"type":"text","text":"hi"}]}]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", rec.Code)
	}
	var envelope ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != "chat_failed" {
		t.Fatalf("error code: got=%q", envelope.Error.Code)
	}
	if !strings.Contains(envelope.Error.Message, "db down") {
		t.Fatalf("error message: got=%q", envelope.Error.Message)
	}
}

func TestChatMalformedBody(t *testing.T) {
	router := newChatRouter(t, &fakeChatService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", rec.Code)
	}
}
