package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/threadstream-backend/internal/logger"
	"github.com/yungbote/threadstream-backend/internal/services"
)

type fakeSpendService struct {
	body []byte
	err  error

	gotStart string
	gotEnd   string
}

func (f *fakeSpendService) GetSpend(_ context.Context, startDate, endDate string) ([]byte, error) {
	f.gotStart = startDate
	f.gotEnd = endDate
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

func newSpendRouter(t *testing.T, svc services.SpendService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	router := gin.New()
	router.GET("/api/spend", NewSpendHandler(log, svc).GetSpend)
	return router
}

func TestGetSpendPassesThrough(t *testing.T) {
	svc := &fakeSpendService{body: []byte(`[{"spend":0.5}]`)}
	router := newSpendRouter(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/spend?start_date=2026-08-01&end_date=2026-08-28", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	if rec.Body.String() != `[{"spend":0.5}]` {
		t.Fatalf("body: got=%q", rec.Body.String())
	}
	if svc.gotStart != "2026-08-01" || svc.gotEnd != "2026-08-28" {
		t.Fatalf("dates: start=%q end=%q", svc.gotStart, svc.gotEnd)
	}
}

func TestGetSpendUpstreamErrorIs502(t *testing.T) {
	svc := &fakeSpendService{err: &services.UpstreamError{StatusCode: 403, Body: "no access"}}
	router := newSpendRouter(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/spend", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status: want=502 got=%d", rec.Code)
	}
}
