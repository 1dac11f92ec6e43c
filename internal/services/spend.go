package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/threadstream-backend/internal/logger"
	"github.com/yungbote/threadstream-backend/internal/utils"
)

const spendReportPath = "/global/spend/report"

// UpstreamError carries the billing API's own status and body so handlers
// can surface them verbatim.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("spend api http %d: %s", e.StatusCode, e.Body)
}

// SpendService forwards date-range usage queries to the completion
// gateway's billing API and returns its JSON response untouched.
type SpendService interface {
	GetSpend(ctx context.Context, startDate, endDate string) ([]byte, error)
}

type spendService struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewSpendService(baseLog *logger.Logger) (SpendService, error) {
	serviceLog := baseLog.With("service", "SpendService")

	apiKey := strings.TrimSpace(utils.GetEnv("LITELLM_API_KEY", "", baseLog))
	if apiKey == "" {
		return nil, fmt.Errorf("missing LITELLM_API_KEY")
	}
	baseURL := strings.TrimSpace(utils.GetEnv("LITELLM_BASE_URL", "https://api.openai.com", baseLog))
	baseURL = strings.TrimRight(baseURL, "/")

	return &spendService{
		log:        serviceLog,
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// NewSpendServiceWithHTTPClient is intended for tests.
func NewSpendServiceWithHTTPClient(baseLog *logger.Logger, httpClient *http.Client) (SpendService, error) {
	s, err := NewSpendService(baseLog)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		s.(*spendService).httpClient = httpClient
	}
	return s, nil
}

func (ss *spendService) GetSpend(ctx context.Context, startDate, endDate string) ([]byte, error) {
	query := url.Values{}
	if strings.TrimSpace(startDate) != "" {
		query.Set("start_date", strings.TrimSpace(startDate))
	}
	if strings.TrimSpace(endDate) != "" {
		query.Set("end_date", strings.TrimSpace(endDate))
	}

	reqURL := ss.baseURL + spendReportPath
	if encoded := query.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+ss.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ss.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}
