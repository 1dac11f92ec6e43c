package litellm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/threadstream-backend/internal/logger"
	"github.com/yungbote/threadstream-backend/internal/utils"
)

// Generation parameters are fixed; callers only choose the model.
const (
	temperature     = 0.7
	maxOutputTokens = 2000

	chatCompletionsPath = "/v1/chat/completions"
	DefaultModel        = "gpt-4o"
)

// Message is one prior turn, already flattened to plain text.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client streams chat completions from an OpenAI-compatible gateway
// (LiteLLM in production). StreamChat relays each delta to onDelta in
// upstream order and returns the accumulated text.
type Client interface {
	StreamChat(ctx context.Context, model string, messages []Message, onDelta func(delta string)) (string, error)
}

type client struct {
	log     *logger.Logger
	baseURL string
	apiKey  string

	streamTimeout time.Duration
	httpClient    *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(utils.GetEnv("LITELLM_API_KEY", "", log))
	if apiKey == "" {
		return nil, fmt.Errorf("missing LITELLM_API_KEY")
	}

	baseURL := strings.TrimSpace(utils.GetEnv("LITELLM_BASE_URL", "https://api.openai.com", log))
	baseURL = strings.TrimRight(baseURL, "/")

	// An unresponsive upstream otherwise holds the turn open forever.
	streamTimeout := utils.GetEnvAsDuration("LITELLM_STREAM_TIMEOUT_SECONDS", 300*time.Second, log)

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &client{
		log:           log.With("client", "LiteLLMClient"),
		baseURL:       baseURL,
		apiKey:        apiKey,
		streamTimeout: streamTimeout,
		httpClient:    &http.Client{Transport: tr},
	}, nil
}

// NewClientWithHTTPClient is intended for tests; it avoids network access by
// using a custom RoundTripper.
func NewClientWithHTTPClient(log *logger.Logger, httpClient *http.Client) (Client, error) {
	c, err := NewClient(log)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.(*client).httpClient = httpClient
	}
	return c, nil
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

type chatCompletionStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content,omitempty"`
		} `json:"delta,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"choices"`
	Error any `json:"error,omitempty"`
}

func (c *client) StreamChat(ctx context.Context, model string, messages []Message, onDelta func(delta string)) (string, error) {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	chatMsgs := make([]Message, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m.Role) == "" {
			continue
		}
		chatMsgs = append(chatMsgs, m)
	}
	if len(chatMsgs) == 0 {
		return "", errors.New("no messages")
	}

	reqBody := chatCompletionRequest{
		Model:       model,
		Messages:    chatMsgs,
		Temperature: temperature,
		MaxTokens:   maxOutputTokens,
		Stream:      true,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return "", err
	}

	ctx2 := ctx
	var cancel context.CancelFunc
	if c.streamTimeout > 0 {
		ctx2, cancel = context.WithTimeout(ctx, c.streamTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx2, "POST", c.baseURL+chatCompletionsPath, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var full strings.Builder
	err = streamSSE(resp.Body, func(_ string, data string) error {
		if strings.TrimSpace(data) == "" {
			return nil
		}
		if strings.TrimSpace(data) == "[DONE]" {
			return nil
		}

		var chunk chatCompletionStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil
		}
		if chunk.Error != nil {
			b, _ := json.Marshal(chunk.Error)
			return fmt.Errorf("upstream stream error: %s", string(b))
		}

		for _, choice := range chunk.Choices {
			delta := choice.Delta.Content
			if delta == "" {
				delta = choice.Text
			}
			if delta == "" {
				continue
			}
			full.WriteString(delta)
			if onDelta != nil {
				onDelta(delta)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return full.String(), nil
}
