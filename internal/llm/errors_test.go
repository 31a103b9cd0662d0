package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/openai/openai-go/v3"
)

// apiError builds an openai.Error with enough of a request attached that
// formatting it does not blow up.
func apiError(status int) *openai.Error {
	return &openai.Error{
		StatusCode: status,
		Request: &http.Request{
			Method: http.MethodPost,
			URL:    &url.URL{Scheme: "https", Host: "api.openai.com", Path: "/v1/responses"},
		},
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindClient},
		{"status 401", apiError(401), KindAuth},
		{"status 403", apiError(403), KindAuth},
		{"status 429", apiError(429), KindRateLimit},
		{"status 500", apiError(500), KindServer},
		{"status 503", apiError(503), KindServer},
		{"status 400", apiError(400), KindClient},
		{"wrapped status", fmt.Errorf("call failed: %w", apiError(429)), KindRateLimit},
		{"deadline", context.DeadlineExceeded, KindServer},
		{"429 text", errors.New("429 Too Many Requests"), KindRateLimit},
		{"rate limit text", errors.New("rate limit exceeded"), KindRateLimit},
		{"401 text", errors.New("401 Unauthorized"), KindAuth},
		{"api key text", errors.New("incorrect api key provided"), KindAuth},
		{"timeout text", errors.New("request timeout"), KindServer},
		{"connection text", errors.New("connection refused"), KindServer},
		{"other", errors.New("something else entirely"), KindClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestKindRetryable(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindAuth, false},
		{KindRateLimit, true},
		{KindServer, true},
		{KindClient, false},
	}

	for _, tt := range tests {
		if got := tt.kind.Retryable(); got != tt.want {
			t.Errorf("%s.Retryable() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestIsAuthError(t *testing.T) {
	authErr := &SummarizationError{Kind: KindAuth, Chunk: 2, Err: errors.New("401")}
	if !IsAuthError(authErr) {
		t.Error("IsAuthError missed a direct auth error")
	}
	if !IsAuthError(fmt.Errorf("batch failed: %w", authErr)) {
		t.Error("IsAuthError missed a wrapped auth error")
	}
	if IsAuthError(&SummarizationError{Kind: KindServer, Err: errors.New("503")}) {
		t.Error("IsAuthError flagged a server error")
	}
	if IsAuthError(errors.New("plain")) {
		t.Error("IsAuthError flagged a plain error")
	}
}

func TestSummarizationErrorMessages(t *testing.T) {
	chunkErr := &SummarizationError{Kind: KindServer, Chunk: 3, Err: errors.New("boom")}
	if msg := chunkErr.Error(); msg == "" || !errors.Is(chunkErr, chunkErr.Err) {
		t.Errorf("chunk error broken: %q", msg)
	}

	reduceErr := &SummarizationError{Kind: KindServer, Chunk: -1, Err: errors.New("boom")}
	if reduceErr.Error() == chunkErr.Error() {
		t.Error("reduce error indistinguishable from chunk error")
	}
}
