package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/openai/openai-go/v3"
)

// Kind is the status class of a summarization failure. The retry policy
// keys on it: rate limits and server errors are transient, auth and client
// errors are not.
type Kind int

const (
	// KindAuth means the credentials are wrong for every request: fatal for
	// the whole batch.
	KindAuth Kind = iota
	// KindRateLimit is a 429: retryable with backoff.
	KindRateLimit
	// KindServer is a 5xx-class or transport failure: retryable with backoff.
	KindServer
	// KindClient is any other 4xx (e.g. content filtered): fatal for the
	// document, but the batch continues.
	KindClient
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindServer:
		return "server"
	case KindClient:
		return "client"
	default:
		return "unknown"
	}
}

// Retryable reports whether a failure of this kind is worth retrying.
func (k Kind) Retryable() bool {
	return k == KindRateLimit || k == KindServer
}

// SummarizationError tags a failed summarization call with its status
// class and, for map-phase failures, the chunk that failed.
type SummarizationError struct {
	Kind  Kind
	Chunk int // chunk sequence number, -1 for the reduce call
	Err   error
}

func (e *SummarizationError) Error() string {
	if e.Chunk >= 0 {
		return fmt.Sprintf("summarization failed (%s) on chunk %d: %v", e.Kind, e.Chunk, e.Err)
	}
	return fmt.Sprintf("summarization failed (%s): %v", e.Kind, e.Err)
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err carries a KindAuth summarization failure.
func IsAuthError(err error) bool {
	var sumErr *SummarizationError
	return errors.As(err, &sumErr) && sumErr.Kind == KindAuth
}

// ClassifyError determines the status class of an API call failure. HTTP
// status codes from the OpenAI client are authoritative; transport errors
// without a status fall back to substring matching, with timeouts treated
// as retryable server failures.
func ClassifyError(err error) Kind {
	if err == nil {
		return KindClient
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
			return KindAuth
		case apiErr.StatusCode == 429:
			return KindRateLimit
		case apiErr.StatusCode >= 500:
			return KindServer
		default:
			return KindClient
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindServer
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindServer
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests"):
		return KindRateLimit
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") || strings.Contains(msg, "api key") || strings.Contains(msg, "authentication") || strings.Contains(msg, "unauthorized"):
		return KindAuth
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "connection") || strings.Contains(msg, "eof") || strings.Contains(msg, "unavailable"):
		return KindServer
	default:
		return KindClient
	}
}
