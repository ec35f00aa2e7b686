package llm

import (
	"context"
	"fmt"
	"os"
	"time"
)

// CallRecord captures one model call for observability.
type CallRecord struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// CallLogger persists model call records. Implemented by the document
// store's repo; logging failures never fail the call itself.
type CallLogger interface {
	LogModelCall(ctx context.Context, rec CallRecord) error
}

// loggingProvider is a decorator that records every model call.
type loggingProvider struct {
	inner  Provider
	logger CallLogger
}

// WithLogging wraps a Provider with call logging. A nil logger returns
// the provider unchanged.
func WithLogging(p Provider, logger CallLogger) Provider {
	if logger == nil {
		return p
	}
	return &loggingProvider{inner: p, logger: logger}
}

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	rec := CallRecord{
		Provider:  l.inner.ModelID(),
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		rec.Model = resp.Model
		rec.InputTokens = resp.Usage.InputTokens
		rec.OutputTokens = resp.Usage.OutputTokens
	}
	if err != nil {
		rec.ErrorMessage = err.Error()
	}

	if logErr := l.logger.LogModelCall(ctx, rec); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log model call: %v\n", logErr)
	}

	return resp, err
}

func (l *loggingProvider) ModelID() string {
	return l.inner.ModelID()
}
