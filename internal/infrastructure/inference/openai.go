package inference

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/logger"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/platformerrors"
)

const (
	eventBufferSize      = 100
	dataPrefix           = "data: "
	doneMarker           = "[DONE]"
	scannerInitialBuffer = 12 * 1024        // 12KB
	scannerMaxBuffer     = 10 * 1024 * 1024 // 10MB
)

// OpenAIGateway talks to any OpenAI-compatible chat completion backend. It is
// the adapter boundary: the backend's SSE framing is translated into the
// normalized StreamEvent sequence, and malformed frames are skipped rather
// than treated as fatal, since backends occasionally emit non-conforming
// keep-alive or control frames.
type OpenAIGateway struct {
	client  *resty.Client
	name    string
	baseURL string
}

var _ Gateway = (*OpenAIGateway)(nil)

// NewOpenAIGateway creates a gateway for one backend endpoint. Authentication
// headers are expected to be set on the client already.
func NewOpenAIGateway(client *resty.Client, name, baseURL string) *OpenAIGateway {
	return &OpenAIGateway{
		client:  client,
		name:    name,
		baseURL: normalizeBaseURL(baseURL),
	}
}

// Complete performs a blocking chat completion.
func (g *OpenAIGateway) Complete(ctx context.Context, messages []openai.ChatCompletionMessage, opts Options) (*Completion, error) {
	request := g.buildRequest(messages, opts, false)

	var respBody openai.ChatCompletionResponse
	resp, err := g.prepareRequest(ctx).
		SetBody(request).
		SetResult(&respBody).
		Post(g.endpoint("/chat/completions"))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeModelUnavailable, "model backend unreachable", err, "2e7b91c4-8f3a-4d6e-b5a0-1c9d4e7f2a83")
	}
	if resp.IsError() {
		return nil, g.errorFromResponse(ctx, resp, "completion request failed")
	}

	if len(respBody.Choices) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "backend returned no choices", nil, "6a1f3c8d-2b4e-4f7a-9c0d-8e5b2a6f4d91")
	}

	return &Completion{
		Text:    respBody.Choices[0].Message.Content,
		ModelID: respBody.Model,
		Usage:   respBody.Usage,
	}, nil
}

// StreamComplete opens a streaming completion and returns the normalized event
// channel. The channel is closed after the terminal Done or Error event, or
// when ctx is cancelled (cooperative cancellation: the backend stream is
// abandoned, not drained).
func (g *OpenAIGateway) StreamComplete(ctx context.Context, messages []openai.ChatCompletionMessage, opts Options) (<-chan StreamEvent, error) {
	request := g.buildRequest(messages, opts, true)

	req := g.prepareRequest(ctx).
		SetBody(request).
		SetDoNotParseResponse(true)
	if req.Header.Get("Accept-Encoding") == "" {
		req.SetHeader("Accept-Encoding", "identity")
	}

	resp, err := req.Post(g.endpoint("/chat/completions"))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeModelUnavailable, "model backend unreachable", err, "9c4d2e7f-1a8b-4c3d-8e5f-0a6b9c2d4e71")
	}
	if resp.IsError() {
		return nil, g.errorFromResponse(ctx, resp, "streaming request failed")
	}
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "streaming request failed: empty response body", nil, "b3e5f7a9-4c6d-4e8f-a1b2-3c4d5e6f7a80")
	}

	events := make(chan StreamEvent, eventBufferSize)
	go g.scanStream(ctx, resp.RawResponse.Body, events)
	return events, nil
}

// scanStream reads the backend's SSE body and forwards normalized events.
func (g *OpenAIGateway) scanStream(ctx context.Context, body io.ReadCloser, events chan<- StreamEvent) {
	log := logger.GetLogger()
	defer close(events)
	defer func() {
		if closeErr := body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("gateway", g.name).Msg("unable to close response body")
		}
	}()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, scannerInitialBuffer), scannerMaxBuffer)

	for scanner.Scan() {
		line := scanner.Text()

		data, found := strings.CutPrefix(line, dataPrefix)
		if !found {
			// blank keep-alive lines, comments, event names
			continue
		}

		if data == doneMarker {
			g.send(ctx, events, StreamEvent{Type: StreamEventDone})
			return
		}

		fragment, ok := parseChunk(data)
		if !ok {
			log.Debug().Str("gateway", g.name).Str("data", data).Msg("skipping malformed stream frame")
			continue
		}
		if fragment == "" {
			continue
		}

		if !g.send(ctx, events, StreamEvent{Type: StreamEventFragment, Text: fragment}) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			// cancelled by the caller, not a backend failure
			return
		}
		g.send(ctx, events, StreamEvent{
			Type: StreamEventError,
			Err:  platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeModelUnavailable, "stream read failed", err, "d7f9a1b3-5c7e-4f0a-b2c3-4d5e6f7a8b92"),
		})
		return
	}

	// stream ended without a [DONE] marker; treat as normal completion
	g.send(ctx, events, StreamEvent{Type: StreamEventDone})
}

func (g *OpenAIGateway) send(ctx context.Context, events chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// parseChunk extracts the delta text from one OpenAI-format stream chunk.
func parseChunk(data string) (string, bool) {
	var chunk struct {
		Choices []struct {
			Delta struct {
				Content string `json:"content"`
			} `json:"delta"`
		} `json:"choices"`
	}
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return "", false
	}

	var builder strings.Builder
	for _, choice := range chunk.Choices {
		builder.WriteString(choice.Delta.Content)
	}
	return builder.String(), true
}

func (g *OpenAIGateway) buildRequest(messages []openai.ChatCompletionMessage, opts Options, stream bool) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      stream,
	}
}

func (g *OpenAIGateway) prepareRequest(ctx context.Context) *resty.Request {
	return g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")
}

func (g *OpenAIGateway) endpoint(path string) string {
	if g.baseURL == "" {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return g.baseURL + path
	}
	return g.baseURL + "/" + path
}

// errorFromResponse maps backend HTTP failures onto the typed taxonomy:
// 429 -> RATE_LIMITED, other 4xx -> VALIDATION (not retryable),
// 5xx and everything else -> MODEL_UNAVAILABLE (retryable).
func (g *OpenAIGateway) errorFromResponse(ctx context.Context, resp *resty.Response, message string) error {
	status := resp.StatusCode()

	detail := ""
	if resp.RawResponse != nil && resp.RawResponse.Body != nil {
		defer resp.RawResponse.Body.Close()
		if body, err := io.ReadAll(resp.RawResponse.Body); err == nil {
			detail = strings.TrimSpace(string(body))
		}
	}
	if detail != "" {
		message = fmt.Sprintf("%s: %s", message, detail)
	}

	switch {
	case status == 429:
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeRateLimited, message, nil, "1f2a3b4c-5d6e-4f7a-8b9c-0d1e2f3a4b5c")
	case status >= 400 && status < 500:
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeValidation, message, nil, "3b4c5d6e-7f8a-4b9c-0d1e-2f3a4b5c6d7e")
	default:
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeModelUnavailable, message, nil, "5d6e7f8a-9b0c-4d1e-2f3a-4b5c6d7e8f90")
	}
}

func normalizeBaseURL(base string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/")
}
