package jobqueue

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/match"
	"github.com/riskibarqy/fantasy-matchsim/internal/platform/logging"
	"github.com/riskibarqy/fantasy-matchsim/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultResultPath = "/v1/match-results"

// errUpstream marks publish failures that should count against the breaker.
var errUpstream = crerr.New("qstash upstream failure")

type QStashPublisherConfig struct {
	BaseURL       string
	Token         string
	TargetBaseURL string
	ResultPath    string
	Retries       int
	Timeout       time.Duration
}

// QStashPublisher hands finalized match results to QStash, which delivers them
// to the consuming fantasy service with its own retry schedule.
type QStashPublisher struct {
	client        *http.Client
	baseURL       string
	token         string
	targetBaseURL string
	resultPath    string
	retries       int
	breaker       *resilience.CircuitBreaker
	logger        *logging.Logger
}

func NewQStashPublisher(cfg QStashPublisherConfig, breaker *resilience.CircuitBreaker, logger *logging.Logger) (*QStashPublisher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid QSTASH_BASE_URL: %w", err)
	}
	targetBaseURL, err := validateHTTPBaseURL(cfg.TargetBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid QSTASH_TARGET_BASE_URL: %w", err)
	}
	resultPath := "/" + strings.TrimLeft(strings.TrimSpace(cfg.ResultPath), "/")
	if resultPath == "/" {
		resultPath = defaultResultPath
	}

	return &QStashPublisher{
		client:        &http.Client{Timeout: timeout},
		baseURL:       baseURL,
		token:         strings.TrimSpace(cfg.Token),
		targetBaseURL: targetBaseURL,
		resultPath:    resultPath,
		retries:       cfg.Retries,
		breaker:       breaker,
		logger:        logger,
	}, nil
}

// PublishResult enqueues result once per match; QStash drops repeats by deduplication id.
func (p *QStashPublisher) PublishResult(ctx context.Context, result match.Result) error {
	return p.Enqueue(ctx, p.resultPath, resultMessageFromDomain(result), "match-result-"+result.State.ID)
}

func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, deduplicationID string) error {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return fmt.Errorf("job path is required")
	}
	if payload == nil {
		payload = map[string]any{}
	}

	body, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal job payload: %w", err)
	}

	targetURL := p.targetBaseURL + path
	publishURL := p.baseURL + "/v2/publish/" + targetURL

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", targetURL),
			attribute.String("qstash.deduplication_id", deduplicationID),
			attribute.Int("qstash.body_bytes", len(body)),
		)
	}

	err = p.breaker.Do(ctx, func(ctx context.Context) error {
		return p.send(ctx, publishURL, body, deduplicationID)
	}, isUpstreamFailure)
	if err != nil {
		return fmt.Errorf("publish qstash job target_url=%s: %w", targetURL, err)
	}

	p.logger.InfoContext(ctx, "qstash job published", "path", path, "deduplication_id", deduplicationID)
	return nil
}

func (p *QStashPublisher) send(ctx context.Context, publishURL string, body []byte, deduplicationID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create qstash request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Upstash-Method", http.MethodPost)
	if p.retries > 0 {
		req.Header.Set("Upstash-Retries", strconv.Itoa(p.retries))
	}
	if id := strings.TrimSpace(deduplicationID); id != "" {
		req.Header.Set("Upstash-Deduplication-Id", id)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return crerr.Mark(err, errUpstream)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	statusErr := fmt.Errorf("qstash status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return crerr.Mark(statusErr, errUpstream)
	}
	return statusErr
}

func isUpstreamFailure(err error) bool {
	return crerr.Is(err, errUpstream)
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", fmt.Errorf("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", candidate, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", fmt.Errorf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}
