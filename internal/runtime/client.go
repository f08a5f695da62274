package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/quotegen/internal/logging"
	"github.com/muurk/quotegen/internal/version"
)

const (
	// DefaultAddress is where a locally started quotegen-runtime listens
	DefaultAddress = "127.0.0.1:8765"

	// DefaultTimeout is the HTTP request timeout for non-streaming calls
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 10 * time.Second

	// DefaultMaxTokens bounds the length of a generated quote
	DefaultMaxTokens = 64
)

// Client talks to a model runtime daemon over HTTP and websockets
type Client struct {
	// BaseURL is the runtime base URL (e.g., "http://127.0.0.1:8765")
	BaseURL string

	// HTTPClient is used for the request/response endpoints
	HTTPClient *http.Client

	// Dialer opens the download and generate streams
	Dialer *websocket.Dialer

	// MaxRetries is the maximum number of retry attempts for idempotent requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay caps exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff doubles the delay after each failed attempt
	UseExponentialBackoff bool

	// MaxTokens is sent with every generate request
	MaxTokens int
}

var _ Runtime = (*Client)(nil)

// NewClient creates a client for the runtime at address.
// address may be "host:port" or a full http(s) URL.
func NewClient(address string) (*Client, error) {
	baseURL, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	return &Client{
		BaseURL:               baseURL,
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		Dialer:                &websocket.Dialer{HandshakeTimeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
		MaxTokens:             DefaultMaxTokens,
	}, nil
}

// NormalizeAddress turns "host:port" or a URL into an http(s) base URL without a trailing slash
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		address = DefaultAddress
	}
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}

	u, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("invalid runtime address %q: %w", address, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid runtime address %q: scheme must be http or https", address)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid runtime address %q: missing host", address)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// Ping checks that the runtime is reachable
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Health(ctx)
	return err
}

// Health returns the runtime status, including the loaded model
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var health HealthResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+PathHealth, nil)
	if err != nil {
		return health, NewNetworkError("health", "failed to create health request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return health, c.withEndpoint(NewNetworkError("health", "runtime unreachable", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return health, c.withEndpoint(NewHTTPError("health", resp.StatusCode, "health check failed"))
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return health, NewParseError("health", "invalid health response", err)
	}
	return health, nil
}

// ListModels retrieves the model catalog, retrying transient failures
func (c *Client) ListModels(ctx context.Context) (models []ModelInfo, err error) {
	started := time.Now()
	defer func() { logging.LogRuntimeCall("list_models", "", started, err) }()

	err = c.withRetry(ctx, func() error {
		var attemptErr error
		models, attemptErr = c.listModelsAttempt(ctx)
		return attemptErr
	})
	if err != nil {
		return nil, c.withEndpoint(err)
	}
	return models, nil
}

func (c *Client) listModelsAttempt(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+PathModels, nil)
	if err != nil {
		return nil, NewNetworkError("list_models", "failed to create GET request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewNetworkError("list_models", "GET request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError("list_models", "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError("list_models", resp.StatusCode, errorBodyMessage(body))
	}

	var parsed ModelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, NewParseError("list_models", "failed to parse model list", err)
	}
	if parsed.Models == nil {
		parsed.Models = []ModelInfo{}
	}
	return parsed.Models, nil
}

// Load asks the runtime to make modelID the active model
func (c *Client) Load(ctx context.Context, modelID string) (loaded bool, err error) {
	started := time.Now()
	defer func() { logging.LogRuntimeCall("load", modelID, started, err) }()

	endpoint := c.BaseURL + modelPath(modelID, "load")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(nil))
	if err != nil {
		return false, NewNetworkError("load", "failed to create POST request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, c.withEndpoint(NewNetworkError("load", "POST request failed", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, c.withEndpoint(NewNetworkError("load", "failed to read response body", err))
	}

	if resp.StatusCode != http.StatusOK {
		return false, c.withEndpoint(NewHTTPError("load", resp.StatusCode, errorBodyMessage(body)))
	}

	var parsed LoadResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false, c.withEndpoint(NewParseError("load", "failed to parse load response", err))
	}
	if !parsed.Loaded && parsed.Error != "" {
		logging.Debug("Runtime declined to load model",
			zap.String("model", modelID),
			zap.String("reason", parsed.Error),
		)
	}
	return parsed.Loaded, nil
}

// Download streams download progress for modelID until the runtime reports completion
func (c *Client) Download(ctx context.Context, modelID string, progress func(float64)) (err error) {
	started := time.Now()
	defer func() { logging.LogRuntimeCall("download", modelID, started, err) }()

	conn, err := c.dial(ctx, "download", modelPath(modelID, "download"))
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		frame, err := c.readFrame(ctx, conn, "download")
		if err != nil {
			return err
		}

		switch frame.Type {
		case FrameProgress:
			if progress != nil {
				progress(ClampProgress(frame.Progress))
			}
		case FrameDone:
			return nil
		case FrameError:
			return c.withEndpoint(NewStreamError("download", frame.Error))
		default:
			logging.Debug("Ignoring unexpected download frame", zap.String("type", string(frame.Type)))
		}
	}
}

// GenerateStream sends prompt to the active model and delivers each token as it arrives
func (c *Client) GenerateStream(ctx context.Context, prompt string, token func(string)) (err error) {
	started := time.Now()
	requestID := uuid.NewString()
	defer func() { logging.LogRuntimeCall("generate", requestID, started, err) }()

	conn, err := c.dial(ctx, "generate", PathGenerate)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	request := Frame{
		Type:      FrameGenerate,
		RequestID: requestID,
		Prompt:    prompt,
		MaxTokens: c.MaxTokens,
	}
	if err := conn.WriteJSON(request); err != nil {
		if ctx.Err() != nil {
			return c.withEndpoint(NewNetworkError("generate", "", ctx.Err()))
		}
		return c.withEndpoint(NewNetworkError("generate", "failed to send generate request", err))
	}
	logging.LogStreamFrame("generate", "sent", string(FrameGenerate), len(prompt))

	for {
		frame, err := c.readFrame(ctx, conn, "generate")
		if err != nil {
			return err
		}
		if frame.RequestID != "" && frame.RequestID != requestID {
			logging.Debug("Dropping frame for another request",
				zap.String("request_id", frame.RequestID),
				zap.String("want", requestID),
			)
			continue
		}

		switch frame.Type {
		case FrameToken:
			if token != nil {
				token(frame.Text)
			}
		case FrameDone:
			return nil
		case FrameError:
			return c.withEndpoint(NewStreamError("generate", frame.Error))
		default:
			logging.Debug("Ignoring unexpected generate frame", zap.String("type", string(frame.Type)))
		}
	}
}

// dial opens a websocket stream to path on the runtime
func (c *Client) dial(ctx context.Context, op, path string) (*websocket.Conn, error) {
	wsURL, err := websocketURL(c.BaseURL, path)
	if err != nil {
		return nil, NewParseError(op, "invalid stream URL", err)
	}

	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())
	conn, resp, err := c.Dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			return nil, c.withEndpoint(NewHTTPError(op, resp.StatusCode, errorBodyMessage(body)))
		}
		return nil, c.withEndpoint(NewNetworkError(op, "failed to open stream", err))
	}
	return conn, nil
}

// readFrame reads and decodes one JSON frame, translating close and cancellation into runtime errors
func (c *Client) readFrame(ctx context.Context, conn *websocket.Conn, op string) (Frame, error) {
	var frame Frame
	_, data, err := conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return frame, c.withEndpoint(NewNetworkError(op, "", ctx.Err()))
		}
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return frame, c.withEndpoint(NewStreamError(op, "stream closed before completion"))
		}
		return frame, c.withEndpoint(NewNetworkError(op, "stream interrupted", err))
	}

	if err := json.Unmarshal(data, &frame); err != nil {
		return frame, c.withEndpoint(NewParseError(op, "malformed stream frame", err))
	}
	logging.LogStreamFrame(op, "received", string(frame.Type), len(data))
	return frame, nil
}

// withRetry runs attempt until it succeeds, fails permanently, or retries are exhausted
func (c *Client) withRetry(ctx context.Context, attempt func() error) error {
	var lastErr error
	currentDelay := c.RetryDelay

	for i := 0; i <= c.MaxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return NewNetworkError("retry", "", ctx.Err())
			case <-time.After(currentDelay):
			}

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		err := attempt()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) || ctx.Err() != nil {
			return err
		}
		logging.Debug("Retrying runtime call", zap.Int("attempt", i+1), zap.Error(err))
	}

	return lastErr
}

// withEndpoint records the runtime address on err for troubleshooting output
func (c *Client) withEndpoint(err error) error {
	var rtErr *Error
	if errors.As(err, &rtErr) && rtErr.Endpoint == "" {
		rtErr.Endpoint = c.BaseURL
	}
	return err
}

func modelPath(modelID, action string) string {
	return PathModels + "/" + url.PathEscape(modelID) + "/" + action
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL + path)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.String(), nil
}

// errorBodyMessage extracts {"error": "..."} from a response body, falling back to the raw text
func errorBodyMessage(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	return strings.TrimSpace(string(body))
}
