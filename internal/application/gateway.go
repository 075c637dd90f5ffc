package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lockfind/lockfind/internal/domain/model"
	"github.com/lockfind/lockfind/internal/domain/port/driven"
	"github.com/lockfind/lockfind/internal/vaultcrypto"
)

// APIKeyHeader is the request header carrying the raw credential. The
// lookup is case-insensitive.
const APIKeyHeader = "X-API-Key"

// DefaultPassword is substituted when an encrypt request carries no
// password.
const DefaultPassword = "default-api-password"

const (
	maxPlaintextBytes = 1_000_000
	minPasswordLen    = 8
)

// Request is one parsed inbound API request. How it arrived is the
// transport adapter's concern, not this package's.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    json.RawMessage
}

// Response is the uniform envelope every request receives, success or
// failure. HTTPStatus carries the status code for transports and is not
// part of the wire body.
type Response struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`

	HTTPStatus int `json:"-"`
}

// EncryptRequest is the parsed body of the encrypt route.
type EncryptRequest struct {
	Text     string `json:"text"`
	Password string `json:"password,omitempty"`
}

// EncryptResponse is the success payload of the encrypt route.
type EncryptResponse struct {
	Ciphertext string `json:"ciphertext"`
	Algorithm  string `json:"algorithm"`
}

// DecryptRequest is the parsed body of the decrypt route.
type DecryptRequest struct {
	Ciphertext string `json:"ciphertext"`
	Password   string `json:"password"`
}

// DecryptResponse is the success payload of the decrypt route.
type DecryptResponse struct {
	Plaintext string `json:"plaintext"`
}

// HealthResponse is the success payload of the health route. Uptime is
// milliseconds since the gateway was constructed.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  int64  `json:"uptime"`
}

// GatewayConfig is the externally supplied configuration the gateway
// consumes.
type GatewayConfig struct {
	RateWindow      time.Duration
	RateMax         int
	LogRequests     bool
	DefaultPassword string
	Version         string
}

// route is the closed set of dispatch targets. resolveRoute returns
// routeUnknown for anything outside the fixed table.
type route int

const (
	routeUnknown route = iota
	routeSearchRegex
	routeSearchDirect
	routeEncrypt
	routeDecrypt
	routeHealth
)

// Gateway is the single entry point for API requests. Each request runs
// the linear pipeline authenticate, rate limit, route, envelope, log; a
// stage that fails stops the pipeline before any later side effect.
type Gateway struct {
	cfg     GatewayConfig
	keys    *KeyManager
	limiter *RateLimiter
	search  *SearchService
	log     driven.RequestLogStore
	logger  *slog.Logger
	now     func() time.Time
	started time.Time
}

// NewGateway assembles a Gateway. Zero config fields fall back to the
// built-in defaults (60s window, 100 requests, default encryption
// password).
func NewGateway(
	cfg GatewayConfig,
	keys *KeyManager,
	limiter *RateLimiter,
	search *SearchService,
	logStore driven.RequestLogStore,
	logger *slog.Logger,
) *Gateway {
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = time.Minute
	}
	if cfg.RateMax <= 0 {
		cfg.RateMax = 100
	}
	if cfg.DefaultPassword == "" {
		cfg.DefaultPassword = DefaultPassword
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	g := &Gateway{
		cfg:     cfg,
		keys:    keys,
		limiter: limiter,
		search:  search,
		log:     logStore,
		logger:  logger,
		now:     time.Now,
	}
	g.started = g.now()
	return g
}

// Keys exposes the key manager for administrative collaborators.
func (g *Gateway) Keys() *KeyManager { return g.keys }

// Handle runs one request through the dispatch pipeline and always returns
// exactly one envelope.
func (g *Gateway) Handle(ctx context.Context, req Request) Response {
	start := g.now()

	data, keyID, err := g.dispatch(ctx, req)
	if keyID == "" {
		keyID = model.UnknownKeyID
	}

	status := 200
	errMsg := ""
	if err != nil {
		status = model.StatusOf(err)
		errMsg = err.Error()
	}

	g.logRequest(ctx, req, keyID, status, g.now().Sub(start), errMsg)

	if err != nil {
		return Response{
			Success:    false,
			Error:      errMsg,
			Timestamp:  g.now().UnixMilli(),
			HTTPStatus: status,
		}
	}
	return Response{
		Success:    true,
		Data:       data,
		Timestamp:  g.now().UnixMilli(),
		HTTPStatus: status,
	}
}

// dispatch authenticates and rate-limits the request, then routes it. The
// returned key ID is empty until a credential resolves.
func (g *Gateway) dispatch(ctx context.Context, req Request) (any, string, error) {
	raw := headerValue(req.Headers, APIKeyHeader)
	if raw == "" {
		return nil, "", model.NewAPIError(model.ErrUnauthorized, "Missing API key", 401)
	}

	key, err := g.keys.Validate(ctx, raw)
	if err != nil {
		return nil, "", err
	}
	if key == nil {
		return nil, "", model.NewAPIError(model.ErrUnauthorized, "Invalid API key", 401)
	}

	if !g.limiter.Admit(key.ID, g.now(), g.cfg.RateWindow, g.cfg.RateMax) {
		return nil, key.ID, model.NewAPIError(model.ErrRateLimitExceeded, "Rate limit exceeded", 429)
	}

	data, err := g.routeRequest(ctx, req)
	return data, key.ID, err
}

// routeRequest matches the request against the fixed route table and runs
// the handler.
func (g *Gateway) routeRequest(ctx context.Context, req Request) (any, error) {
	switch resolveRoute(req.Method, req.Path) {
	case routeSearchRegex:
		return g.handleSearch(ctx, req.Body, true)
	case routeSearchDirect:
		return g.handleSearch(ctx, req.Body, false)
	case routeEncrypt:
		return g.handleEncrypt(req.Body)
	case routeDecrypt:
		return g.handleDecrypt(req.Body)
	case routeHealth:
		return g.handleHealth(), nil
	default:
		return nil, model.NewAPIError(model.ErrNotFound,
			fmt.Sprintf("Route not found: %s %s", req.Method, req.Path), 404)
	}
}

// resolveRoute maps (method, path) onto the closed route set.
func resolveRoute(method, path string) route {
	switch {
	case method == "POST" && path == "/api/search/regex":
		return routeSearchRegex
	case method == "POST" && path == "/api/search/direct":
		return routeSearchDirect
	case method == "POST" && path == "/api/encrypt":
		return routeEncrypt
	case method == "POST" && path == "/api/decrypt":
		return routeDecrypt
	case method == "GET" && path == "/api/health":
		return routeHealth
	default:
		return routeUnknown
	}
}

func (g *Gateway) handleSearch(ctx context.Context, body json.RawMessage, regex bool) (any, error) {
	var req SearchRequest
	if err := decodeBody(body, &req); err != nil {
		return nil, err
	}

	if regex {
		return g.search.Regex(ctx, req)
	}
	return g.search.Direct(ctx, req)
}

func (g *Gateway) handleEncrypt(body json.RawMessage) (any, error) {
	var req EncryptRequest
	if err := decodeBody(body, &req); err != nil {
		return nil, err
	}

	if req.Text == "" {
		return nil, model.NewAPIError(model.ErrInvalidRequest,
			"Text is required and must be a string", 400)
	}
	if len(req.Text) > maxPlaintextBytes {
		return nil, model.NewAPIError(model.ErrInvalidRequest,
			"Text too large (max 1MB)", 400)
	}

	password := req.Password
	if password == "" {
		password = g.cfg.DefaultPassword
	}
	if len(password) < minPasswordLen {
		return nil, model.NewAPIError(model.ErrInvalidRequest,
			"Password must be at least 8 characters", 400)
	}

	ciphertext, err := vaultcrypto.Encrypt(req.Text, password)
	if err != nil {
		return nil, model.NewAPIError(model.ErrEncryptionFailed,
			fmt.Sprintf("Encryption failed: %v", err), 500)
	}

	return EncryptResponse{Ciphertext: ciphertext, Algorithm: vaultcrypto.Algorithm}, nil
}

func (g *Gateway) handleDecrypt(body json.RawMessage) (any, error) {
	var req DecryptRequest
	if err := decodeBody(body, &req); err != nil {
		return nil, err
	}

	if req.Ciphertext == "" {
		return nil, model.NewAPIError(model.ErrInvalidRequest,
			"Ciphertext is required and must be a string", 400)
	}
	if req.Password == "" {
		return nil, model.NewAPIError(model.ErrInvalidRequest,
			"Password is required", 400)
	}
	if len(req.Password) < minPasswordLen {
		return nil, model.NewAPIError(model.ErrInvalidRequest,
			"Password must be at least 8 characters", 400)
	}

	plaintext, err := vaultcrypto.Decrypt(req.Ciphertext, req.Password)
	if err != nil {
		// One generic message for every failure mode; no oracle between a
		// wrong password and corrupted data.
		return nil, model.NewAPIError(model.ErrDecryptionFailed,
			"Decryption failed: invalid password or corrupted data", 400)
	}

	return DecryptResponse{Plaintext: plaintext}, nil
}

func (g *Gateway) handleHealth() HealthResponse {
	return HealthResponse{
		Status:  "ok",
		Version: g.cfg.Version,
		Uptime:  g.now().Sub(g.started).Milliseconds(),
	}
}

// RecentLogs returns up to limit of the most recent request log entries,
// newest last.
func (g *Gateway) RecentLogs(ctx context.Context, limit int) ([]model.RequestLogEntry, error) {
	return g.log.Recent(ctx, limit)
}

// ClearLogs empties the request log.
func (g *Gateway) ClearLogs(ctx context.Context) error {
	return g.log.Clear(ctx)
}

// logRequest records the dispatch outcome when request logging is enabled.
// The response envelope is returned to the caller regardless.
func (g *Gateway) logRequest(ctx context.Context, req Request, keyID string, status int, duration time.Duration, errMsg string) {
	if !g.cfg.LogRequests {
		return
	}

	entry := model.RequestLogEntry{
		ID:         "log_" + uuid.NewString(),
		Timestamp:  g.now(),
		Method:     req.Method,
		Path:       req.Path,
		KeyID:      keyID,
		StatusCode: status,
		Duration:   duration,
		Error:      errMsg,
	}
	if err := g.log.Append(ctx, entry); err != nil {
		g.logger.Error("append request log", "error", err)
	}

	g.logger.Debug("api request",
		"method", req.Method,
		"path", req.Path,
		"key_id", keyID,
		"status", status,
		"duration", duration.Round(time.Microsecond),
	)
}

// decodeBody parses a JSON request body. An absent body decodes as the
// zero value so field validation produces the specific error.
func decodeBody(body json.RawMessage, v any) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return model.NewAPIError(model.ErrInvalidRequest, "Invalid request body", 400)
	}
	return nil
}

// headerValue looks up name in headers case-insensitively.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
