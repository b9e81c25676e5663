package gameapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/bnema/hamster-clicker-cli/internal/adapters/transport"
	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/bnema/hamster-clicker-cli/internal/ports"
)

const (
	authPath           = "/auth/auth-by-telegram-webapp"
	syncPath           = "/clicker/sync"
	tapPath            = "/clicker/tap"
	upgradesForBuyPath = "/clicker/upgrades-for-buy"
	buyUpgradePath     = "/clicker/buy-upgrade"
	listTasksPath      = "/clicker/list-tasks"
	checkTaskPath      = "/clicker/check-task"

	maxResponseBytes = 4 << 20
)

// Client talks to the game backend on behalf of one account.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	// Retry applies to the read-only calls: sync, list-tasks and upgrades-for-buy.
	Retry  transport.RetryConfig
	Clock  ports.Clock
	Logger *slog.Logger

	mu    sync.RWMutex
	token string
}

var _ ports.GameAPI = (*Client)(nil)

func NewClient(baseURL string, httpClient *http.Client, requestTimeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		BaseURL:        baseURL,
		HTTPClient:     httpClient,
		RequestTimeout: requestTimeout,
		Retry:          transport.DefaultRetry,
		Clock:          ports.SystemClock{},
		Logger:         logger,
	}
}

func (c *Client) AuthByWebApp(ctx context.Context, initData string) (string, error) {
	var body authRequest
	body.InitDataRaw = initData

	data, err := c.post(ctx, authPath, body, transport.NoRetry)
	if err != nil {
		return "", err
	}

	var resp authResponse
	if err := c.decode(authPath, data, &resp); err != nil {
		return "", err
	}
	if resp.AuthToken == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrMissingAuthToken, truncate(data))
	}

	c.mu.Lock()
	c.token = resp.AuthToken
	c.mu.Unlock()

	return resp.AuthToken, nil
}

func (c *Client) Sync(ctx context.Context) (domain.ClickerUser, error) {
	data, err := c.post(ctx, syncPath, timestampRequest{Timestamp: c.now()}, c.Retry)
	if err != nil {
		return domain.ClickerUser{}, err
	}

	return c.clickerUser(syncPath, data)
}

func (c *Client) Tap(ctx context.Context, availableTaps, count int) (domain.ClickerUser, error) {
	body := tapRequest{Count: count, AvailableTaps: availableTaps, Timestamp: c.now()}

	data, err := c.post(ctx, tapPath, body, transport.NoRetry)
	if err != nil {
		return domain.ClickerUser{}, err
	}

	return c.clickerUser(tapPath, data)
}

func (c *Client) UpgradesForBuy(ctx context.Context) ([]domain.Upgrade, error) {
	data, err := c.post(ctx, upgradesForBuyPath, nil, c.Retry)
	if err != nil {
		return nil, err
	}

	var resp upgradesResponse
	if err := c.decode(upgradesForBuyPath, data, &resp); err != nil {
		return nil, err
	}
	if resp.UpgradesForBuy == nil {
		return nil, fmt.Errorf("%w: %s has no upgradesForBuy: %s", domain.ErrMalformedResponse, upgradesForBuyPath, truncate(data))
	}

	return upgradesToDomain(resp.UpgradesForBuy), nil
}

// BuyUpgrade reports a refused purchase through BuyResult rather than an error.
func (c *Client) BuyUpgrade(ctx context.Context, upgradeID string) (domain.BuyResult, error) {
	body := buyUpgradeRequest{UpgradeID: upgradeID, Timestamp: c.now()}

	data, err := c.post(ctx, buyUpgradePath, body, transport.NoRetry)
	if err != nil {
		return domain.BuyResult{}, err
	}

	var resp clickerEnvelope
	if err := c.decode(buyUpgradePath, data, &resp); err != nil {
		return domain.BuyResult{}, err
	}

	result := domain.BuyResult{
		Upgrades: upgradesToDomain(resp.UpgradesForBuy),
		Raw:      truncate(data),
	}
	if user := resp.user(); user != nil {
		converted := user.toDomain()
		result.User = &converted
	}

	return result, nil
}

func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	data, err := c.post(ctx, listTasksPath, nil, c.Retry)
	if err != nil {
		return nil, err
	}

	var resp tasksResponse
	if err := c.decode(listTasksPath, data, &resp); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		return nil, fmt.Errorf("%w: %s has no tasks: %s", domain.ErrMalformedResponse, listTasksPath, truncate(data))
	}

	tasks := make([]domain.Task, 0, len(resp.Tasks))
	for _, task := range resp.Tasks {
		tasks = append(tasks, task.toDomain())
	}
	return tasks, nil
}

func (c *Client) CheckTask(ctx context.Context, taskID string) (domain.TaskCheckResult, error) {
	data, err := c.post(ctx, checkTaskPath, checkTaskRequest{TaskID: taskID}, transport.NoRetry)
	if err != nil {
		return domain.TaskCheckResult{}, err
	}

	var resp clickerEnvelope
	if err := c.decode(checkTaskPath, data, &resp); err != nil {
		return domain.TaskCheckResult{}, err
	}
	if resp.Task == nil {
		return domain.TaskCheckResult{}, fmt.Errorf("%w: %s has no task: %s", domain.ErrMalformedResponse, checkTaskPath, errorDetail(resp, data))
	}

	result := domain.TaskCheckResult{Task: resp.Task.toDomain()}
	if user := resp.user(); user != nil {
		converted := user.toDomain()
		result.User = &converted
	}
	return result, nil
}

func (c *Client) clickerUser(path string, data []byte) (domain.ClickerUser, error) {
	var resp clickerEnvelope
	if err := c.decode(path, data, &resp); err != nil {
		return domain.ClickerUser{}, err
	}

	user := resp.user()
	if user == nil {
		return domain.ClickerUser{}, fmt.Errorf("%w: %s: %s", domain.ErrNoClickerUser, path, errorDetail(resp, data))
	}
	return user.toDomain(), nil
}

// decode logs unparseable bodies and reports them as ErrMalformedResponse.
func (c *Client) decode(path string, data []byte, target any) error {
	if err := json.Unmarshal(data, target); err != nil {
		c.logger().Error("failed to load response", "path", path, "response", truncate(data), "error", err)
		return fmt.Errorf("%w: %s: %v", domain.ErrMalformedResponse, path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, retry transport.RetryConfig) ([]byte, error) {
	endpoint, err := buildAPIURL(c.BaseURL, path)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", path, err)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	resp, err := transport.Do(requestCtx, c.httpClient(), retry, c.logger(), func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		c.setHeaders(req)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		c.logger().Debug("game api returned error status", "path", path, "status", resp.StatusCode)
	}

	return data, nil
}

func (c *Client) setHeaders(req *http.Request) {
	for key, value := range fingerprintHeaders {
		req.Header.Set(key, value)
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) now() int64 {
	if c.Clock == nil {
		return time.Now().Unix()
	}
	return c.Clock.Now().Unix()
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = domain.DefaultRequestTimeout
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func errorDetail(resp clickerEnvelope, data []byte) string {
	if resp.ErrorCode == "" {
		return truncate(data)
	}
	if resp.ErrorMessage != "" {
		return resp.ErrorCode + ": " + resp.ErrorMessage
	}
	return resp.ErrorCode
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}
