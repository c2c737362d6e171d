// Package client 提供 CarLinkRent API 的 Go 客户端：
// 封装 {success, message} 响应协议、鉴权头与熔断，并在其上实现
// 车主库存管理视图（乐观更新 + 失败回滚）。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/CarLinkRent/CarLinkRent/internal/common/middleware"
)

// Car 车辆数据（与 API 的 json 字段对齐）。
type Car struct {
	ID              string  `json:"_id"`
	OwnerID         string  `json:"owner"`
	Brand           string  `json:"brand"`
	Model           string  `json:"model"`
	Category        string  `json:"category"`
	SeatingCapacity int     `json:"seating_capacity"`
	Transmission    string  `json:"transmission"`
	PricePerDay     float64 `json:"pricePerDay"`
	Image           string  `json:"image"`
	IsAvailable     bool    `json:"isAvailable"`
}

// APIError 服务端返回的业务失败（success=false），Message 为可展示文案。
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d message=%s", e.Status, e.Message)
}

// Client API 客户端。所有请求经过熔断器：连续失败后快速失败，
// 避免在服务端不可用时反复打点。
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	breaker *middleware.CircuitBreaker
}

// New 创建客户端。token 可以为空（只访问公开接口时）。
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: middleware.NewCircuitBreaker("carlinkrent-api", 5, 30*time.Second),
	}
}

// SetToken 更新鉴权 token（登录后调用）。
func (c *Client) SetToken(token string) {
	c.token = token
}

// envelope 与服务端 server.Envelope 对齐；message 延迟解码。
type envelope struct {
	Success bool            `json:"success"`
	Message json.RawMessage `json:"message"`
}

// do 发起请求并拆包。失败时优先透出服务端 message 文案。
func (c *Client) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("client not initialized")
	}

	var message json.RawMessage
	err := c.breaker.Call(ctx, func() error {
		var reader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("marshal request: %w", err)
			}
			reader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("request %s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}

		if !env.Success {
			msg := ""
			_ = json.Unmarshal(env.Message, &msg)
			return &APIError{Status: resp.StatusCode, Message: msg}
		}
		message = env.Message
		return nil
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

// OwnerCars 拉取调用者名下的车辆列表。
func (c *Client) OwnerCars(ctx context.Context) ([]Car, error) {
	message, err := c.do(ctx, http.MethodGet, "/api/owner/cars", nil)
	if err != nil {
		return nil, err
	}
	cars := make([]Car, 0)
	if err := json.Unmarshal(message, &cars); err != nil {
		return nil, fmt.Errorf("decode cars: %w", err)
	}
	return cars, nil
}

// AvailableCars 门户公开的可租车辆列表。
func (c *Client) AvailableCars(ctx context.Context) ([]Car, error) {
	message, err := c.do(ctx, http.MethodGet, "/api/cars", nil)
	if err != nil {
		return nil, err
	}
	cars := make([]Car, 0)
	if err := json.Unmarshal(message, &cars); err != nil {
		return nil, fmt.Errorf("decode cars: %w", err)
	}
	return cars, nil
}

// ToggleCar 翻转某辆车的可租状态。
// 服务端会返回更新后的记录，这里不消费：视图侧的乐观值已经是正确值。
func (c *Client) ToggleCar(ctx context.Context, carID string) error {
	_, err := c.do(ctx, http.MethodPut, "/api/owner/toggle-car/"+carID, nil)
	return err
}

// DeleteCar 删除某辆车。
func (c *Client) DeleteCar(ctx context.Context, carID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/owner/delete-car/"+carID, nil)
	return err
}

// LoginResult 登录结果。
type LoginResult struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// Login 登录并把 token 写回客户端。
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	message, err := c.do(ctx, http.MethodPost, "/api/user/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var res LoginResult
	if err := json.Unmarshal(message, &res); err != nil {
		return nil, fmt.Errorf("decode login result: %w", err)
	}
	c.SetToken(res.Token)
	return &res, nil
}
