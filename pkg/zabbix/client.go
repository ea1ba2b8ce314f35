package zabbix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"ticketPlatform/pkg/metrics"

	"github.com/bytedance/sonic"
	"github.com/zeromicro/go-zero/core/logc"
)

const (
	contentType    = "application/json-rpc"
	defaultTimeout = 15 * time.Second
)

var apiSuffix = regexp.MustCompile(`api_jsonrpc\.php$`)

// ClientConfig Remote Client 配置
type ClientConfig struct {
	Timeout    time.Duration // 单次调用超时（默认：15s）
	HTTPClient *http.Client  // 可选, 测试时注入
}

// Client 面向远端监控服务 JSON-RPC 接口的客户端, 无状态, 可并发使用
type Client struct {
	http   *http.Client
	config ClientConfig
}

type request struct {
	Jsonrpc string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	Id      int         `json:"id"`
	Auth    string      `json:"auth,omitempty"`
}

type responseError struct {
	Code    int             `json:"code"`
	Message *string         `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func NewClient(config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	// 注入的 http.Client 保持调用方的设置, 超时由 request 的 context 控制
	hc := config.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		http:   hc,
		config: config,
	}
}

// HTTPClient 暴露底层 http.Client, 便于挂载 mock transport
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Call 鉴权调用: 先用 Bearer 头, 若远端返回 "not authorized" 且 token 非空, 用 payload 中的 auth 字段重试一次
func (c *Client) Call(ctx context.Context, url, token, method string, params interface{}, result interface{}) error {
	raw, err := c.request(ctx, url, token, method, params, true)
	if err != nil {
		if token == "" || !IsNotAuthorized(err) {
			return err
		}

		c.debug(ctx, fmt.Sprintf("Retry with legacy auth url=%s method=%s", url, method))
		raw, err = c.request(ctx, url, token, method, params, false)
		if err != nil {
			return err
		}
	}

	return decodeResult(url, method, raw, result)
}

// CallNoAuth 无凭据调用, 仅用于版本探测
func (c *Client) CallNoAuth(ctx context.Context, url, method string, params interface{}, result interface{}) error {
	raw, err := c.request(ctx, url, "", method, params, true)
	if err != nil {
		return err
	}

	return decodeResult(url, method, raw, result)
}

// Version 调用 apiinfo.version, 结果必须是非空字符串
func (c *Client) Version(ctx context.Context, url string) (string, error) {
	var v interface{}
	if err := c.CallNoAuth(ctx, url, "apiinfo.version", []interface{}{}, &v); err != nil {
		return "", err
	}

	s, ok := v.(string)
	if !ok || s == "" {
		return "", ErrInvalidVersion
	}

	return s, nil
}

func (c *Client) request(ctx context.Context, url, token, method string, params interface{}, useBearer bool) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if params == nil {
		params = []interface{}{}
	}

	payload := request{
		Jsonrpc: "2.0",
		Method:  method,
		Params:  params,
		Id:      1,
	}
	if token != "" && !useBearer {
		payload.Auth = token
	}

	scheme := "bearer"
	if !useBearer {
		scheme = "legacy"
	}

	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		metrics.RemoteCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		metrics.RemoteCalls.WithLabelValues(method, "transport").Inc()
		c.debug(ctx, fmt.Sprintf("request error url=%s method=%s auth=%s: %s", url, method, scheme, err.Error()))
		return nil, &TransportError{URL: url, Method: method, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	if token != "" && useBearer {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RemoteCalls.WithLabelValues(method, "transport").Inc()
		c.debug(ctx, fmt.Sprintf("http error url=%s method=%s auth=%s: %s", url, method, scheme, err.Error()))
		return nil, &TransportError{URL: url, Method: method, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RemoteCalls.WithLabelValues(method, "transport").Inc()
		c.debug(ctx, fmt.Sprintf("read error url=%s method=%s auth=%s: %s", url, method, scheme, err.Error()))
		return nil, &TransportError{URL: url, Method: method, Err: err}
	}

	var envelope map[string]json.RawMessage
	if err := sonic.Unmarshal(data, &envelope); err != nil || envelope == nil {
		metrics.RemoteCalls.WithLabelValues(method, "protocol").Inc()
		c.debug(ctx, fmt.Sprintf("invalid JSON url=%s method=%s auth=%s response=%s", url, method, scheme, truncate(string(data), 200)))
		return nil, &ProtocolError{URL: url, Method: method, Body: truncate(string(data), 200)}
	}

	if rawErr, ok := envelope["error"]; ok {
		message := errorMessage(rawErr)
		metrics.RemoteCalls.WithLabelValues(method, "api_error").Inc()
		c.debug(ctx, fmt.Sprintf("error url=%s method=%s auth=%s message=%s", url, method, scheme, message))

		var e responseError
		_ = sonic.Unmarshal(rawErr, &e)
		return nil, &RemoteApiError{URL: url, Method: method, Code: e.Code, Message: message}
	}

	result, ok := envelope["result"]
	if !ok {
		metrics.RemoteCalls.WithLabelValues(method, "protocol").Inc()
		c.debug(ctx, fmt.Sprintf("missing result url=%s method=%s auth=%s response=%s", url, method, scheme, truncate(string(data), 200)))
		return nil, &ProtocolError{URL: url, Method: method, Body: truncate(string(data), 200)}
	}

	metrics.RemoteCalls.WithLabelValues(method, "ok").Inc()
	return result, nil
}

func (c *Client) debug(ctx context.Context, message string) {
	TrailFromContext(ctx).Add(message)
	logc.Infof(ctx, "TicketPlatform RemoteApi %s", message)
}

// errorMessage 依次取 error.data, error.message, 否则返回通用提示
func errorMessage(raw json.RawMessage) string {
	var e responseError
	if err := sonic.Unmarshal(raw, &e); err != nil {
		return "Unknown API error."
	}

	if len(e.Data) > 0 && string(e.Data) != "null" {
		var s string
		if err := sonic.Unmarshal(e.Data, &s); err == nil {
			return s
		}
		return string(e.Data)
	}

	if e.Message != nil {
		return *e.Message
	}

	return "Unknown API error."
}

func decodeResult(url, method string, raw json.RawMessage, result interface{}) error {
	if result == nil || len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	if err := sonic.Unmarshal(raw, result); err != nil {
		return &ProtocolError{URL: url, Method: method, Body: truncate(string(raw), 200)}
	}

	return nil
}

// WebUrl 由 api 地址推导前端地址: 去掉 api_jsonrpc.php, 统一以 "/" 结尾
func WebUrl(apiUrl string) string {
	return strings.TrimRight(apiSuffix.ReplaceAllString(apiUrl, ""), "/") + "/"
}

// NormalizeApiUrl 未包含 api_jsonrpc.php 的地址补全入口文件
func NormalizeApiUrl(apiUrl string) string {
	apiUrl = strings.TrimSpace(apiUrl)
	if apiUrl != "" && !strings.Contains(strings.ToLower(apiUrl), "api_jsonrpc.php") {
		apiUrl = strings.TrimRight(apiUrl, "/") + "/api_jsonrpc.php"
	}
	return apiUrl
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
