// Package client は社員名簿 REST API のクライアントです。directory.RecordStore を実装します。
package client

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

	"github.com/ogurasousui/employee-directory/internal/adapters/http/dto"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
)

// DefaultTimeout は 1 リクエストあたりの既定タイムアウトです。
const DefaultTimeout = 10 * time.Second

// StatusError は非 2xx 応答です。社員 1 件を指すパスへの 404 だけは employee.ErrEmployeeNotFound になります。
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("client: status %d: %s", e.StatusCode, e.Message)
}

// Client は REST API のクライアントです。
type Client struct {
	baseURL string
	http    *http.Client
}

// Option は Client の任意設定です。
type Option func(*Client)

// WithHTTPClient は内部で使う *http.Client を差し替えます。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New は baseURL (例: http://localhost:8080) に対する Client を生成します。
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: base url must be http or https: %q", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("client: base url has no host: %q", baseURL)
	}

	c := &Client{baseURL: u.String(), http: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListEmployees は全件を取得します。
func (c *Client) ListEmployees(ctx context.Context) ([]employee.Employee, error) {
	var body []dto.Employee
	if err := c.do(ctx, http.MethodGet, "/employees", nil, &body); err != nil {
		return nil, err
	}

	out := make([]employee.Employee, 0, len(body))
	for _, e := range body {
		out = append(out, e.ToEntity())
	}
	return out, nil
}

// GetEmployee は 1 件取得します。存在しない場合は employee.ErrEmployeeNotFound です。
func (c *Client) GetEmployee(ctx context.Context, id string) (employee.Employee, error) {
	var body dto.Employee
	if err := c.do(ctx, http.MethodGet, employeePath(id), nil, &body); err != nil {
		return employee.Employee{}, err
	}
	return body.ToEntity(), nil
}

// CreateEmployee は社員を作成し、採番されたレコードを返します。
func (c *Client) CreateEmployee(ctx context.Context, in employee.CreateEmployeeInput) (employee.Employee, error) {
	var body dto.Employee
	if err := c.do(ctx, http.MethodPost, "/employees", dto.NewCreateRequest(in), &body); err != nil {
		return employee.Employee{}, err
	}
	return body.ToEntity(), nil
}

// UpdateEmployee は指定フィールドを更新します。
func (c *Client) UpdateEmployee(ctx context.Context, in employee.UpdateEmployeeInput) (employee.Employee, error) {
	var body dto.Employee
	if err := c.do(ctx, http.MethodPut, employeePath(in.ID), dto.NewUpdateRequest(in), &body); err != nil {
		return employee.Employee{}, err
	}
	return body.ToEntity(), nil
}

// DeleteEmployee は社員を削除します。
func (c *Client) DeleteEmployee(ctx context.Context, id string) error {
	var body dto.DeleteResponse
	return c.do(ctx, http.MethodDelete, employeePath(id), nil, &body)
}

const employeePrefix = "/employees/"

func employeePath(id string) string {
	return employeePrefix + url.PathEscape(id)
}

func isEmployeePath(path string) bool {
	return strings.HasPrefix(path, employeePrefix) && len(path) > len(employeePrefix)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, isEmployeePath(path))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// statusError は応答を error へ変換します。ルーティング自体の 404 (base URL の誤りなど) は StatusError のままです。
func statusError(resp *http.Response, employeeResource bool) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body dto.ErrorResponse
	message := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		message = body.Error
	}

	if resp.StatusCode == http.StatusNotFound && employeeResource {
		return fmt.Errorf("%w: %s", employee.ErrEmployeeNotFound, message)
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: message}
}

// IsStatus は err が指定ステータスの StatusError かを返します。
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == status
}
