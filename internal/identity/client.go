package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// 身份校验的三类结果，调用方据此决定关闭代码与提示文案。
var (
	ErrMissingCredential = errors.New("credential required")
	ErrInvalidCredential = errors.New("credential rejected")
	ErrUnavailable       = errors.New("identity service unavailable")
)

// Record 是身份服务返回的已验证身份信息，仅在单次连接内有效。
type Record struct {
	ID          string `json:"id"`
	LoginHandle string `json:"user_login_id"`
	DisplayName string `json:"name"`
}

// Client 封装对身份验证服务的单次远程调用，不做任何重试。
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	UserInfo *Record `json:"user_info"`
	Error    string  `json:"error"`
}

// Verify 用凭证换取身份记录。空凭证在本地拒绝，不发起远程调用。
func (c *Client) Verify(ctx context.Context, credential string) (*Record, error) {
	if credential == "" {
		return nil, ErrMissingCredential
	}

	body, err := json.Marshal(verifyRequest{Token: credential})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/verify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var out verifyResponse
	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.UserInfo == nil || out.UserInfo.ID == "" {
			return nil, fmt.Errorf("%w: invalid response", ErrUnavailable)
		}
		return out.UserInfo, nil
	case http.StatusUnauthorized:
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Error == "" {
			out.Error = "invalid or expired token"
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredential, out.Error)
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}
}
