// Package telegram talks to the Bot API as the downstream restricted
// resource: it mints capacity-1 chat invite links and delivers them to
// beneficiaries. It is deliberately not a chat interface.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// Client wraps the two Bot API calls the entitlement issuer needs.
type Client struct {
	baseURL string
	token   string
	chatID  int64
	http    *http.Client
}

// NewClient instantiates the Bot API client. chatID identifies the
// restricted chat invites are minted for.
func NewClient(token string, chatID int64, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram bot token is required")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: defaultBaseURL, token: token, chatID: chatID, http: httpClient}, nil
}

// WithBaseURL points the client at a different API host, used in tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// MintInvite creates a single-use invite link (member_limit=1) to the
// restricted chat. Satisfies the grants context's InviteSource port.
func (c *Client) MintInvite(ctx context.Context, beneficiaryID int64) (string, error) {
	payload := map[string]any{
		"chat_id":      c.chatID,
		"member_limit": 1,
		"name":         fmt.Sprintf("purchase %d", beneficiaryID),
	}
	var link struct {
		InviteLink string `json:"invite_link"`
	}
	if err := c.call(ctx, "createChatInviteLink", payload, &link); err != nil {
		return "", err
	}
	if link.InviteLink == "" {
		return "", errors.New("telegram returned an empty invite link")
	}
	return link.InviteLink, nil
}

// DeliverGrant sends the invite link to the beneficiary. Satisfies the
// grants context's Notifier port.
func (c *Client) DeliverGrant(ctx context.Context, beneficiaryID int64, token string) error {
	payload := map[string]any{
		"chat_id": beneficiaryID,
		"text":    "Оплату отримано. Ваше запрошення: " + token,
	}
	return c.call(ctx, "sendMessage", payload, nil)
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	if c == nil || c.http == nil {
		return errors.New("telegram client not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", method, err)
	}
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call telegram %s: %w", method, err)
	}
	defer resp.Body.Close()
	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("decode telegram %s response: %w", method, err)
	}
	if !decoded.OK {
		return fmt.Errorf("telegram %s failed: %s", method, decoded.Description)
	}
	if out != nil {
		if err := json.Unmarshal(decoded.Result, out); err != nil {
			return fmt.Errorf("decode telegram %s result: %w", method, err)
		}
	}
	return nil
}
