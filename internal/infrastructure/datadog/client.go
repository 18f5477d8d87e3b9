package datadog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vn.io.arda/provisioner/internal/domain"
)

const defaultPageSize = 100

// Client implements application.Directory against the Datadog v2 REST API.
// Credentials are passed per call: every request is scoped to exactly one
// organization's key pair.
type Client struct {
	baseURL  string // e.g. "https://api.datadoghq.com"
	pageSize int

	httpClient *http.Client
}

// New creates a Client for the given Datadog site (e.g. "datadoghq.com",
// "datadoghq.eu"). Every call is bounded by the client timeout.
func New(site string, timeout time.Duration) *Client {
	if site == "" {
		site = "datadoghq.com"
	}
	return &Client{
		baseURL:    "https://api." + site,
		pageSize:   defaultPageSize,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// newForBase is used by tests to point the client at a local server.
func newForBase(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, pageSize: defaultPageSize, httpClient: &http.Client{Timeout: timeout}}
}

// --- wire types (minimal shapes only) ---

type userAttributes struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status,omitempty"`
}

type userData struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Attributes userAttributes `json:"attributes"`
}

type roleData struct {
	ID         string `json:"id"`
	Attributes struct {
		Name string `json:"name"`
	} `json:"attributes"`
}

// CreateUser issues POST /api/v2/users with the role relationship attached.
func (c *Client) CreateUser(ctx context.Context, creds domain.CredentialPair, email, name, roleID string) (domain.UserRecord, error) {
	body := map[string]any{
		"data": map[string]any{
			"type": "users",
			"attributes": map[string]any{
				"name":  name,
				"email": email,
			},
			"relationships": map[string]any{
				"roles": map[string]any{
					"data": []map[string]any{{"id": roleID, "type": "roles"}},
				},
			},
		},
	}

	var resp struct {
		Data userData `json:"data"`
	}
	if err := c.do(ctx, creds, http.MethodPost, c.baseURL+"/api/v2/users", body, &resp); err != nil {
		return domain.UserRecord{}, fmt.Errorf("create user %s: %w", email, err)
	}
	return domain.UserRecord{
		ID:     resp.Data.ID,
		Email:  email,
		Name:   name,
		Status: domain.UserStatus(resp.Data.Attributes.Status),
	}, nil
}

// SendInvite issues POST /api/v2/user_invitations for the created user id.
func (c *Client) SendInvite(ctx context.Context, creds domain.CredentialPair, userID string) (int, error) {
	body := map[string]any{
		"data": []map[string]any{{
			"type": "user_invitations",
			"relationships": map[string]any{
				"user": map[string]any{
					"data": map[string]any{"type": "users", "id": userID},
				},
			},
		}},
	}

	var resp struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, creds, http.MethodPost, c.baseURL+"/api/v2/user_invitations", body, &resp); err != nil {
		return 0, fmt.Errorf("send invitation for user %s: %w", userID, err)
	}
	return len(resp.Data), nil
}

// DisableUser issues DELETE /api/v2/users/{id}.
func (c *Client) DisableUser(ctx context.Context, creds domain.CredentialPair, userID string) error {
	if err := c.do(ctx, creds, http.MethodDelete, c.baseURL+"/api/v2/users/"+userID, nil, nil); err != nil {
		return fmt.Errorf("disable user %s: %w", userID, err)
	}
	return nil
}

// ListRoles issues GET /api/v2/roles and returns all roles visible to the
// credentials.
func (c *Client) ListRoles(ctx context.Context, creds domain.CredentialPair) ([]domain.Role, error) {
	var resp struct {
		Data []roleData `json:"data"`
	}
	if err := c.do(ctx, creds, http.MethodGet, c.baseURL+"/api/v2/roles", nil, &resp); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	roles := make([]domain.Role, 0, len(resp.Data))
	for _, r := range resp.Data {
		roles = append(roles, domain.Role{ID: r.ID, Name: r.Attributes.Name})
	}
	return roles, nil
}

// ListUsers returns a pager over GET /api/v2/users. The first request
// carries page[size] and the optional status filter; follow-up requests use
// the links.next URL verbatim, which already embeds the parameters.
func (c *Client) ListUsers(creds domain.CredentialPair, status domain.UserStatus) domain.UserPager {
	first := fmt.Sprintf("%s/api/v2/users?page[size]=%d", c.baseURL, c.pageSize)
	if status != "" {
		first += "&filter[status]=" + string(status)
	}
	return &userPager{c: c, creds: creds, next: first}
}

// userPager follows the next-page link until the platform stops returning
// one. Each Next call performs at most one page request.
type userPager struct {
	c     *Client
	creds domain.CredentialPair

	next string // empty once the last page has been fetched
	buf  []domain.UserRecord
	cur  domain.UserRecord
	err  error
	done bool
}

func (p *userPager) Next(ctx context.Context) bool {
	for len(p.buf) == 0 {
		if p.done || p.err != nil {
			return false
		}
		p.fetch(ctx)
	}
	p.cur = p.buf[0]
	p.buf = p.buf[1:]
	return true
}

func (p *userPager) User() domain.UserRecord { return p.cur }
func (p *userPager) Err() error              { return p.err }

func (p *userPager) fetch(ctx context.Context) {
	var resp struct {
		Data  []userData `json:"data"`
		Links struct {
			Next string `json:"next"`
		} `json:"links"`
	}
	if err := p.c.do(ctx, p.creds, http.MethodGet, p.next, nil, &resp); err != nil {
		p.err = fmt.Errorf("list users page: %w", err)
		return
	}

	for _, u := range resp.Data {
		p.buf = append(p.buf, domain.UserRecord{
			ID:     u.ID,
			Email:  u.Attributes.Email,
			Name:   u.Attributes.Name,
			Status: domain.UserStatus(u.Attributes.Status),
		})
	}

	if resp.Links.Next == "" {
		p.done = true
		p.next = ""
		return
	}
	p.next = p.c.absolute(resp.Links.Next)
}

// absolute resolves a next link that may be either a full URL or a path.
func (c *Client) absolute(link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return c.baseURL + link
}

// do performs one authenticated round trip and decodes the response into out
// (when non-nil). Non-2xx statuses are errors carrying the status code.
func (c *Client) do(ctx context.Context, creds domain.CredentialPair, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("DD-API-KEY", creds.APIKey)
	req.Header.Set("DD-APPLICATION-KEY", creds.AppKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: status %d", method, req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
