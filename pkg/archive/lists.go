package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ListConfig identifies a target archive.org simplelist and carries the S3
// credentials needed to write to it. Credentials are opaque to this package.
type ListConfig struct {
	Parent      string // e.g. "@username"
	Name        string // e.g. "culture-library"
	AccessKey   string
	SecretKey   string
	Description string
}

// ListConfigFromEnv builds a ListConfig from IA_* environment variables.
func ListConfigFromEnv() (ListConfig, error) {
	cfg := ListConfig{
		AccessKey: os.Getenv("IA_ACCESS_KEY_ID"),
		SecretKey: os.Getenv("IA_SECRET_ACCESS_KEY"),
		Parent:    os.Getenv("IA_LIST_PARENT"),
		Name:      os.Getenv("IA_LIST_NAME"),
	}

	var missing []string

	if cfg.AccessKey == "" {
		missing = append(missing, "IA_ACCESS_KEY_ID")
	}

	if cfg.SecretKey == "" {
		missing = append(missing, "IA_SECRET_ACCESS_KEY")
	}

	if cfg.Parent == "" {
		missing = append(missing, "IA_LIST_PARENT")
	}

	if cfg.Name == "" {
		missing = append(missing, "IA_LIST_NAME")
	}

	if len(missing) > 0 {
		return ListConfig{}, fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// URL returns the public page for the list.
func (lc ListConfig) URL() string {
	return fmt.Sprintf("https://archive.org/details/%s/lists/%s", lc.Parent, lc.Name)
}

type checkAuthResponse struct {
	Username string `json:"username"`
	Error    string `json:"error"`
}

// CheckAuth verifies the credentials in cfg against the S3 endpoint without
// writing anything. It returns the authenticated account name, so a publish
// run can be sanity-checked up front.
func (c *Client) CheckAuth(ctx context.Context, cfg ListConfig) (string, error) {
	var parsed checkAuthResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", fmt.Sprintf("LOW %s:%s", cfg.AccessKey, cfg.SecretKey)).
		SetQueryParam("check_auth", "1").
		SetResult(&parsed).
		Get(c.s3URL + "/")
	if err != nil {
		return "", fmt.Errorf("auth check failed: %w", err)
	}

	if resp.IsError() {
		return "", &APIError{
			Operation: "auth check",
			Target:    cfg.Parent,
			Status:    resp.StatusCode(),
			Body:      string(resp.Body()),
		}
	}

	if parsed.Error != "" {
		return "", fmt.Errorf("auth check rejected: %s", parsed.Error)
	}

	if parsed.Username == "" {
		return "", fmt.Errorf("auth check returned no account name")
	}

	return parsed.Username, nil
}

type listPatch struct {
	Op     string         `json:"op"`
	Parent string         `json:"parent"`
	List   string         `json:"list"`
	Notes  map[string]any `json:"notes"`
}

type listWriteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// AddToList adds an item to a simplelist via the metadata write API. Notes
// are attached to the list entry and may be nil.
func (c *Client) AddToList(ctx context.Context, identifier string, cfg ListConfig, notes map[string]any) error {
	if notes == nil {
		notes = map[string]any{}
	}

	patch, err := json.Marshal(listPatch{
		Op:     "set",
		Parent: cfg.Parent,
		List:   cfg.Name,
		Notes:  notes,
	})
	if err != nil {
		return fmt.Errorf("marshal list patch: %w", err)
	}

	var parsed listWriteResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", fmt.Sprintf("LOW %s:%s", cfg.AccessKey, cfg.SecretKey)).
		SetFormData(map[string]string{
			"-target": "simplelists",
			"-patch":  string(patch),
		}).
		SetResult(&parsed).
		Post(c.baseURL + "/metadata/" + url.PathEscape(identifier))
	if err != nil {
		return fmt.Errorf("list write failed for %s: %w", identifier, err)
	}

	if resp.IsError() {
		return &APIError{
			Operation: "list write",
			Target:    identifier,
			Status:    resp.StatusCode(),
			Body:      string(resp.Body()),
		}
	}

	if !parsed.Success {
		return fmt.Errorf("list write rejected for %s: %s", identifier, parsed.Error)
	}

	return nil
}

// ListMembers returns identifiers already present in the list, so repeated
// publish runs can skip them.
func (c *Client) ListMembers(ctx context.Context, cfg ListConfig) (map[string]bool, error) {
	query := fmt.Sprintf("simplelists__%s:%s", cfg.Name, cfg.Parent)

	docs, err := c.Search(ctx, query, 10000)
	if err != nil {
		return nil, err
	}

	members := make(map[string]bool, len(docs))
	for _, doc := range docs {
		members[doc.Identifier] = true
	}

	return members, nil
}
