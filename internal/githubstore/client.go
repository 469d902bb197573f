package githubstore

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Object is one versioned blob read from the repository.
type Object struct {
	Content []byte
	SHA     string
	Size    int64
}

// Entry is one row of a folder listing.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	SHA  string `json:"sha"`
	Size int64  `json:"size"`
	Type string `json:"type"` // "file" | "dir"
}

// Store is the path-addressed versioned object store every feature writes
// through. Writes and deletes take the last observed sha as a precondition.
type Store interface {
	Read(ctx context.Context, path string) (*Object, error)
	ReadRaw(ctx context.Context, path string) ([]byte, error)
	Stat(ctx context.Context, path string) (*Entry, error)
	Write(ctx context.Context, path string, content []byte, sha, message string) (string, error)
	Delete(ctx context.Context, path, sha, message string) error
	List(ctx context.Context, folder string) ([]Entry, error)
	RawURL(path string) string
}

// Client talks to the GitHub repository contents API.
type Client struct {
	apiBase string
	rawBase string
	owner   string
	repo    string
	branch  string
	token   string
	http    *http.Client

	visMu      sync.Mutex
	visKnown   bool
	visPrivate bool
}

// NewClient builds a store over one repo/branch. apiBase and rawBase default
// to the public GitHub endpoints when empty.
func NewClient(apiBase, rawBase, owner, repo, branch, token string) *Client {
	if apiBase == "" {
		apiBase = "https://api.github.com"
	}
	if rawBase == "" {
		rawBase = "https://raw.githubusercontent.com"
	}
	return &Client{
		apiBase: strings.TrimRight(apiBase, "/"),
		rawBase: strings.TrimRight(rawBase, "/"),
		owner:   owner,
		repo:    repo,
		branch:  branch,
		token:   token,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// JoinPath joins repo path segments, dropping empties and surrounding
// slashes. Mirrors the layout convention used by every feature folder.
func JoinPath(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, "/")
}

func (c *Client) contentsURL(p string) string {
	segs := strings.Split(JoinPath(p), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	suffix := strings.Join(segs, "/")
	if suffix == "" {
		return fmt.Sprintf("%s/repos/%s/%s/contents", c.apiBase, c.owner, c.repo)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.apiBase, c.owner, c.repo, suffix)
}

// RawURL returns the raw-download URL for a path. Only works without
// credentials when the repo is public.
func (c *Client) RawURL(p string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", c.rawBase, c.owner, c.repo, c.branch, JoinPath(p))
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

type contentsResponse struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// Read fetches content plus the current version sha.
func (c *Client) Read(ctx context.Context, p string) (*Object, error) {
	var res contentsResponse
	if err := c.getJSON(ctx, c.contentsURL(p)+"?ref="+url.QueryEscape(c.branch), p, &res); err != nil {
		return nil, err
	}
	obj := &Object{SHA: res.SHA, Size: res.Size}
	if res.Encoding == "base64" && res.Content != "" {
		raw := strings.NewReplacer("\n", "", "\r", "").Replace(res.Content)
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("github: GET %s: decode content: %v", p, err)
		}
		obj.Content = decoded
		return obj, nil
	}
	// Large blobs omit inline content; fall back to the raw media type.
	if res.Size > 0 {
		data, err := c.ReadRaw(ctx, p)
		if err != nil {
			return nil, err
		}
		obj.Content = data
	}
	return obj, nil
}

// ReadRaw fetches the raw bytes of a path without version metadata.
func (c *Client) ReadRaw(ctx context.Context, p string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.contentsURL(p)+"?ref="+url.QueryEscape(c.branch), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.raw")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, netErr("GET", p, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, statusErr("GET", p, resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}

// Stat reports existence, size and sha without downloading content.
func (c *Client) Stat(ctx context.Context, p string) (*Entry, error) {
	var res contentsResponse
	if err := c.getJSON(ctx, c.contentsURL(p)+"?ref="+url.QueryEscape(c.branch), p, &res); err != nil {
		return nil, err
	}
	return &Entry{Name: res.Name, Path: res.Path, SHA: res.SHA, Size: res.Size, Type: res.Type}, nil
}

type writeRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type writeResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

// Write commits content to a path. A non-empty sha is the compare-and-swap
// precondition for updating an existing object. An empty sha is create-only:
// if the path already holds content the write fails with ErrAlreadyExists
// instead of silently overwriting.
func (c *Client) Write(ctx context.Context, p string, content []byte, sha, message string) (string, error) {
	if sha == "" {
		_, err := c.Stat(ctx, p)
		if err == nil {
			return "", fmt.Errorf("github: PUT %s: %w", p, ErrAlreadyExists)
		}
		if !IsNotFound(err) {
			return "", err
		}
	}
	payload, err := json.Marshal(writeRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  c.branch,
		SHA:     sha,
	})
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPut, c.contentsURL(p), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", netErr("PUT", p, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if sha == "" && (resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity) {
			// a sha-less PUT can only be rejected because content landed
			// on the path after the existence pre-check
			return "", fmt.Errorf("github: PUT %s: status %d: %w", p, resp.StatusCode, ErrAlreadyExists)
		}
		return "", statusErr("PUT", p, resp.StatusCode, string(body))
	}
	var res writeResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("github: PUT %s: decode response: %v", p, err)
	}
	return res.Content.SHA, nil
}

type deleteRequest struct {
	Message string `json:"message"`
	SHA     string `json:"sha"`
	Branch  string `json:"branch"`
}

// Delete removes a path. The sha precondition rejects deletes against a
// version the caller has not seen.
func (c *Client) Delete(ctx context.Context, p, sha, message string) error {
	payload, err := json.Marshal(deleteRequest{Message: message, SHA: sha, Branch: c.branch})
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodDelete, c.contentsURL(p), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return netErr("DELETE", p, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return statusErr("DELETE", p, resp.StatusCode, string(body))
	}
	return nil
}

// List returns the entries of a folder. An absent folder is an empty
// listing, not an error.
func (c *Client) List(ctx context.Context, folder string) ([]Entry, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.contentsURL(folder)+"?ref="+url.QueryEscape(c.branch), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, netErr("GET", folder, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return []Entry{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, statusErr("GET", folder, resp.StatusCode, string(body))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, netErr("GET", folder, err)
	}
	var entries []Entry
	if err := json.Unmarshal(body, &entries); err == nil {
		return entries, nil
	}
	// A file path returns a single object instead of an array.
	var one Entry
	if err := json.Unmarshal(body, &one); err != nil {
		return nil, fmt.Errorf("github: GET %s: decode listing: %v", folder, err)
	}
	return []Entry{one}, nil
}

type repoResponse struct {
	Private bool `json:"private"`
}

// RepoPrivate reports repository visibility, cached for the process
// lifetime. Lookup failures default to private so raw links are never
// handed out for a repo we cannot vouch for.
func (c *Client) RepoPrivate(ctx context.Context) (bool, error) {
	c.visMu.Lock()
	defer c.visMu.Unlock()
	if c.visKnown {
		return c.visPrivate, nil
	}
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("%s/repos/%s/%s", c.apiBase, c.owner, c.repo), nil)
	if err != nil {
		return true, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return true, netErr("GET", c.owner+"/"+c.repo, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.visKnown = true
		c.visPrivate = true
		return true, nil
	}
	var res repoResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return true, nil
	}
	c.visKnown = true
	c.visPrivate = res.Private
	return res.Private, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL, p string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return netErr("GET", p, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return statusErr("GET", p, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// IsNotFound reports whether err is the store's not-found class.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
