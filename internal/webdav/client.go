package webdav

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

const methodMkcol = "MKCOL"

// ErrNotFound is returned by GetDocument when the backend has no document at the path.
var ErrNotFound = errors.New("webdav: document not found")

// StorageError is a non-success status from the storage backend.
type StorageError struct {
	Op     string
	Status int
	Body   string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s failed %d: %s", e.Op, e.Status, e.Body)
}

// documentJSON writes human-readable UTF-8: no HTML escaping, non-ASCII kept as-is.
var documentJSON = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// Config holds the storage backend connection details.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// Client talks to a WebDAV-style file store with basic auth.
// Every call is one network round-trip; nothing is cached or retried.
type Client struct {
	base     *url.URL
	username string
	password string
	timeout  time.Duration
}

// NewClient creates a new storage client rooted at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid storage base URL %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid storage base URL %q: scheme and host are required", cfg.BaseURL)
	}
	return &Client{
		base:     u,
		username: cfg.Username,
		password: cfg.Password,
		timeout:  cfg.Timeout,
	}, nil
}

// Resolve joins rel onto the base URL using relative-reference rules.
func (c *Client) Resolve(rel string) (string, error) {
	ref, err := url.Parse(rel)
	if err != nil {
		return "", fmt.Errorf("invalid storage path %q: %w", rel, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

// EnsureFolder creates the collection at path. An existing collection is not an error.
func (c *Client) EnsureFolder(ctx context.Context, path string) error {
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	status, body, err := c.do(ctx, methodMkcol, path, nil)
	if err != nil {
		return err
	}
	switch status {
	case fiber.StatusCreated, fiber.StatusMethodNotAllowed:
		return nil
	}
	return &StorageError{Op: methodMkcol, Status: status, Body: string(body)}
}

// PutDocument writes value as an indented JSON document at path.
func (c *Client) PutDocument(ctx context.Context, path string, value interface{}) error {
	data, err := documentJSON.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", path, err)
	}
	status, body, err := c.do(ctx, fiber.MethodPut, path, data)
	if err != nil {
		return err
	}
	switch status {
	case fiber.StatusOK, fiber.StatusCreated, fiber.StatusNoContent:
		return nil
	}
	return &StorageError{Op: fiber.MethodPut, Status: status, Body: string(body)}
}

// GetDocument reads the JSON document at path into dest.
// It returns ErrNotFound when the backend reports 404.
func (c *Client) GetDocument(ctx context.Context, path string, dest interface{}) error {
	status, body, err := c.do(ctx, fiber.MethodGet, path, nil)
	if err != nil {
		return err
	}
	switch status {
	case fiber.StatusOK:
	case fiber.StatusNotFound:
		return ErrNotFound
	default:
		return &StorageError{Op: fiber.MethodGet, Status: status, Body: string(body)}
	}
	if err := documentJSON.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	target, err := c.Resolve(path)
	if err != nil {
		return 0, nil, err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(target)
	agent.BasicAuth(c.username, c.password)
	if timeout > 0 {
		agent.Timeout(timeout)
	}
	if body != nil {
		agent.ContentType(fiber.MIMEApplicationJSONCharsetUTF8)
		agent.Body(body)
	}
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	status, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, errors.Join(errs...))
	}
	return status, respBody, nil
}
