// Package client talks to the profile API on behalf of profilectl.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/redmonkez12/profile-api/internal/httputil"
	"github.com/redmonkez12/profile-api/internal/profile"
	"github.com/redmonkez12/profile-api/internal/storage"
)

// APIError is a non-2xx answer from the server
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return e.Message
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client. A nil httpClient means http.DefaultClient.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// Update is what the edit form submits. ImagePath names a local file to
// upload alongside the fields.
type Update struct {
	Name        string
	DOB         string
	Email       string
	PhoneCode   string
	PhoneNumber string
	ImagePath   string
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body httputil.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
	}
	return apiErr
}

// Profile fetches the caller's profile once
func (c *Client) Profile(ctx context.Context) (*profile.View, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/profile", nil)
	if err != nil {
		return nil, err
	}

	var view profile.View
	if err := c.do(req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Save submits u. Without an image the fields go as JSON; with one the
// request is multipart and progress is reported while the body is sent.
func (c *Client) Save(ctx context.Context, u Update, progress storage.ProgressFunc) (*profile.UpdateResponse, error) {
	var (
		req *http.Request
		err error
	)
	if u.ImagePath == "" {
		req, err = c.jsonRequest(ctx, u)
	} else {
		req, err = c.multipartRequest(ctx, u, progress)
	}
	if err != nil {
		return nil, err
	}

	var resp profile.UpdateResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) jsonRequest(ctx context.Context, u Update) (*http.Request, error) {
	payload, err := json.Marshal(profile.UpdateRequest{
		Name:        u.Name,
		DOB:         u.DOB,
		Email:       u.Email,
		PhoneCode:   u.PhoneCode,
		PhoneNumber: u.PhoneNumber,
	})
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPatch, "/profile", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) multipartRequest(ctx context.Context, u Update, progress storage.ProgressFunc) (*http.Request, error) {
	image, err := os.ReadFile(u.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range []struct{ name, value string }{
		{"name", u.Name},
		{"dob", u.DOB},
		{"email", u.Email},
		{"phoneCode", u.PhoneCode},
		{"phoneNumber", u.PhoneNumber},
	} {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(u.ImagePath)))
	h.Set("Content-Type", http.DetectContentType(image))
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	size := int64(buf.Len())
	req, err := c.newRequest(ctx, http.MethodPatch, "/profile", storage.TrackProgress(bytes.NewReader(buf.Bytes()), size, progress))
	if err != nil {
		return nil, err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req, nil
}

// Watch follows the event stream and calls fn with every profile event
// until ctx is cancelled or the server closes the stream
func (c *Client) Watch(ctx context.Context, fn func(*profile.View)) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/profile/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	err = readEvents(resp.Body, func(event string, data []byte) error {
		if event != "profile" {
			return nil
		}
		var view profile.View
		if err := json.Unmarshal(data, &view); err != nil {
			return fmt.Errorf("failed to decode profile event: %w", err)
		}
		fn(&view)
		return nil
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// readEvents splits a text/event-stream body into events. Comment lines
// are keep-alives and are skipped.
func readEvents(r io.Reader, fn func(event string, data []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var (
		event string
		data  bytes.Buffer
	)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				if event == "" {
					event = "message"
				}
				if err := fn(event, bytes.TrimSuffix(data.Bytes(), []byte("\n"))); err != nil {
					return err
				}
			}
			event = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			data.WriteByte('\n')
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
