package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/eventdrop/internal/common"
	"github.com/dmitrijs2005/eventdrop/internal/netx"
	"github.com/dmitrijs2005/eventdrop/internal/sizex"
)

// Form field names expected by POST /upload.
const (
	GuestNameField = "guestName"
	FilesField     = "files"
)

type Client struct {
	baseURL       string
	adminPassword string
	http          *http.Client
}

func New(baseURL, adminPassword string, timeout time.Duration) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		adminPassword: adminPassword,
		http:          &http.Client{Timeout: timeout},
	}
}

func (c *Client) CreateEvent(ctx context.Context, name string) (*EventResponse, error) {
	var out EventResponse
	if err := c.postJSON(ctx, "/admin/create-event", map[string]string{"eventName": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CloseEvent(ctx context.Context, eventID string) (*EventResponse, error) {
	var out EventResponse
	if err := c.postJSON(ctx, "/admin/close-event", map[string]string{"eventId": eventID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListEvents(ctx context.Context) (*EventList, error) {
	var out EventList
	if err := c.do(ctx, http.MethodGet, "/admin/list-events", nil, "", true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DriveQuota(ctx context.Context) (*QuotaResponse, error) {
	var out QuotaResponse
	if err := c.do(ctx, http.MethodGet, "/admin/drive-quota", nil, "", true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload sends the files as one multipart request on behalf of guest.
func (c *Client) Upload(ctx context.Context, guest string, paths []string) (*UploadResponse, error) {
	files := make([]netx.FilePart, 0, len(paths))
	for _, p := range paths {
		files = append(files, netx.FilePart{Name: FilesField, Path: p})
	}
	body, contentType := netx.StreamMultipart([]netx.Field{{Name: GuestNameField, Value: guest}}, files)
	defer body.Close()

	var out UploadResponse
	if err := c.do(ctx, http.MethodPost, "/upload", body, contentType, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(b), "application/json", true, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, admin bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if admin {
		req.Header.Set(common.AdminPasswordHeaderName, c.adminPassword)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// CheckFileSizes rejects the whole batch when any file is larger than max,
// naming every such file. Nothing is sent in that case.
func CheckFileSizes(paths []string, max int64) error {
	var oversized []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", p)
		}
		if info.Size() > max {
			oversized = append(oversized, info.Name())
		}
	}

	if len(oversized) > 0 {
		return common.NewError(common.ErrorFileTooLarge,
			common.OversizedFilesMessage(sizex.FormatBytes(max), oversized), nil)
	}
	return nil
}
