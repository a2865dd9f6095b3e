// Package sheets provides a thin client for the Google Sheets and Drive
// REST APIs. This is part of the platform layer and contains no business
// logic; consumers declare their own narrow read interfaces.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"garment_whatsapp_backend/platform/config"
	"garment_whatsapp_backend/platform/logger"
)

// File identifies one spreadsheet inside a Drive folder.
type File struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client reads cell ranges and folder listings.
type Client struct {
	sheetsURL string
	driveURL  string
	apiKey    string
	http      *http.Client
	log       *logger.Logger
}

// NewClient creates a sheets client from config.
func NewClient(cfg config.SheetsConfig, log *logger.Logger) *Client {
	return &Client{
		sheetsURL: strings.TrimRight(cfg.GetSheetsBaseURL(), "/"),
		driveURL:  strings.TrimRight(cfg.GetDriveBaseURL(), "/"),
		apiKey:    cfg.GetGoogleAPIKey(),
		http:      &http.Client{Timeout: 15 * time.Second},
		log:       log,
	}
}

type valuesResponse struct {
	Values [][]json.RawMessage `json:"values"`
}

type filesResponse struct {
	Files []File `json:"files"`
}

// ReadRange returns the cells of one range as strings. Numeric cells are
// rendered the way the sheet displays them, without a float exponent.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?valueRenderOption=FORMATTED_VALUE&key=%s",
		c.sheetsURL, url.PathEscape(spreadsheetID), url.PathEscape(readRange), url.QueryEscape(c.apiKey))

	var parsed valuesResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, fmt.Errorf("read range %q: %w", readRange, err)
	}

	grid := make([][]string, len(parsed.Values))
	for i, row := range parsed.Values {
		cells := make([]string, len(row))
		for j, raw := range row {
			cells[j] = decodeCell(raw)
		}
		grid[i] = cells
	}
	return grid, nil
}

// ListFolder lists the spreadsheets inside a Drive folder, preserving the
// order the API returns them in.
func (c *Client) ListFolder(ctx context.Context, folderID string) ([]File, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("'%s' in parents and mimeType='application/vnd.google-apps.spreadsheet' and trashed=false", folderID))
	query.Set("fields", "files(id,name)")
	query.Set("key", c.apiKey)

	endpoint := c.driveURL + "/drive/v3/files?" + query.Encode()

	var parsed filesResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, fmt.Errorf("list folder %s: %w", folderID, err)
	}
	return parsed.Files, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("google api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(out)
}

func decodeCell(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return strings.Trim(string(raw), "\"")
}
