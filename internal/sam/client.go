package sam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/david/contract-finder/internal/models"
)

// ErrNotFound is returned when no notice matches the requested id.
var ErrNotFound = errors.New("opportunity not found")

const defaultBaseURL = "https://api.sam.gov"

// Client talks to the SAM.gov Get Opportunities Public API v2.
type Client struct {
	BaseURL    string
	APIKey     string
	WindowDays int // posted-date search window, default 30
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		WindowDays: 30,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// searchResponse is the subset of the search payload we consume. The rest of
// the wire format is passed through untouched.
type searchResponse struct {
	OpportunitiesData []noticeRecord `json:"opportunitiesData"`
	Opportunities     []noticeRecord `json:"opportunities"`
}

type noticeRecord struct {
	NoticeID           string   `json:"noticeId"`
	Title              string   `json:"title"`
	FullParentPathName string   `json:"fullParentPathName"`
	UILink             string   `json:"uiLink"`
	ResponseDeadLine   string   `json:"responseDeadLine"`
	ResourceLinks      []string `json:"resourceLinks"`
	Description        string   `json:"description"` // URL of the description resource
}

// FetchOpportunity locates a notice by id within the posted-date window and
// maps it to the core's opportunity record.
func (c *Client) FetchOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	days := c.WindowDays
	if days <= 0 {
		days = 30
	}
	to := time.Now()
	from := to.AddDate(0, 0, -days)

	params := url.Values{}
	params.Set("api_key", c.APIKey)
	params.Set("noticeid", id)
	params.Set("postedFrom", from.Format("01/02/2006"))
	params.Set("postedTo", to.Format("01/02/2006"))
	params.Set("limit", "25")
	params.Set("offset", "0")

	endpoint := c.BaseURL + "/opportunities/v2/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("sam.gov request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sam.gov returned status: %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	records := parsed.OpportunitiesData
	if len(records) == 0 {
		records = parsed.Opportunities
	}
	for _, rec := range records {
		if rec.NoticeID == id {
			return mapNotice(rec), nil
		}
	}

	return nil, ErrNotFound
}

func mapNotice(rec noticeRecord) *models.Opportunity {
	agency := strings.TrimSpace(rec.FullParentPathName)
	if agency == "" {
		agency = "N/A"
	}
	return &models.Opportunity{
		ID:                rec.NoticeID,
		Title:             rec.Title,
		Agency:            agency,
		Link:              rec.UILink,
		ClosingDate:       rec.ResponseDeadLine,
		ResourceLinks:     rec.ResourceLinks,
		DescriptionSource: rec.Description,
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// FetchDescriptionText fetches the notice description resource and returns it
// as plain text. The resource may be a JSON envelope ({"description": html})
// or raw HTML; either way the markup is sanitized and flattened.
func (c *Client) FetchDescriptionText(ctx context.Context, source string) (string, error) {
	u, err := url.Parse(source)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid description source: %q", source)
	}
	if !strings.Contains(u.Hostname(), "sam.gov") {
		return "", fmt.Errorf("description source must be a sam.gov URL: %q", source)
	}

	if c.APIKey != "" {
		q := u.Query()
		q.Set("api_key", c.APIKey)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/html, text/plain, */*")
	req.Header.Set("User-Agent", "Contract-Finder/1.0")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("description fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("description fetch returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read description body: %w", err)
	}

	raw := string(body)
	var envelope struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Description != "" {
		raw = envelope.Description
	}

	text := HTMLToText(raw)
	if text == "" {
		return "", fmt.Errorf("description resource yielded no text: %q", source)
	}
	return text, nil
}
