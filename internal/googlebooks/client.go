// Package googlebooks matches imported title/author pairs against the
// Google Books volumes API.
//
// Match never surfaces catalog trouble as a pipeline failure: a missing
// API key, a transport error, an empty result set and a result set with
// no acceptable candidate all classify into sentinel errors the caller
// can turn into a per-book skip.
package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clipcat/clipcat/internal/titles"
)

const defaultBaseURL = "https://www.googleapis.com/books/v1"

var (
	// ErrNotConfigured means no API key is set; the matcher degrades to
	// "no candidate" for every book.
	ErrNotConfigured = errors.New("google books api key is not configured")

	// ErrNoMatch means the catalog returned nothing acceptable. This is a
	// steady-state outcome, not a failure.
	ErrNoMatch = errors.New("no acceptable catalog match")
)

// Candidate is the selected catalog volume, mapped to the fields the
// import pipeline persists. String fields are empty when the volume
// carried no value.
type Candidate struct {
	GoogleBooksID   string
	ISBN13          string
	ISBN10          string
	ImageURL        string
	Subtitle        string
	PublishedDate   string
	PageCount       int
	Description     string
	Categories      []string
	TextSnippet     string
	GoogleBooksLink string
}

// Client queries the Google Books volumes endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
	}
}

// Match finds at most one acceptable catalog candidate for a book.
//
// It issues an exact intitle/inauthor query first and, when that returns
// nothing, broadens once to the title words longer than three characters.
// From the first non-empty result set it picks the first volume passing
// the acceptance heuristic; see acceptable().
func (c *Client) Match(ctx context.Context, title, author string) (*Candidate, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	cleaned := titles.Normalize(title)

	query := fmt.Sprintf(`intitle:"%s" inauthor:%s`, cleaned, author)
	items, err := c.search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}

	if len(items) == 0 {
		query = fmt.Sprintf("%s inauthor:%s", broadenedTitle(cleaned), author)
		items, err = c.search(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("broadened catalog search: %w", err)
		}
	}

	for i := range items {
		if acceptable(&items[i]) {
			return toCandidate(&items[i]), nil
		}
	}

	return nil, ErrNoMatch
}

// broadenedTitle keeps only the title words longer than three characters,
// dropping articles and connectives that drown out exact-phrase queries.
func broadenedTitle(cleaned string) string {
	var words []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) > 3 {
			words = append(words, word)
		}
	}
	return strings.Join(words, " ")
}

// acceptable filters out mistranslations and abridged "summary" companion
// editions: the title must not name another-language edition, neither
// subtitle nor description may mark it as a summary, and real books run
// longer than 100 pages.
func acceptable(item *volumeItem) bool {
	info := &item.VolumeInfo
	title := strings.ToLower(info.Title)
	if strings.Contains(title, "tamil") || strings.Contains(title, "hindi") {
		return false
	}
	if strings.Contains(strings.ToLower(info.Subtitle), "summary") {
		return false
	}
	if strings.Contains(strings.ToLower(info.Description), "summary of") {
		return false
	}
	return info.PageCount > 100
}

func toCandidate(item *volumeItem) *Candidate {
	info := &item.VolumeInfo

	candidate := &Candidate{
		GoogleBooksID:   item.ID,
		Subtitle:        info.Subtitle,
		PublishedDate:   info.PublishedDate,
		PageCount:       info.PageCount,
		Description:     info.Description,
		Categories:      info.Categories,
		ImageURL:        info.ImageLinks.Thumbnail,
		GoogleBooksLink: info.PreviewLink,
	}

	// First identifier of each type wins.
	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			if candidate.ISBN13 == "" {
				candidate.ISBN13 = id.Identifier
			}
		case "ISBN_10":
			if candidate.ISBN10 == "" {
				candidate.ISBN10 = id.Identifier
			}
		}
	}

	if item.SearchInfo != nil {
		candidate.TextSnippet = item.SearchInfo.TextSnippet
	}

	return candidate
}

func (c *Client) search(ctx context.Context, query string) ([]volumeItem, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("key", c.apiKey)

	searchURL := fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search volumes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return result.Items, nil
}

// Google Books API response types (internal)

type volumesResponse struct {
	Items []volumeItem `json:"items"`
}

type volumeItem struct {
	ID         string      `json:"id"`
	VolumeInfo volumeInfo  `json:"volumeInfo"`
	SearchInfo *searchInfo `json:"searchInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Subtitle            string               `json:"subtitle"`
	Authors             []string             `json:"authors"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
	PageCount           int                  `json:"pageCount"`
	Categories          []string             `json:"categories"`
	ImageLinks          imageLinks           `json:"imageLinks"`
	PreviewLink         string               `json:"previewLink"`
}

type industryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type imageLinks struct {
	Thumbnail string `json:"thumbnail"`
}

type searchInfo struct {
	TextSnippet string `json:"textSnippet"`
}
