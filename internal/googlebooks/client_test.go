package googlebooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient("test-key")
	client.baseURL = srv.URL
	return client
}

func volume(id, title, subtitle, description string, pageCount int) map[string]any {
	return map[string]any{
		"id": id,
		"volumeInfo": map[string]any{
			"title":         title,
			"subtitle":      subtitle,
			"description":   description,
			"pageCount":     pageCount,
			"publishedDate": "2016-01-05",
			"previewLink":   "https://books.google.com/books?id=" + id,
			"imageLinks":    map[string]any{"thumbnail": "https://books.google.com/thumb/" + id},
			"industryIdentifiers": []map[string]any{
				{"type": "ISBN_10", "identifier": "1455586692"},
				{"type": "ISBN_13", "identifier": "9781455586691"},
				{"type": "ISBN_13", "identifier": "9999999999999"},
			},
			"categories": []string{"Business & Economics"},
		},
		"searchInfo": map[string]any{"textSnippet": "snippet for " + id},
	}
}

func respondItems(w http.ResponseWriter, items ...map[string]any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
}

func TestMatch_SelectsFirstAcceptableCandidate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Contains(t, r.URL.Query().Get("q"), `intitle:"Deep Work"`)
		respondItems(w,
			volume("short", "Deep Work", "", "", 90),
			volume("real", "Deep Work", "", "", 296),
		)
	})

	candidate, err := client.Match(context.Background(), "Deep Work", "Cal Newport")
	require.NoError(t, err)

	assert.Equal(t, "real", candidate.GoogleBooksID)
	assert.Equal(t, "9781455586691", candidate.ISBN13, "first ISBN-13 wins")
	assert.Equal(t, "1455586692", candidate.ISBN10)
	assert.Equal(t, "2016-01-05", candidate.PublishedDate)
	assert.Equal(t, 296, candidate.PageCount)
	assert.Equal(t, []string{"Business & Economics"}, candidate.Categories)
	assert.Equal(t, "snippet for real", candidate.TextSnippet)
}

func TestMatch_RejectsShortOnlyResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// A 100-page-or-less volume is rejected even when it is the only result.
		respondItems(w, volume("only", "Deep Work", "", "", 100))
	})

	candidate, err := client.Match(context.Background(), "Deep Work", "Cal Newport")
	assert.Nil(t, candidate)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestMatch_RejectsSummaryAndLanguageEditions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respondItems(w,
			volume("lang", "Deep Work (Tamil Edition)", "", "", 300),
			volume("sum1", "Deep Work", "A Summary and Analysis", "", 300),
			volume("sum2", "Deep Work", "", "A concise summary of the bestseller", 300),
		)
	})

	candidate, err := client.Match(context.Background(), "Deep Work", "Cal Newport")
	assert.Nil(t, candidate)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestMatch_BroadensQueryWhenFirstReturnsNothing(t *testing.T) {
	var queries []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		if len(queries) == 1 {
			respondItems(w)
			return
		}
		respondItems(w, volume("found", "The Subtle Art", "", "", 224))
	})

	candidate, err := client.Match(context.Background(), "The Subtle Art (of X)", "Mark Manson")
	require.NoError(t, err)
	assert.Equal(t, "found", candidate.GoogleBooksID)

	require.Len(t, queries, 2)
	assert.Contains(t, queries[0], `intitle:"The Subtle Art"`)
	// Second query keeps only words longer than three characters.
	assert.Contains(t, queries[1], "Subtle inauthor:Mark Manson")
	assert.NotContains(t, queries[1], "The ")
}

func TestMatch_MissingAPIKeyDegrades(t *testing.T) {
	client := NewClient("")

	candidate, err := client.Match(context.Background(), "Any", "One")
	assert.Nil(t, candidate)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestMatch_TransportFailureIsClassified(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	candidate, err := client.Match(context.Background(), "Deep Work", "Cal Newport")
	assert.Nil(t, candidate)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMatch)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}

func TestMatch_SecondTransportFailureAborts(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			respondItems(w)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Match(context.Background(), "Deep Work", "Cal Newport")
	require.Error(t, err)
	assert.Equal(t, 2, calls, "no retry beyond the single broadened query")
}
