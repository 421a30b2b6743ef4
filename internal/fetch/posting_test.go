package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveHTML(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestParsePosting_Boards(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		html     string
		company  string
		location string
		title    string
	}{
		{
			name:     "linkedin",
			platform: PlatformLinkedIn,
			html: `<html><body><div class="top-card-layout__card">
				<h1 class="topcard__title">Epic Analyst</h1>
				<a class="topcard__org-name-link"> Acme Health </a>
				<span class="topcard__flavor--bullet">Austin, TX, United States</span>
			</div></body></html>`,
			company:  "Acme Health",
			location: "Austin, TX",
			title:    "Epic Analyst",
		},
		{
			name:     "greenhouse",
			platform: PlatformGreenhouse,
			html: `<html><body><h1 class="app-title">Backend Engineer</h1>
				<span class="company-name">at Globex</span>
				<div class="location">New York, NY (Hybrid)</div></body></html>`,
			company:  "at Globex",
			location: "New York, NY",
			title:    "Backend Engineer",
		},
		{
			name:     "lever uses logo alt and title fallback",
			platform: PlatformLever,
			html: `<html><head><title>Data Engineer - Initech</title></head><body>
				<h2 data-qa="posting-name">Data Engineer</h2>
				<div class="posting-categories"><div class="location">Remote</div></div></body></html>`,
			company:  "Initech",
			location: "Remote",
			title:    "Data Engineer",
		},
		{
			name:     "generic",
			platform: PlatformUnknown,
			html: `<html><head><meta property="og:site_name" content="Umbrella"></head><body>
				<h1>Site Reliability Engineer</h1>
				<p class="job-location">Denver, CO</p></body></html>`,
			company:  "Umbrella",
			location: "Denver, CO",
			title:    "Site Reliability Engineer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &JobPosting{Platform: tt.platform}
			require.NoError(t, parsePosting(tt.html, p))
			assert.Equal(t, tt.company, p.Company)
			assert.Equal(t, tt.location, p.Location)
			assert.Equal(t, tt.title, p.Title)
		})
	}
}

func TestScrapeJobPosting_Static(t *testing.T) {
	server := serveHTML(t, http.StatusOK, `<html><body>
		<h1>Epic Analyst</h1>
		<div class="company">Acme Health</div>
		<div class="location">Madison, WI (On-site)</div>
		<div class="job-description">Epic EHR experience required.</div>
	</body></html>`)

	p, err := ScrapeJobPosting(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.True(t, p.Found())
	assert.Equal(t, "Acme Health", p.Company)
	assert.Equal(t, "Madison, WI", p.Location)
	assert.Equal(t, "Madison, WI (On-site)", p.RawLocation)
	assert.Contains(t, p.Description, "Epic EHR")
	assert.False(t, p.Rendered)
}

func TestScrapeJobPosting_RendersWhenEmpty(t *testing.T) {
	server := serveHTML(t, http.StatusOK, `<html><body><div id="root"></div></body></html>`)

	var rendered string
	opts := &ScrapeOptions{
		UseBrowser: true,
		render: func(_ context.Context, url string) (string, error) {
			rendered = url
			return `<html><body><div class="location">Seattle, WA</div></body></html>`, nil
		},
	}

	p, err := ScrapeJobPosting(context.Background(), server.URL, opts)
	require.NoError(t, err)
	assert.Equal(t, server.URL, rendered)
	assert.True(t, p.Rendered)
	assert.Equal(t, "Seattle, WA", p.Location)
}

func TestScrapeJobPosting_NoBrowserReturnsEmpty(t *testing.T) {
	server := serveHTML(t, http.StatusOK, `<html><body><div id="root"></div></body></html>`)

	p, err := ScrapeJobPosting(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.False(t, p.Found())
}

func TestScrapeJobPosting_Errors(t *testing.T) {
	_, err := ScrapeJobPosting(context.Background(), "", nil)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "no job URL provided")

	server := serveHTML(t, http.StatusForbidden, "blocked")
	_, err = ScrapeJobPosting(context.Background(), server.URL, nil)
	assert.ErrorContains(t, err, "403")

	opts := &ScrapeOptions{
		UseBrowser: true,
		render: func(context.Context, string) (string, error) {
			return "", errors.New("chrome not installed")
		},
	}
	_, err = ScrapeJobPosting(context.Background(), server.URL, opts)
	assert.ErrorContains(t, err, "browser rendering failed")
}

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"San Francisco, CA (Hybrid)", "San Francisco, CA"},
		{"Austin, TX, USA", "Austin, TX"},
		{"Boston, MA, United States of America", "Boston, MA"},
		{"Chicago, Illinois, Cook County", "Chicago, Illinois"},
		{"Seattle (On-site)", "Seattle"},
		{"Salt Lake City, Utah", "Salt Lake City, Utah"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLocation(tt.in))
		})
	}
}

func TestShouldIncludeLocation(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"Remote", false},
		{"Remote - US", false},
		{"United States", false},
		{"Hybrid, Denver", false},
		{"Work from home", false},
		{"Canada", false},
		{" Germany ", false},
		{"Austin, TX", true},
		{"Columbus, OH", true},
		{"Toronto, Canada", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldIncludeLocation(tt.in))
		})
	}
}
