package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_SendsBoardHeaders(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><h1>Epic Analyst</h1></body></html>`))
	}))
	defer server.Close()

	page, err := Get(context.Background(), server.URL+"/jobs/42", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, page.HTML, "Epic Analyst")
	assert.Equal(t, server.URL+"/jobs/42", page.FinalURL)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Contains(t, gotAccept, "text/html")
}

func TestGet_RejectsNonHTTPURLs(t *testing.T) {
	for _, raw := range []string{"not-a-url", "ftp://boards.example.com/job", "mailto:jobs@example.com"} {
		_, err := Get(context.Background(), raw, nil)
		var fetchErr *Error
		require.ErrorAs(t, err, &fetchErr, raw)
		assert.Contains(t, err.Error(), "invalid URL")
	}
}

func TestGet_ReturnsPageOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
		_, _ = w.Write([]byte("This job is no longer accepting applications"))
	}))
	defer server.Close()

	page, err := Get(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, page)
	assert.Equal(t, http.StatusGone, page.StatusCode)
	assert.Contains(t, err.Error(), "410")
}

func TestGet_DetectsLoginWall(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs/view/1", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/authwall?trk=job", http.StatusFound)
	})
	mux.HandleFunc("/authwall", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>Sign in</body></html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	page, err := Get(context.Background(), server.URL+"/jobs/view/1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login wall")
	assert.Contains(t, page.FinalURL, "/authwall")
}

func TestPostingText_UsesPlatformContainer(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Jobs | People | Learning</nav>
			<div class="show-more-less-html__markup">
				<h2>About the role</h2>
				<p>Build Epic Clarity reports for our clinics.</p>
			</div>
			<div class="similar-jobs">Similar jobs at Globex</div>
			<footer>Cookie policy</footer>
		</body>
	</html>`

	text, err := postingText(html, PlatformLinkedIn)
	require.NoError(t, err)
	assert.Equal(t, "About the role\nBuild Epic Clarity reports for our clinics.", text)
}

func TestPostingText_StripsApplicationForm(t *testing.T) {
	html := `
	<html>
		<body>
			<div class="job__description">
				<p>Must hold Epic certification.</p>
				<form><label>Resume</label></form>
			</div>
		</body>
	</html>`

	text, err := postingText(html, PlatformGreenhouse)
	require.NoError(t, err)
	assert.Contains(t, text, "Epic certification")
	assert.NotContains(t, text, "Resume")
}

func TestPostingText_FallsBackToBody(t *testing.T) {
	html := `<html><body><div>Remote friendly team.</div><script>track()</script></body></html>`

	text, err := postingText(html, PlatformUnknown)
	require.NoError(t, err)
	assert.Equal(t, "Remote friendly team.", text)
}
