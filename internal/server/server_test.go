package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/yt-bw/internal/model"
	"github.com/ytget/yt-bw/internal/session"
)

type stubProber struct {
	err error
}

func (p stubProber) Probe(ctx context.Context, rawURL string) (*model.VideoInfo, error) {
	if p.err != nil {
		return nil, &model.ProbeError{URL: rawURL, Err: p.err}
	}
	return &model.VideoInfo{
		Title: "Clip",
		Formats: []model.FormatDescriptor{
			{VCodec: "avc1", Height: model.IntPtr(720)},
			{VCodec: "avc1", Height: model.IntPtr(360)},
		},
	}, nil
}

type stubAcquirer struct {
	dir string
}

func (a stubAcquirer) Acquire(ctx context.Context, url string, resolution int) (*model.AcquisitionJob, error) {
	job := model.NewJob(url, resolution, a.dir)
	for _, s := range []model.JobState{model.JobStateDownloading, model.JobStateReconciling, model.JobStateReady} {
		if err := job.Transition(s); err != nil {
			return job, err
		}
	}
	return job, os.WriteFile(job.InputPath, []byte("color"), 0644)
}

type stubConverter struct{}

func (stubConverter) Convert(ctx context.Context, job *model.AcquisitionJob) error {
	if err := job.Transition(model.JobStateConverting); err != nil {
		return err
	}
	if err := os.WriteFile(job.OutputPath, []byte("grey frames"), 0644); err != nil {
		return err
	}
	os.Remove(job.InputPath)
	return job.Transition(model.JobStateConverted)
}

type stubPublisher struct{}

func (stubPublisher) Publish(ctx context.Context, localPath string) (string, error) {
	return "https://bucket.example/bw/clip.mp4?sig=1", nil
}

func newTestServer(t *testing.T, prober stubProber, limiter *RateLimiter, deps func(*session.Deps)) *httptest.Server {
	t.Helper()
	d := session.Deps{
		Prober:    prober,
		Acquirer:  stubAcquirer{dir: t.TempDir()},
		Converter: stubConverter{},
		Store:     session.NewMemoryStore(time.Hour),
	}
	if deps != nil {
		deps(&d)
	}
	srv, err := New(session.NewFlow(d, time.Minute), limiter, Options{
		SessionTTL:     time.Hour,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "# metrics") }),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// newClient keeps the session cookie and does not follow redirects
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := newJar()
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestServer_IndexIssuesSessionCookie(t *testing.T) {
	ts := newTestServer(t, stubProber{}, nil, nil)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Fetch qualities")
	assert.NotContains(t, body, "Choose resolution")

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookieName {
			found = true
			assert.True(t, c.HttpOnly)
			assert.Equal(t, 3600, c.MaxAge)
		}
	}
	assert.True(t, found)
}

func TestServer_FetchConvertDownload(t *testing.T) {
	ts := newTestServer(t, stubProber{}, nil, nil)
	client := newClient(t)

	resp, err := client.PostForm(ts.URL+"/fetch", url.Values{"url": {"https://www.youtube.com/watch?v=abc"}})
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Choose resolution")
	assert.Contains(t, body, `<option value="720"`)
	assert.Contains(t, body, `<option value="360"`)

	resp, err = client.PostForm(ts.URL+"/convert", url.Values{"resolution": {"360"}})
	require.NoError(t, err)
	body = readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Video processed successfully")
	assert.Contains(t, body, `href="/download"`)

	resp, err = client.Get(ts.URL + "/download")
	require.NoError(t, err)
	body = readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "grey frames", body)
	assert.Equal(t, "video/mp4", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="bw_video.mp4"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, int64(len("grey frames")), resp.ContentLength)

	// The file is handed out once
	resp, err = client.Get(ts.URL + "/download")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_FetchErrorShownInline(t *testing.T) {
	ts := newTestServer(t, stubProber{err: errors.New("video unavailable")}, nil, nil)
	client := newClient(t)

	resp, err := client.PostForm(ts.URL+"/fetch", url.Values{"url": {"https://www.youtube.com/watch?v=gone"}})
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `class="error"`)
	assert.Contains(t, body, "video unavailable")
	assert.NotContains(t, body, "Choose resolution")

	// The error survives a reload
	resp, err = client.Get(ts.URL + "/")
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), "video unavailable")
}

func TestServer_ConvertWithoutFetch(t *testing.T) {
	ts := newTestServer(t, stubProber{}, nil, nil)
	client := newClient(t)

	resp, err := client.PostForm(ts.URL+"/convert", url.Values{"resolution": {"720"}})
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, session.ErrNotFetched.Error())

	resp, err = client.PostForm(ts.URL+"/convert", url.Values{"resolution": {"abc"}})
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_DownloadRedirectsToPublishedCopy(t *testing.T) {
	ts := newTestServer(t, stubProber{}, nil, func(d *session.Deps) {
		d.Publisher = stubPublisher{}
	})
	client := newClient(t)

	resp, err := client.PostForm(ts.URL+"/fetch", url.Values{"url": {"https://youtu.be/abc"}})
	require.NoError(t, err)
	readBody(t, resp)

	resp, err = client.PostForm(ts.URL+"/convert", url.Values{"resolution": {"720"}})
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), "https://bucket.example/bw/clip.mp4?sig=1")

	resp, err = client.Get(ts.URL + "/download")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://bucket.example/bw/clip.mp4?sig=1", resp.Header.Get("Location"))
}

func TestServer_Reset(t *testing.T) {
	ts := newTestServer(t, stubProber{}, nil, nil)
	client := newClient(t)

	resp, err := client.PostForm(ts.URL+"/fetch", url.Values{"url": {"https://youtu.be/abc"}})
	require.NoError(t, err)
	readBody(t, resp)

	resp, err = client.PostForm(ts.URL+"/reset", nil)
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, err = client.Get(ts.URL + "/")
	require.NoError(t, err)
	assert.NotContains(t, readBody(t, resp), "Choose resolution")
}

func TestServer_HealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, stubProber{}, nil, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, readBody(t, resp))

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	assert.Equal(t, "# metrics", readBody(t, resp))
}

func TestServer_RateLimitedPost(t *testing.T) {
	ts := newTestServer(t, stubProber{}, NewRateLimiter(1, nil), nil)
	client := newClient(t)

	resp, err := client.PostForm(ts.URL+"/fetch", url.Values{"url": {"https://youtu.be/abc"}})
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.PostForm(ts.URL+"/fetch", url.Values{"url": {"https://youtu.be/abc"}})
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))

	// Page views are not limited
	resp, err = client.Get(ts.URL + "/")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{session.ErrBusy, http.StatusConflict},
		{session.ErrNotFetched, http.StatusBadRequest},
		{session.ErrUnknownResolution, http.StatusBadRequest},
		{session.ErrNothingToDeliver, http.StatusNotFound},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("probe failed"), http.StatusOK},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestSessionID_RejectsForgedCookie(t *testing.T) {
	srv := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "../../etc"})
	rec := httptest.NewRecorder()

	id := srv.sessionID(rec, req)
	assert.NotEqual(t, "../../etc", id)
	assert.True(t, strings.Contains(rec.Header().Get("Set-Cookie"), id))
}
