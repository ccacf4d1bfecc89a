package probe

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/ytget/yt-bw/internal/model"
)

// HTTP client settings for the innertube backend
const (
	InnertubeTimeout = 30 * time.Second
	DialTimeout      = 10 * time.Second
	NetworkTCP4      = "tcp4"
)

// Innertube probes metadata with a pure Go YouTube client, no executable needed
type Innertube struct {
	client *youtube.Client
}

// NewInnertube creates an innertube prober whose HTTP client honours opts
func NewInnertube(opts model.NetworkOptions) (*Innertube, error) {
	httpClient, err := newHTTPClient(opts)
	if err != nil {
		return nil, err
	}
	return &Innertube{client: &youtube.Client{HTTPClient: httpClient}}, nil
}

// Probe validates rawURL and fetches the player response once
func (p *Innertube) Probe(ctx context.Context, rawURL string) (*model.VideoInfo, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, &model.ProbeError{URL: rawURL, Err: err}
	}

	video, err := p.client.GetVideoContext(ctx, strings.TrimSpace(rawURL))
	if err != nil {
		return finish(rawURL, nil, fmt.Errorf("innertube metadata: %w", err))
	}
	return finish(rawURL, videoInfo(video), nil)
}

func videoInfo(video *youtube.Video) *model.VideoInfo {
	return &model.VideoInfo{
		ID:       video.ID,
		Title:    video.Title,
		Duration: video.Duration.Seconds(),
		Formats:  formatsFromVideo(video.Formats),
	}
}

// formatsFromVideo maps innertube formats onto descriptors. Codecs come from
// the mime type: video/* lists the video codec first, audio/* has no video.
func formatsFromVideo(formats youtube.FormatList) []model.FormatDescriptor {
	out := make([]model.FormatDescriptor, 0, len(formats))
	for _, f := range formats {
		mediaType, codecs, ext := parseMimeType(f.MimeType)

		d := model.FormatDescriptor{
			FormatID:     strconv.Itoa(f.ItagNo),
			VCodec:       model.CodecNone,
			ACodec:       model.CodecNone,
			QualityLabel: f.QualityLabel,
			Ext:          ext,
		}
		switch mediaType {
		case "video":
			if len(codecs) > 0 {
				d.VCodec = codecs[0]
			} else {
				d.VCodec = ""
			}
			if len(codecs) > 1 {
				d.ACodec = codecs[1]
			}
		case "audio":
			if len(codecs) > 0 {
				d.ACodec = codecs[0]
			}
		}
		if f.Height > 0 {
			d.Height = model.IntPtr(f.Height)
		}
		out = append(out, d)
	}
	return out
}

// parseMimeType splits `video/mp4; codecs="avc1.4d401f, mp4a.40.2"`
func parseMimeType(value string) (mediaType string, codecs []string, ext string) {
	mt, params, err := mime.ParseMediaType(value)
	if err != nil {
		return "", nil, ""
	}
	mediaType, ext, _ = strings.Cut(mt, "/")
	for _, c := range strings.Split(params["codecs"], ",") {
		if c = strings.TrimSpace(c); c != "" {
			codecs = append(codecs, c)
		}
	}
	return mediaType, codecs, ext
}

func newHTTPClient(opts model.NetworkOptions) (*http.Client, error) {
	dialer := &net.Dialer{Timeout: DialTimeout}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.ForceIPv4 {
		transport.DialContext = func(ctx context.Context, _, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, NetworkTCP4, addr)
		}
	}

	client := &http.Client{
		Timeout:   InnertubeTimeout,
		Transport: &headerTransport{base: transport, headers: opts.HTTPHeaders},
	}

	if opts.CookieFile != "" {
		jar, err := loadCookieJar(opts.CookieFile)
		if err != nil {
			return nil, err
		}
		client.Jar = jar
	}
	return client, nil
}

func loadCookieJar(path string) (http.CookieJar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cookie file: %w", err)
	}
	defer f.Close()

	cookies, err := ParseNetscape(f)
	if err != nil {
		return nil, fmt.Errorf("parse cookie file: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	for _, c := range cookies {
		host := strings.TrimPrefix(c.Domain, ".")
		if host == "" {
			continue
		}
		jar.SetCookies(&url.URL{Scheme: "https", Host: host}, []*http.Cookie{c})
	}
	return jar, nil
}

// headerTransport overrides request headers with the configured ones
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	for name, value := range t.headers {
		clone.Header.Set(name, value)
	}
	return t.base.RoundTrip(clone)
}
