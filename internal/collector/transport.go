package collector

import (
	"context"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	DefaultFetchTimeout = 30 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	defaultAccept     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	fetchMaxBodyBytes = 8 << 20 // 8MB，列表页和 feed 都远小于此
)

// PageFetcher 获取原始响应体：fetch(url, headers, timeout) → bytes | FetchError
type PageFetcher interface {
	Get(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

// CollyFetcher 基于 colly 的 PageFetcher，每次请求新建一个 collector
type CollyFetcher struct {
	UserAgent string
	Timeout   time.Duration
	// Transport 为空时使用 http.DefaultTransport
	Transport http.RoundTripper
}

func NewCollyFetcher(userAgent string, timeout time.Duration) *CollyFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &CollyFetcher{UserAgent: userAgent, Timeout: timeout}
}

func (f *CollyFetcher) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	c := colly.NewCollector(
		colly.UserAgent(f.UserAgent),
		colly.MaxBodySize(fetchMaxBodyBytes),
	)
	c.SetRequestTimeout(f.Timeout)

	base := f.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.WithTransport(&ctxTransport{ctx: ctx, base: base})

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", defaultAccept)
		for k, v := range headers {
			r.Headers.Set(k, v)
		}
	})

	var (
		body   []byte
		status int
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(rawURL); err != nil {
		fe := &FetchError{URL: rawURL, Err: err}
		if status >= 300 {
			fe.Status = status
		}
		return nil, fe
	}
	if status < 200 || status >= 300 {
		return nil, &FetchError{URL: rawURL, Status: status}
	}
	return body, nil
}

// ctxTransport 让 colly 发出的请求受调用方 ctx 控制
type ctxTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
