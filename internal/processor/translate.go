package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/Arcshia42/immigration-news/internal/collector"
)

const (
	DefaultTranslateURL     = "https://translate.googleapis.com/translate_a/single"
	DefaultMyMemoryURL      = "https://api.mymemory.translated.net/get"
	DefaultTranslateTarget  = "zh-CN"
	DefaultTranslateTimeout = 10 * time.Second

	translateMaxResponseBytes = 256 * 1024
	translateMaxLen           = 500
	// 只看开头这么多字符判断是否已是目标语言
	detectPrefixRunes = 64
)

// Translator 把标题翻译成目标语言；任何失败都返回原文，不会中断运行
type Translator struct {
	Target      string
	Endpoint    string
	FallbackURL string // MyMemory，留空则不回退
	Client      *http.Client
	Cache       Cache // 可为空
}

func NewTranslator(target string, timeout time.Duration, cache Cache) *Translator {
	if target == "" {
		target = DefaultTranslateTarget
	}
	if timeout <= 0 {
		timeout = DefaultTranslateTimeout
	}
	return &Translator{
		Target:      target,
		Endpoint:    DefaultTranslateURL,
		FallbackURL: DefaultMyMemoryURL,
		Client:      &http.Client{Timeout: timeout},
		Cache:       cache,
	}
}

// Translate 返回译文以及标题是否被改变。
// 开头的 "[CODE] " 标记不参与翻译，译完后原样接回。
func (t *Translator) Translate(ctx context.Context, title string) (string, bool) {
	tag, text := collector.SplitTag(strings.TrimSpace(title))
	text = strings.TrimSpace(text)
	if text == "" || isTargetScript(text, t.Target) {
		return title, false
	}

	out := t.lookup(ctx, text)
	if out == "" || out == text {
		return title, false
	}
	return tag + out, true
}

// TranslateItems 返回新切片，原始 items 不被修改；
// 只有标题真正变化的条目才会设置 OriginalTitle
func (t *Translator) TranslateItems(ctx context.Context, items []collector.NewsItem, concurrency int) ([]collector.NewsItem, int) {
	out := make([]collector.NewsItem, len(items))
	copy(out, items)
	changed := make([]bool, len(items))

	if concurrency < 1 {
		concurrency = 1
	}
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i := range out {
		i := i
		g.Go(func() error {
			if tr, ok := t.Translate(ctx, out[i].Title); ok {
				out[i].OriginalTitle = out[i].Title
				out[i].Title = tr
				changed[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, c := range changed {
		if c {
			n++
		}
	}
	return out, n
}

func (t *Translator) lookup(ctx context.Context, text string) string {
	if rs := []rune(text); len(rs) > translateMaxLen {
		text = string(rs[:translateMaxLen])
	}

	key := cacheKey(t.Target, text)
	if t.Cache != nil {
		if v, ok := t.Cache.Get(ctx, key); ok {
			return v
		}
	}

	out := t.viaGoogle(ctx, text)
	if out == "" && t.FallbackURL != "" {
		out = t.viaMyMemory(ctx, text)
	}
	if out != "" && t.Cache != nil {
		t.Cache.Set(ctx, key, out)
	}
	return out
}

// viaGoogle 使用 Google Translate 公开接口（client=gtx，无需密钥），原文放在表单里 POST
func (t *Translator) viaGoogle(ctx context.Context, text string) string {
	if t.Endpoint == "" {
		return ""
	}
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", t.Target)
	q.Set("dt", "t")
	form := url.Values{"q": {text}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint+"?"+q.Encode(), strings.NewReader(form.Encode()))
	if err != nil {
		return ""
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	body, err := t.do(req)
	if err != nil {
		log.Printf("translate (google-gtx): %v", err)
		return ""
	}

	// 响应格式: [[["翻译文本","原文",...],...],...]
	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		log.Printf("translate (google-gtx): decode error: %v", err)
		return ""
	}
	if len(raw) == 0 {
		return ""
	}
	outer, ok := raw[0].([]any)
	if !ok {
		return ""
	}
	var result strings.Builder
	for _, seg := range outer {
		pair, ok := seg.([]any)
		if !ok || len(pair) < 1 {
			continue
		}
		if s, ok := pair[0].(string); ok {
			result.WriteString(s)
		}
	}
	return strings.TrimSpace(result.String())
}

func (t *Translator) viaMyMemory(ctx context.Context, text string) string {
	q := url.Values{}
	q.Set("langpair", sourceLangForMyMemory(text)+"|"+t.Target)
	q.Set("q", text)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.FallbackURL+"?"+q.Encode(), nil)
	if err != nil {
		return ""
	}
	body, err := t.do(req)
	if err != nil {
		log.Printf("translate (mymemory): %v", err)
		return ""
	}
	var out struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return ""
	}
	s := strings.TrimSpace(out.ResponseData.TranslatedText)
	// 配额用尽时接口仍返回 200，正文是警告
	if strings.HasPrefix(strings.ToUpper(s), "MYMEMORY WARNING") {
		log.Printf("translate (mymemory): %s", s)
		return ""
	}
	return s
}

func (t *Translator) do(req *http.Request) ([]byte, error) {
	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTranslateTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, translateMaxResponseBytes))
}

// isTargetScript 只检查开头 detectPrefixRunes 个字符
func isTargetScript(s, target string) bool {
	rs := []rune(strings.TrimSpace(s))
	if len(rs) > detectPrefixRunes {
		rs = rs[:detectPrefixRunes]
	}
	match := scriptMatcher(target)

	var hit, total int
	for _, r := range rs {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsDigit(r) {
			continue
		}
		total++
		if match(r) {
			hit++
		}
	}
	if total == 0 {
		return true
	}
	if isCJKTarget(target) {
		return hit >= 1 && (hit*4 >= total || hit >= 2)
	}
	return hit*2 >= total
}

func isCJKTarget(target string) bool {
	lang := strings.ToLower(strings.SplitN(target, "-", 2)[0])
	return lang == "zh" || lang == "ja" || lang == "ko"
}

func scriptMatcher(target string) func(rune) bool {
	switch strings.ToLower(strings.SplitN(target, "-", 2)[0]) {
	case "zh":
		return isCJK
	case "ja":
		return func(r rune) bool { return isCJK(r) || unicode.In(r, unicode.Hiragana, unicode.Katakana) }
	case "ko":
		return func(r rune) bool { return unicode.Is(unicode.Hangul, r) }
	case "ru", "uk", "bg", "sr":
		return func(r rune) bool { return unicode.Is(unicode.Cyrillic, r) }
	case "ar", "fa":
		return func(r rune) bool { return unicode.Is(unicode.Arabic, r) }
	default:
		return func(r rune) bool { return unicode.Is(unicode.Latin, r) }
	}
}

func isCJK(r rune) bool {
	if r >= 0x4e00 && r <= 0x9fff {
		return true
	}
	if r >= 0x3400 && r <= 0x4dbf {
		return true
	}
	if r >= 0x3000 && r <= 0x303f {
		return true
	}
	return false
}

func sourceLangForMyMemory(s string) string {
	for _, r := range s {
		if r >= 0x3040 && r <= 0x309f || r >= 0x30a0 && r <= 0x30ff {
			return "ja"
		}
		if isCJK(r) {
			return "zh-CN"
		}
	}
	return "en"
}
