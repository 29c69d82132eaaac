package collector

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
)

type Kind string

const (
	KindHTML Kind = "html"
	KindFeed Kind = "feed"

	defaultMaxItems = 5
)

// Source 描述一个数据源：抓哪里、怎么定位、怎么过滤。
// 默认列表见 DefaultSources，也可以由 YAML 文件整体替换。
type Source struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
	Kind Kind   `yaml:"kind"`
	URL  string `yaml:"url"`
	// 解析相对链接用，留空时取 URL 的 scheme://host
	Origin   string            `yaml:"origin"`
	Encoding string            `yaml:"encoding"`
	Headers  map[string]string `yaml:"headers"`

	// 按优先级排列的 CSS 选择器，仅 html 使用
	Selectors   []string   `yaml:"selectors"`
	Fields      FieldRules `yaml:"fields"`
	DateLayouts []string   `yaml:"date_layouts"`

	MinTitleLen int      `yaml:"min_title_len"`
	Keywords    []string `yaml:"keywords"`
	Blocklist   []string `yaml:"blocklist"`
	MaxItems    int      `yaml:"max_items"`

	IncludePublisher bool `yaml:"include_publisher"`
	Disabled         bool `yaml:"disabled"`
}

// Validate 检查必填字段并编译所有选择器，非法配置在启动时就报错
func (s Source) Validate() error {
	if strings.TrimSpace(s.Code) == "" {
		return fmt.Errorf("source %q: code is required", s.Name)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("source %s: name is required", s.Code)
	}
	if _, err := absURL(s.URL); err != nil {
		return fmt.Errorf("source %s: url: %w", s.Code, err)
	}
	if s.Origin != "" {
		if _, err := absURL(s.Origin); err != nil {
			return fmt.Errorf("source %s: origin: %w", s.Code, err)
		}
	}
	if s.MaxItems < 0 || s.MinTitleLen < 0 {
		return fmt.Errorf("source %s: max_items and min_title_len must not be negative", s.Code)
	}

	switch s.Kind {
	case KindHTML:
		if len(s.Selectors) == 0 {
			return fmt.Errorf("source %s: html source needs at least one selector", s.Code)
		}
		for _, sel := range s.Selectors {
			if _, err := cascadia.Compile(sel); err != nil {
				return fmt.Errorf("source %s: selector %q: %w", s.Code, sel, err)
			}
		}
	case KindFeed:
	default:
		return fmt.Errorf("source %s: %w %q", s.Code, ErrUnknownKind, s.Kind)
	}

	for _, sel := range []string{s.Fields.TitleSelector, s.Fields.LinkSelector, s.Fields.DateSelector} {
		if sel == "" {
			continue
		}
		if _, err := cascadia.Compile(sel); err != nil {
			return fmt.Errorf("source %s: field selector %q: %w", s.Code, sel, err)
		}
	}
	return nil
}

func (s Source) Limit() int {
	if s.MaxItems <= 0 {
		return defaultMaxItems
	}
	return s.MaxItems
}

func (s Source) Relevance() Relevance {
	return Relevance{
		MinTitleLen: s.MinTitleLen,
		Keywords:    s.Keywords,
		Blocklist:   s.Blocklist,
	}
}

func (s Source) OriginURL() (*url.URL, error) {
	if s.Origin != "" {
		return absURL(s.Origin)
	}
	u, err := absURL(s.URL)
	if err != nil {
		return nil, err
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}

func (s Source) Normalizer(origin *url.URL, loc *time.Location, runTime time.Time) Normalizer {
	return Normalizer{
		Code:             s.Code,
		Name:             s.Name,
		Origin:           origin,
		Layouts:          s.DateLayouts,
		Location:         loc,
		RunTime:          runTime,
		IncludePublisher: s.IncludePublisher,
	}
}

func absURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute http(s) url", raw)
	}
	return u, nil
}

// EnabledSources 过滤掉 disabled 的源，保持原有优先级顺序
func EnabledSources(all []Source) []Source {
	out := make([]Source, 0, len(all))
	for _, s := range all {
		if !s.Disabled {
			out = append(out, s)
		}
	}
	return out
}
