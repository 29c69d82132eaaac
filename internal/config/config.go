package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Arcshia42/immigration-news/internal/collector"
)

type Config struct {
	AppPort string
	DataDir string

	// 均非空时 API 启用 Basic Auth
	BasicAuthUser string
	BasicAuthPass string

	Timezone string
	Location *time.Location

	FetchTimeout time.Duration
	UserAgent    string
	Concurrency  int

	TranslateEnabled     bool
	TranslateTarget      string
	TranslateTimeout     time.Duration
	TranslateURL         string
	TranslateFallbackURL string
	TranslateCacheTTL    time.Duration

	// 留空表示不启用对应组件
	PostgresDSN string
	RedisAddr   string

	CronSpec    string
	SourcesFile string
	Sources     []collector.Source
}

// Load 读取 .env（如存在）和环境变量；SOURCES_FILE 指定时用 YAML 中的源替换内置列表
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warn: load .env: %v", err)
	}

	cfg := &Config{
		AppPort:              getEnv("APP_PORT", "9000"),
		DataDir:              getEnv("DATA_DIR", "data"),
		BasicAuthUser:        os.Getenv("APP_BASIC_USER"),
		BasicAuthPass:        os.Getenv("APP_BASIC_PASS"),
		Timezone:             getEnv("TIMEZONE", "Asia/Shanghai"),
		FetchTimeout:         getDuration("FETCH_TIMEOUT", collector.DefaultFetchTimeout),
		UserAgent:            getEnv("USER_AGENT", collector.DefaultUserAgent),
		Concurrency:          getInt("CRAWL_CONCURRENCY", 1),
		TranslateEnabled:     getBool("TRANSLATE_ENABLED", true),
		TranslateTarget:      getEnv("TRANSLATE_TARGET", "zh-CN"),
		TranslateTimeout:     getDuration("TRANSLATE_TIMEOUT", 10*time.Second),
		TranslateURL:         getEnv("TRANSLATE_URL", "https://translate.googleapis.com/translate_a/single"),
		TranslateFallbackURL: getEnv("TRANSLATE_FALLBACK_URL", "https://api.mymemory.translated.net/get"),
		TranslateCacheTTL:    getDuration("TRANSLATE_CACHE_TTL", 7*24*time.Hour),
		PostgresDSN:          os.Getenv("POSTGRES_DSN"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		CronSpec:             getEnv("CRON_SPEC", "0 */6 * * *"),
		SourcesFile:          os.Getenv("SOURCES_FILE"),
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	cfg.Location = loadLocation(cfg.Timezone)

	if cfg.SourcesFile != "" {
		sources, err := LoadSources(cfg.SourcesFile)
		if err != nil {
			return nil, err
		}
		cfg.Sources = sources
	} else {
		cfg.Sources = collector.DefaultSources()
	}

	log.Printf("config loaded: port=%s data=%s tz=%s sources=%d concurrency=%d translate=%v",
		cfg.AppPort, cfg.DataDir, cfg.Location, len(cfg.Sources), cfg.Concurrency, cfg.TranslateEnabled)
	return cfg, nil
}

type sourcesFile struct {
	Sources []collector.Source `yaml:"sources"`
}

// LoadSources 读取 YAML 源列表，文件中的顺序即优先级
func LoadSources(path string) ([]collector.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, err)
	}
	if len(f.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s: %w", path, collector.ErrNoSources)
	}
	seen := make(map[string]struct{}, len(f.Sources))
	for _, s := range f.Sources {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[s.Code]; ok {
			return nil, fmt.Errorf("sources file %s: duplicate code %s", path, s.Code)
		}
		seen[s.Code] = struct{}{}
	}
	return f.Sources, nil
}

// 东八区兜底，容器里可能没有 tzdata
func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("warn: load timezone %s: %v, fallback to UTC+8", name, err)
		return time.FixedZone("CST", 8*3600)
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		log.Printf("warn: %s=%q is not an integer, using %d", key, v, def)
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		log.Printf("warn: %s=%q is not a bool, using %v", key, v, def)
		return def
	}
	return b
}

// getDuration 接受 "30s" 这样的写法，也接受纯数字（按秒）
func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Printf("warn: %s=%q is not a duration, using %s", key, v, def)
	return def
}
