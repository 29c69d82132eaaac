package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Arcshia42/immigration-news/internal/collector"
)

const (
	LatestName     = "latest"
	snapshotPrefix = "news_"
	snapshotExt    = ".json"
)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")

	datedName = regexp.MustCompile(`^news_\d{4}-\d{2}-\d{2}$`)
)

// PersistError 快照写入失败，是整个运行中唯一致命的错误
type PersistError struct {
	Name string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Name, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Sink 接收一份命名快照
type Sink interface {
	Write(ctx context.Context, name string, items []collector.NewsItem) error
}

// SnapshotName 日期快照名，如 news_2024-05-01
func SnapshotName(date string) string {
	return snapshotPrefix + date
}

// FileStore 把快照写成 <dir>/<name>.json，UTF-8、缩进两格、不转义非 ASCII
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// Write 先写临时文件再 rename，读者不会看到写了一半的快照
func (s *FileStore) Write(_ context.Context, name string, items []collector.NewsItem) error {
	if err := validName(name); err != nil {
		return &PersistError{Name: name, Err: err}
	}
	if items == nil {
		items = []collector.NewsItem{}
	}

	data, err := encodeItems(items)
	if err != nil {
		return &PersistError{Name: name, Err: err}
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return &PersistError{Name: name, Err: err}
	}

	tmp, err := os.CreateTemp(s.Dir, "."+name+"-*.tmp")
	if err != nil {
		return &PersistError{Name: name, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // rename 成功后为空操作

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &PersistError{Name: name, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &PersistError{Name: name, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return &PersistError{Name: name, Err: err}
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		return &PersistError{Name: name, Err: err}
	}
	return nil
}

// Load 读取一份快照；不存在时返回 ErrSnapshotNotFound
func (s *FileStore) Load(name string) ([]collector.NewsItem, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return nil, err
	}
	var items []collector.NewsItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return items, nil
}

// List 返回所有日期快照名，新的在前；latest 不在其中
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotExt) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), snapshotExt)
		if datedName.MatchString(name) {
			names = append(names, name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.Dir, name+snapshotExt)
}

func encodeItems(items []collector.NewsItem) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func validName(name string) error {
	if name == LatestName || datedName.MatchString(name) {
		return nil
	}
	return fmt.Errorf("invalid snapshot name %q", name)
}
