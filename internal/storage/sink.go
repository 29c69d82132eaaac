package storage

import (
	"context"
	"errors"
	"log"

	"github.com/Arcshia42/immigration-news/internal/collector"
)

type runIDKey struct{}

// ContextWithRunID 把本次运行的 ID 带给各个 Sink
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Mirrored 主 Sink 失败即失败；镜像失败只记日志
type Mirrored struct {
	Primary Sink
	Mirrors []Sink
}

func NewMirrored(primary Sink, mirrors ...Sink) *Mirrored {
	return &Mirrored{Primary: primary, Mirrors: mirrors}
}

func (m *Mirrored) Write(ctx context.Context, name string, items []collector.NewsItem) error {
	if err := m.Primary.Write(ctx, name, items); err != nil {
		var pe *PersistError
		if errors.As(err, &pe) {
			return err
		}
		return &PersistError{Name: name, Err: err}
	}
	for _, mirror := range m.Mirrors {
		if mirror == nil {
			continue
		}
		if err := mirror.Write(ctx, name, items); err != nil {
			log.Printf("warn: mirror %s: %v", name, err)
		}
	}
	return nil
}
