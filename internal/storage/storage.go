package storage

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Arcshia42/immigration-news/internal/collector"
)

// Snapshot 数据库中的快照镜像，一个名字一行，重复运行时覆盖
type Snapshot struct {
	Name      string         `gorm:"primaryKey;size:32" json:"name"`
	RunID     string         `gorm:"size:36;index" json:"runId"`
	ItemCount int            `json:"itemCount"`
	Items     datatypes.JSON `gorm:"type:jsonb" json:"items"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// News 按条目展开的镜像，便于按来源或日期查询；以链接为幂等键
type News struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Title         string `gorm:"size:512" json:"title"`
	OriginalTitle string `gorm:"size:512" json:"originalTitle"`
	Link          string `gorm:"size:1024;uniqueIndex" json:"link"`
	Source        string `gorm:"size:128;index" json:"source"`
	Date          string `gorm:"size:10;index" json:"date"` // YYYY-MM-DD
	RunID         string `gorm:"size:36" json:"runId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DBStore 把快照镜像到 PostgreSQL，是文件快照之外的可选副本
type DBStore struct {
	DB *gorm.DB
}

func NewDBStore(dsn string) (*DBStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Snapshot{}, &News{}); err != nil {
		return nil, err
	}
	return &DBStore{DB: db}, nil
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// truncateRunesDB 按 rune 数截断，保证不超过字段长度
func truncateRunesDB(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

func (s *DBStore) Write(ctx context.Context, name string, items []collector.NewsItem) error {
	if items == nil {
		items = []collector.NewsItem{}
	}
	clean := make([]collector.NewsItem, len(items))
	for i, it := range items {
		it.Title = toValidUTF8(it.Title)
		it.OriginalTitle = toValidUTF8(it.OriginalTitle)
		clean[i] = it
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return err
	}

	runID := RunIDFromContext(ctx)
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snap := &Snapshot{
			Name:      name,
			RunID:     runID,
			ItemCount: len(clean),
			Items:     datatypes.JSON(data),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"run_id", "item_count", "items", "updated_at"}),
		}).Create(snap).Error; err != nil {
			return err
		}

		// latest 与当天快照内容相同，条目只随日期快照写一次
		if name == LatestName {
			return nil
		}
		for _, it := range clean {
			n := &News{
				Title:         truncateRunesDB(it.Title, 512),
				OriginalTitle: truncateRunesDB(it.OriginalTitle, 512),
				Link:          it.Link,
				Source:        it.Source,
				Date:          it.Date,
				RunID:         runID,
			}
			// 以链接作为幂等键，已存在时更新标题等字段
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "link"}},
				DoUpdates: clause.AssignmentColumns([]string{"title", "original_title", "source", "date", "run_id", "updated_at"}),
			}).Create(n).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Close 关闭底层连接池
func (s *DBStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("warn: close db: %v", err)
		return err
	}
	return nil
}
