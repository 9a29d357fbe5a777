package logger

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/planetsclub/pagable/data/search"
	"github.com/planetsclub/pagable/nanoid"
	"github.com/sirupsen/logrus"
)

const hookTimeout = 2 * time.Second

// SearchHook indexes log entries into a search index, one document per entry.
// Index names get a daily suffix: <index>-2006.01.02.
type SearchHook struct {
	store  search.Store
	index  string
	levels []logrus.Level
}

// NewSearchHook creates a hook writing entries at or above level
func NewSearchHook(store search.Store, index string, level logrus.Level) *SearchHook {
	levels := make([]logrus.Level, 0, len(logrus.AllLevels))
	for _, l := range logrus.AllLevels {
		if l <= level {
			levels = append(levels, l)
		}
	}
	return &SearchHook{store: store, index: index, levels: levels}
}

// Levels implements logrus.Hook
func (h *SearchHook) Levels() []logrus.Level {
	return h.levels
}

// Fire implements logrus.Hook
func (h *SearchHook) Fire(entry *logrus.Entry) error {
	ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
	defer cancel()

	if _, err := h.store.Index(ctx, h.indexName(entry.Time), nanoid.Lower(), logDocument(entry), false); err != nil {
		return fmt.Errorf("search hook: %w", err)
	}
	return nil
}

func (h *SearchHook) indexName(t time.Time) string {
	if h.index == "" {
		return "default-log"
	}
	return h.index + "-" + t.Format("2006.01.02")
}

func logDocument(entry *logrus.Entry) map[string]any {
	doc := make(map[string]any, len(entry.Data)+5)
	for key, value := range entry.Data {
		if err, ok := value.(error); ok {
			value = err.Error()
		}
		doc[key] = value
	}
	doc["@timestamp"] = entry.Time.Format(time.RFC3339Nano)
	doc["timestamp"] = entry.Time.UnixMilli()
	doc["level"] = entry.Level.String()
	doc["message"] = entry.Message
	if hostname, err := os.Hostname(); err == nil {
		doc["hostname"] = hostname
	}
	return doc
}
