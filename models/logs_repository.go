package models

import (
	"gorm.io/gorm"
)

// SentimentCounts aggregates interaction logs per sentiment label.
type SentimentCounts struct {
	Positive int64 `json:"positive"`
	Negative int64 `json:"negative"`
	Neutral  int64 `json:"neutral"`
}

type LogsRepository struct {
	db *gorm.DB
}

func NewLogsRepository(db *gorm.DB) *LogsRepository {
	return &LogsRepository{
		db: db,
	}
}

// Append inserts one interaction log row. The collection is append-only.
func (r *LogsRepository) Append(entry *InteractionLog) error {
	return r.db.Create(entry).Error
}

// Recent returns the most recent limit entries, newest first.
func (r *LogsRepository) Recent(limit int) ([]InteractionLog, error) {
	var logs []InteractionLog
	if err := r.db.Order("id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// CountBySentiment tallies all interaction logs per sentiment label.
// Labels outside the known three are counted as neutral.
func (r *LogsRepository) CountBySentiment() (SentimentCounts, error) {
	type row struct {
		Sentiment string
		Count     int64
	}
	var rows []row
	err := r.db.Model(&InteractionLog{}).
		Select("sentiment, count(*) as count").
		Group("sentiment").
		Scan(&rows).Error
	if err != nil {
		return SentimentCounts{}, err
	}

	var counts SentimentCounts
	for _, rw := range rows {
		switch rw.Sentiment {
		case "POSITIVE":
			counts.Positive += rw.Count
		case "NEGATIVE":
			counts.Negative += rw.Count
		default:
			counts.Neutral += rw.Count
		}
	}
	return counts, nil
}
