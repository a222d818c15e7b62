package models

import "time"

// InteractionLog is one completed voice interaction: the transcribed input,
// the extracted intent entities, the response we spoke back, and the
// sentiment label. Append-only; negative-sentiment interactions are never
// logged because the pipeline escalates before reaching this point.
type InteractionLog struct {
	ID        uint      `gorm:"primaryKey"`
	UserInput string    `gorm:"not null"`
	Intent    string    `gorm:"not null"`
	Product   string    `gorm:"not null"`
	Quantity  int       `gorm:"not null"`
	Metric    string
	Response  string    `gorm:"not null"`
	Sentiment string    `gorm:"not null"`
	CreatedAt time.Time
}

func (l *InteractionLog) TableName() string {
	return "interaction_logs"
}
