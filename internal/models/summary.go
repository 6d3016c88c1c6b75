package models

import "time"

// SummaryModel caches generated Wikipedia summaries.
// The (url, word_count) pair is the cache key; the composite unique index is
// what resolves concurrent inserts for the same article and length.
type SummaryModel struct {
	ID              uint       `json:"id"                gorm:"primaryKey;autoIncrement"`
	URL             string     `json:"url"               gorm:"type:text;not null;index:ix_summaries_url;uniqueIndex:uq_summaries_url_word_count"`
	WordCount       int        `json:"word_count"        gorm:"not null;uniqueIndex:uq_summaries_url_word_count"`
	Summary         string     `json:"summary"           gorm:"type:text;not null"`
	SummaryOrigin   string     `json:"summary_origin"    gorm:"type:text;not null;default:unknown"`
	SummaryPt       *string    `json:"summary_pt"        gorm:"type:text"`
	SummaryPtOrigin string     `json:"summary_pt_origin" gorm:"type:text;not null;default:unknown"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"       gorm:"autoUpdateTime:false"` // set only on translation repair
}

func (SummaryModel) TableName() string { return "summaries" }
