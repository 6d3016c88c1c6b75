package summary

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/wikisum/core/internal/models"
)

// Repository wraps summary persistence. Lookups return (nil, nil) on a miss.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Find(url string, wordCount int) (*models.SummaryModel, error) {
	var m models.SummaryModel
	err := r.db.Where("url = ? AND word_count = ?", url, wordCount).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// FindLatest returns the most recently created summary for a URL, any word
// count.
func (r *Repository) FindLatest(url string) (*models.SummaryModel, error) {
	var m models.SummaryModel
	err := r.db.Where("url = ?", url).Order("id DESC").First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// Insert stores a new summary. When a concurrent request already inserted the
// same (url, word_count) pair, the existing row is returned with isNew=false.
func (r *Repository) Insert(m *models.SummaryModel) (*models.SummaryModel, bool, error) {
	err := r.db.Create(m).Error
	if err == nil {
		return m, true, nil
	}
	if !isDuplicateKey(err) {
		return nil, false, err
	}

	existing, findErr := r.Find(m.URL, m.WordCount)
	if findErr != nil {
		return nil, false, findErr
	}
	if existing == nil {
		return nil, false, err
	}
	return existing, false, nil
}

// UpdateTranslation repairs a summary whose translation previously failed.
// UpdatedAt is set here and only here; rows are otherwise immutable.
func (r *Repository) UpdateTranslation(m *models.SummaryModel, text *string, origin string) error {
	now := time.Now().UTC()
	err := r.db.Model(m).Updates(map[string]interface{}{
		"summary_pt":        text,
		"summary_pt_origin": origin,
		"updated_at":        now,
	}).Error
	if err != nil {
		return err
	}
	m.SummaryPt = text
	m.SummaryPtOrigin = origin
	m.UpdatedAt = &now
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
