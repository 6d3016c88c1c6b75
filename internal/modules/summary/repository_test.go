package summary

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wikisum/core/internal/database"
	"github.com/wikisum/core/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestRepositoryFindMiss(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	got, err := repo.Find("https://en.wikipedia.org/wiki/Alan_Turing", 100)
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if got != nil {
		t.Errorf("Find = %+v, want nil on miss", got)
	}
}

func TestRepositoryInsertAndFind(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	m := &models.SummaryModel{
		URL:             "https://en.wikipedia.org/wiki/Alan_Turing",
		WordCount:       100,
		Summary:         "Turing founded computer science.",
		SummaryOrigin:   "llm",
		SummaryPtOrigin: "disabled",
	}
	stored, isNew, err := repo.Insert(m)
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if !isNew {
		t.Error("first insert reported isNew=false")
	}
	if stored.ID == 0 {
		t.Error("stored row has no ID")
	}
	if stored.CreatedAt.IsZero() {
		t.Error("stored row has no CreatedAt")
	}
	if stored.UpdatedAt != nil {
		t.Errorf("fresh row has UpdatedAt = %v, want nil", stored.UpdatedAt)
	}

	got, err := repo.Find(m.URL, m.WordCount)
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if got == nil || got.ID != stored.ID {
		t.Errorf("Find = %+v, want row %d", got, stored.ID)
	}
}

func TestRepositoryInsertDuplicate(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	first := &models.SummaryModel{
		URL:             "https://en.wikipedia.org/wiki/Alan_Turing",
		WordCount:       100,
		Summary:         "First writer wins.",
		SummaryOrigin:   "llm",
		SummaryPtOrigin: "disabled",
	}
	if _, _, err := repo.Insert(first); err != nil {
		t.Fatalf("first Insert error: %v", err)
	}

	dup := &models.SummaryModel{
		URL:             first.URL,
		WordCount:       first.WordCount,
		Summary:         "Second writer loses.",
		SummaryOrigin:   "llm",
		SummaryPtOrigin: "disabled",
	}
	stored, isNew, err := repo.Insert(dup)
	if err != nil {
		t.Fatalf("duplicate Insert error: %v", err)
	}
	if isNew {
		t.Error("duplicate insert reported isNew=true")
	}
	if stored.ID != first.ID || stored.Summary != "First writer wins." {
		t.Errorf("duplicate insert returned %+v, want the existing row", stored)
	}
}

func TestRepositoryDistinctWordCounts(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	url := "https://en.wikipedia.org/wiki/Alan_Turing"
	for _, wc := range []int{100, 200} {
		m := &models.SummaryModel{
			URL:             url,
			WordCount:       wc,
			Summary:         fmt.Sprintf("Summary at %d words.", wc),
			SummaryOrigin:   "llm",
			SummaryPtOrigin: "disabled",
		}
		if _, isNew, err := repo.Insert(m); err != nil || !isNew {
			t.Fatalf("Insert wc=%d: isNew=%v err=%v", wc, isNew, err)
		}
	}

	latest, err := repo.FindLatest(url)
	if err != nil {
		t.Fatalf("FindLatest error: %v", err)
	}
	if latest == nil || latest.WordCount != 200 {
		t.Errorf("FindLatest = %+v, want the word_count=200 row", latest)
	}
}

func TestRepositoryUpdateTranslation(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	m := &models.SummaryModel{
		URL:             "https://en.wikipedia.org/wiki/Alan_Turing",
		WordCount:       100,
		Summary:         "Turing founded computer science.",
		SummaryOrigin:   "llm",
		SummaryPtOrigin: "error",
	}
	if _, _, err := repo.Insert(m); err != nil {
		t.Fatalf("Insert error: %v", err)
	}

	pt := "Turing fundou a ciência da computação."
	if err := repo.UpdateTranslation(m, &pt, "llm"); err != nil {
		t.Fatalf("UpdateTranslation error: %v", err)
	}

	got, err := repo.Find(m.URL, m.WordCount)
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if got.SummaryPt == nil || *got.SummaryPt != pt {
		t.Errorf("SummaryPt = %v, want %q", got.SummaryPt, pt)
	}
	if got.SummaryPtOrigin != "llm" {
		t.Errorf("SummaryPtOrigin = %q, want llm", got.SummaryPtOrigin)
	}
	if got.UpdatedAt == nil {
		t.Error("UpdatedAt not set by translation repair")
	}
}
