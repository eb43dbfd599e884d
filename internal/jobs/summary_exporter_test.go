package jobs

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"deepdive/interview/internal/models"
	"deepdive/interview/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:jobs_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	st := store.New(db)
	if err := st.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return st
}

func seedSummaries(t *testing.T, st *store.Store, count int) {
	t.Helper()
	topic := &models.Topic{Title: "Topic", Outline: "Outline", KeyQuestions: []string{"q1"}}
	if err := st.CreateTopic(topic); err != nil {
		t.Fatalf("failed to create topic: %v", err)
	}
	for i := 1; i <= count; i++ {
		interview := &models.Interview{TopicID: topic.ID}
		if err := st.CreateInterview(interview); err != nil {
			t.Fatalf("failed to create interview: %v", err)
		}
		sum := &models.Summary{
			InterviewID:   interview.ID,
			TopicID:       topic.ID,
			TopicTitle:    topic.Title,
			SummaryNumber: i,
			Takeaways:     "takeaways",
			Points:        []int{5},
			Explanations:  []string{"fine"},
		}
		if err := st.CreateSummary(sum); err != nil {
			t.Fatalf("failed to create summary: %v", err)
		}
	}
}

func TestRunExportWritesJSONL(t *testing.T) {
	st := newTestStore(t)
	seedSummaries(t, st, 3)

	dir := t.TempDir()
	job := NewSummaryExporterJob(st, &ExporterConfig{ExportDir: dir, ExportEnabled: true})

	if err := job.RunExport(); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one export file, got %d (err %v)", len(entries), err)
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "summary_export_") || !strings.HasSuffix(name, ".jsonl") {
		t.Fatalf("unexpected export file name: %s", name)
	}

	file, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("failed to open export file: %v", err)
	}
	defer file.Close()

	lines := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record exportRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines+1, err)
		}
		if record.SummaryID == "" || record.TopicTitle != "Topic" {
			t.Fatalf("incomplete record: %+v", record)
		}
		lines++
	}
	if lines != 3 {
		t.Fatalf("expected 3 JSONL lines, got %d", lines)
	}

	// All summaries are now marked exported, so a second run writes nothing.
	pending, _ := st.UnexportedSummaries(0)
	if len(pending) != 0 {
		t.Fatalf("expected no pending summaries, got %d", len(pending))
	}
	if err := job.RunExport(); err != nil {
		t.Fatalf("second export failed: %v", err)
	}
	entries, _ = os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("second run should not create a file, got %d files", len(entries))
	}
}

func TestStartDisabledDoesNotSchedule(t *testing.T) {
	st := newTestStore(t)
	job := NewSummaryExporterJob(st, &ExporterConfig{ExportEnabled: false})
	if err := job.Start(); err != nil {
		t.Fatalf("disabled start should be a no-op, got %v", err)
	}
	job.Stop()
}

func TestStartRejectsBadSchedule(t *testing.T) {
	st := newTestStore(t)
	job := NewSummaryExporterJob(st, &ExporterConfig{ExportEnabled: true, Schedule: "not a schedule"})
	if err := job.Start(); err == nil {
		t.Fatal("expected error for invalid cron schedule")
	}
}
