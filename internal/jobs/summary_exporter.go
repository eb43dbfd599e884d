package jobs

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"deepdive/interview/internal/models"
	"deepdive/interview/internal/store"
)

// SummaryExporterJob periodically writes unexported summaries to JSONL files
// so they can be archived or analyzed outside the service.
type SummaryExporterJob struct {
	store  *store.Store
	config *ExporterConfig
	cron   *cron.Cron
}

// ExporterConfig contains configuration for the exporter job
type ExporterConfig struct {
	Schedule      string // Cron schedule (e.g., "0 2 * * *" for 2 AM daily)
	ExportDir     string // Directory to store exported files
	ExportEnabled bool   // Whether to run exports
}

func NewSummaryExporterJob(st *store.Store, config *ExporterConfig) *SummaryExporterJob {
	return &SummaryExporterJob{
		store:  st,
		config: config,
		cron:   cron.New(),
	}
}

// Start begins the scheduled export job
func (sej *SummaryExporterJob) Start() error {
	if !sej.config.ExportEnabled {
		log.Println("Summary export is disabled, skipping scheduler")
		return nil
	}

	log.Printf("Starting summary exporter with schedule: %s", sej.config.Schedule)

	_, err := sej.cron.AddFunc(sej.config.Schedule, func() {
		if err := sej.RunExport(); err != nil {
			log.Printf("Export job failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	sej.cron.Start()
	log.Println("Summary exporter started successfully")

	return nil
}

// Stop stops the scheduled export job
func (sej *SummaryExporterJob) Stop() {
	if sej.cron != nil {
		sej.cron.Stop()
		log.Println("Summary exporter stopped")
	}
}

// exportRecord is one JSONL line of the export file.
type exportRecord struct {
	SummaryID     string    `json:"summary_id"`
	InterviewID   string    `json:"interview_id"`
	TopicID       string    `json:"topic_id"`
	TopicTitle    string    `json:"topic_title"`
	SummaryNumber int       `json:"summary_number"`
	Takeaways     string    `json:"takeaways"`
	Points        []int     `json:"points"`
	Explanations  []string  `json:"explanations"`
	CreatedAt     time.Time `json:"created_at"`
}

// RunExport performs a single export run
func (sej *SummaryExporterJob) RunExport() error {
	log.Println("Starting summary export job...")

	summaries, err := sej.store.UnexportedSummaries(0) // no limit
	if err != nil {
		return fmt.Errorf("failed to get unexported summaries: %w", err)
	}

	if len(summaries) == 0 {
		log.Println("No unexported summaries found")
		return nil
	}

	log.Printf("Found %d unexported summaries", len(summaries))

	jsonlData, err := toJSONL(summaries)
	if err != nil {
		return fmt.Errorf("failed to encode summaries: %w", err)
	}

	if err := os.MkdirAll(sej.config.ExportDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("summary_export_%s.jsonl", timestamp)
	path := filepath.Join(sej.config.ExportDir, filename)

	if err := os.WriteFile(path, jsonlData, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	log.Printf("Exported %d summaries to %s", len(summaries), path)

	ids := make([]string, len(summaries))
	for i, s := range summaries {
		ids[i] = s.ID
	}
	if err := sej.store.MarkSummariesExported(ids); err != nil {
		return fmt.Errorf("failed to mark as exported: %w", err)
	}

	return nil
}

func toJSONL(summaries []models.Summary) ([]byte, error) {
	var out []byte
	for _, s := range summaries {
		line, err := json.Marshal(exportRecord{
			SummaryID:     s.ID,
			InterviewID:   s.InterviewID,
			TopicID:       s.TopicID,
			TopicTitle:    s.TopicTitle,
			SummaryNumber: s.SummaryNumber,
			Takeaways:     s.Takeaways,
			Points:        s.Points,
			Explanations:  s.Explanations,
			CreatedAt:     s.CreatedAt,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out, nil
}

// RunManual runs an export manually (for testing or on-demand exports)
func (sej *SummaryExporterJob) RunManual() error {
	return sej.RunExport()
}
