package summary

import (
	"fmt"
	"strings"
	"time"

	"deepdive/interview/internal/models"
	"deepdive/interview/internal/store"
)

// Export renders the stored summary of an interview in the requested format.
func Export(st *store.Store, interviewID, format string) (*models.SummaryExport, error) {
	sum, err := st.SummaryByInterview(interviewID)
	if err != nil {
		return nil, err
	}
	interview, err := st.InterviewByID(interviewID)
	if err != nil {
		return nil, err
	}
	topic, err := st.TopicByID(interview.TopicID)
	if err != nil {
		return nil, err
	}

	if format == models.ExportFormatText {
		var b strings.Builder
		fmt.Fprintf(&b, "Interview topic: %s\n", topic.Title)
		fmt.Fprintf(&b, "Interview outline: %s\n\n", topic.Outline)
		fmt.Fprintf(&b, "Key takeaways:\n%s\n\n", sum.Takeaways)
		b.WriteString("Scores and explanations:\n")
		for i, point := range sum.Points {
			explanation := ""
			if i < len(sum.Explanations) {
				explanation = sum.Explanations[i]
			}
			fmt.Fprintf(&b, "%d. Score: %d\n   Explanation: %s\n\n", i+1, point, explanation)
		}
		fmt.Fprintf(&b, "Exported at: %s", time.Now().Format(time.RFC3339))
		return &models.SummaryExport{
			ExportedAt: time.Now(),
			Content:    b.String(),
		}, nil
	}

	return &models.SummaryExport{
		Topic:        topic.Title,
		Outline:      topic.Outline,
		Takeaways:    sum.Takeaways,
		Points:       sum.Points,
		Explanations: sum.Explanations,
		ExportedAt:   time.Now(),
	}, nil
}
