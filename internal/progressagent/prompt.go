package progressagent

import (
	"fmt"
	"strings"

	"github.com/abhisek/tutorbot/internal/docstore"
)

const summarySystemPrompt = `You are a tutor writing a progress summary for a student.

Rules:
- Speak to the student directly, encouraging but honest.
- Cover each topic's trend, strongest area, weakest area.
- Three to five sentences, plain text.`

const patternSystemPrompt = `You are a tutor describing a student's learning patterns.

Rules:
- Describe habits visible in the data: how often they practice, how they
  respond to harder material, where they improve fastest.
- Do not invent facts not supported by the numbers.
- Two to four sentences, plain text.`

func buildSummaryMessage(stats []TopicStats, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Period: last %d days\n", days)
	b.WriteString("Per-topic quiz results:\n")
	b.WriteString(formatStats(stats))
	return b.String()
}

func buildPatternMessage(stats []TopicStats, results []docstore.QuizResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total quizzes taken: %d\n", len(results))
	b.WriteString("Per-topic quiz results:\n")
	b.WriteString(formatStats(stats))

	if len(results) > 0 {
		b.WriteString("\nRecent scores, newest first:\n")
		for i, r := range results {
			if i >= 10 {
				break
			}
			fmt.Fprintf(&b, "- %s: %.0f%%\n", r.Topic, r.Score*100)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStats(stats []TopicStats) string {
	if len(stats) == 0 {
		return "None"
	}
	var b strings.Builder
	for _, s := range stats {
		fmt.Fprintf(&b, "- %s: %d attempts, average %.0f%%\n", s.Topic, s.Attempts, s.AvgScore*100)
	}
	return strings.TrimRight(b.String(), "\n")
}
