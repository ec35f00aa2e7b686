package progressagent

import (
	"sort"
	"time"

	"github.com/abhisek/tutorbot/internal/docstore"
)

// TopicStats aggregates a student's quiz outcomes on one topic.
type TopicStats struct {
	Topic    string  `json:"topic"`
	Attempts int     `json:"attempts"`
	AvgScore float64 `json:"avg_score"`
}

// computeTopicStats folds quiz results into per-topic aggregates,
// keeping only results newer than the cutoff. Topics come back in
// alphabetical order for stable prompts and responses.
func computeTopicStats(results []docstore.QuizResult, cutoff time.Time) []TopicStats {
	type acc struct {
		attempts int
		sum      float64
	}
	byTopic := make(map[string]*acc)

	for _, r := range results {
		if r.CreatedAt.Before(cutoff) {
			continue
		}
		a := byTopic[r.Topic]
		if a == nil {
			a = &acc{}
			byTopic[r.Topic] = a
		}
		a.attempts++
		a.sum += r.Score
	}

	out := make([]TopicStats, 0, len(byTopic))
	for topic, a := range byTopic {
		out = append(out, TopicStats{
			Topic:    topic,
			Attempts: a.attempts,
			AvgScore: a.sum / float64(a.attempts),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Topic < out[j].Topic })
	return out
}

// Difficulty adjustment thresholds on average score.
const (
	raiseThreshold = 0.8
	lowerThreshold = 0.5
)

// recommendLevel maps the current level and recent average score to a
// recommended level, clamped to [1,5]. No recent results means no
// change.
func recommendLevel(current int, stats []TopicStats) int {
	attempts := 0
	sum := 0.0
	for _, s := range stats {
		attempts += s.Attempts
		sum += s.AvgScore * float64(s.Attempts)
	}
	if attempts == 0 {
		return current
	}

	avg := sum / float64(attempts)
	next := current
	switch {
	case avg >= raiseThreshold:
		next = current + 1
	case avg < lowerThreshold:
		next = current - 1
	}

	if next < 1 {
		next = 1
	}
	if next > 5 {
		next = 5
	}
	return next
}
