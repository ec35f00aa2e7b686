package classify

import "testing"

func TestExtractTopic(t *testing.T) {
	tests := []struct {
		name         string
		utterance    string
		wantTopic    string
		wantSubtopic string
	}{
		{"quiz on topic", "quiz me on fractions", "fractions", ""},
		{"explain", "explain equivalent fractions", "equivalent fractions", ""},
		{"teach me about", "teach me about decimals", "decimals", ""},
		{"learn about", "I want to learn about geometry", "geometry", ""},
		{"trailing please", "explain fractions please", "fractions", ""},
		{"trailing punctuation", "teach me algebra!", "algebra", ""},
		{"topic and subtopic", "quiz me on fractions, unlike denominators", "fractions", "unlike denominators"},
		{"no anchor", "what is 2 + 2?", "", ""},
		{"empty", "", "", ""},
		{"anchor with nothing after", "explain ", "", ""},
	}

	var ex HeuristicExtractor
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topic, subtopic := ex.ExtractTopic(tt.utterance)
			if topic != tt.wantTopic || subtopic != tt.wantSubtopic {
				t.Errorf("ExtractTopic(%q) = (%q, %q), want (%q, %q)",
					tt.utterance, topic, subtopic, tt.wantTopic, tt.wantSubtopic)
			}
		})
	}
}

func TestExtractGoal(t *testing.T) {
	tests := []struct {
		name         string
		utterance    string
		wantGoal     string
		wantTimeline string
	}{
		{"goal and timeline", "my goal is to master algebra. timeline is 6 weeks", "master algebra", "6 weeks"},
		{"goal only", "goal: pass the entrance exam", "pass the entrance exam", ""},
		{"timeline only", "study plan with a timeline of 2 months", "", "2 months"},
		{"neither", "make me a study plan", "", ""},
	}

	var ex HeuristicExtractor
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal, timeline := ex.ExtractGoal(tt.utterance)
			if goal != tt.wantGoal || timeline != tt.wantTimeline {
				t.Errorf("ExtractGoal(%q) = (%q, %q), want (%q, %q)",
					tt.utterance, goal, timeline, tt.wantGoal, tt.wantTimeline)
			}
		})
	}
}
