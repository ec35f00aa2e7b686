package classify

import (
	"testing"

	"github.com/abhisek/tutorbot/internal/session"
)

func TestClassifyPriorityOrder(t *testing.T) {
	tests := []struct {
		name       string
		utterance  string
		mode       session.Mode
		quizActive bool
		want       Intent
	}{
		{"quiz request from exploration", "quiz me on fractions", session.ModeExploration, false, IntentQuizRequest},
		{"test me phrase", "can you test me?", session.ModeExploration, false, IntentQuizRequest},
		{"answer while quiz active", "B", session.ModeQuiz, true, IntentQuizAnswer},
		{"full sentence answer while quiz active", "i think the answer is B", session.ModeQuiz, true, IntentQuizAnswer},
		{"command escapes quiz capture", "/progress", session.ModeQuiz, true, IntentProgress},
		{"quiz word outside quiz mode", "what was my last quiz score", session.ModeReview, false, IntentQuizRequest},
		{"progress request", "show my progress", session.ModeExploration, false, IntentProgress},
		{"how am i doing", "How am I doing so far?", session.ModeGuidedLearning, false, IntentProgress},
		{"study plan", "make me a study plan", session.ModeExploration, false, IntentStudyPlan},
		{"learning plan", "i need a learning plan for algebra", session.ModeExploration, false, IntentStudyPlan},
		{"explain", "explain equivalent fractions", session.ModeExploration, false, IntentContent},
		{"teach me", "teach me about decimals", session.ModeReview, false, IntentContent},
		{"learn about", "i want to learn about geometry", session.ModeExploration, false, IntentContent},
		{"plain question", "what is 2 + 2?", session.ModeExploration, false, IntentQuestion},
		{"empty utterance", "", session.ModeExploration, false, IntentQuestion},
		{"quiz beats progress", "quiz me on my progress topics", session.ModeExploration, false, IntentQuizRequest},
		{"progress beats study plan", "progress on my study plan", session.ModeExploration, false, IntentProgress},
		{"quiz active but mode not quiz", "B", session.ModeReview, true, IntentQuestion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.utterance, tt.mode, tt.quizActive)
			if got != tt.want {
				t.Errorf("Classify(%q, %q, %v) = %q, want %q",
					tt.utterance, tt.mode, tt.quizActive, got, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	utterances := []string{
		"quiz me on fractions",
		"B",
		"explain decimals",
		"how am i doing",
		"what is pi?",
	}

	for _, u := range utterances {
		first := Classify(u, session.ModeQuiz, true)
		for range 100 {
			if got := Classify(u, session.ModeQuiz, true); got != first {
				t.Fatalf("Classify(%q) flapped: %q then %q", u, first, got)
			}
		}
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	if got := Classify("QUIZ ME", session.ModeExploration, false); got != IntentQuizRequest {
		t.Errorf("Classify(QUIZ ME) = %q, want %q", got, IntentQuizRequest)
	}
	if got := Classify("Teach Me About Algebra", session.ModeExploration, false); got != IntentContent {
		t.Errorf("Classify(Teach Me...) = %q, want %q", got, IntentContent)
	}
}
