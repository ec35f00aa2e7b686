package tutor

import (
	"fmt"
	"strings"

	"github.com/abhisek/tutorbot/internal/session"
)

const answerSystemPrompt = `You are a patient, encouraging tutor answering a student's question.

Rules:
- Answer directly and correctly, at the stated difficulty level (1 = beginner, 5 = advanced).
- Keep the answer short: a few sentences, then one worked example if it helps.
- Use plain text. No markdown headers, no LaTeX.
- If the question is ambiguous, answer the most likely reading and say what you assumed.
- Stay on the student's current topic when one is set.`

const hintSystemPrompt = `You are a tutor giving a hint, not an answer.

Rules:
- Give exactly one nudge that moves the student forward.
- Never state the final answer or the full solution.
- One or two sentences, plain text.`

const misconceptionSystemPrompt = `You are a tutor untangling a specific misunderstanding.

Rules:
- First state what the student likely believes and why it is tempting.
- Then show why it breaks, with the smallest possible counterexample.
- End with the correct rule in one sentence.
- Plain text, at the stated difficulty level.`

func buildAnswerMessage(in AnswerInput, maxHistory int) string {
	var b strings.Builder

	if in.Topic != "" {
		fmt.Fprintf(&b, "Current topic: %s\n", in.Topic)
	}
	fmt.Fprintf(&b, "Difficulty level: %d\n", in.Difficulty)

	if history := formatHistory(in.History, maxHistory); history != "" {
		b.WriteString("\nRecent conversation:\n")
		b.WriteString(history)
		b.WriteString("\n")
	}

	b.WriteString("\nStudent's question:\n")
	b.WriteString(in.Question)
	return b.String()
}

func buildHintMessage(in HintInput) string {
	var b strings.Builder
	if in.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	}
	fmt.Fprintf(&b, "Difficulty level: %d\n", in.Difficulty)
	b.WriteString("\nThe student is stuck on:\n")
	b.WriteString(in.Question)
	return b.String()
}

func buildMisconceptionMessage(in MisconceptionInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "Difficulty level: %d\n", in.Difficulty)
	b.WriteString("\nThe misunderstanding to address:\n")
	b.WriteString(in.Misconception)
	return b.String()
}

// formatHistory renders the last maxTurns history entries, oldest first.
func formatHistory(history []session.Turn, maxTurns int) string {
	if len(history) == 0 || maxTurns <= 0 {
		return ""
	}
	if len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}

	var b strings.Builder
	for _, t := range history {
		label := "Student"
		if t.Role == session.RoleSystem {
			label = "Tutor"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, t.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
