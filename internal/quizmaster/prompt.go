package quizmaster

import (
	"fmt"
	"strings"

	"github.com/abhisek/tutorbot/internal/docstore"
)

const generateSystemPrompt = `You are a quiz author writing multiple-choice questions for a student.

Rules:
- Write exactly the requested number of questions, no more, no fewer.
- Each question has exactly four options labeled A through D, with exactly one correct.
- Distractors should reflect plausible mistakes, not random values.
- Match the stated difficulty level (1 = beginner, 5 = advanced).
- Tag every question with the concepts it tests, drawn from the given concept list.
- Plain text only. No markdown, no LaTeX.`

const feedbackSystemPrompt = `You are a tutor reacting to one quiz answer.

Rules:
- One or two sentences, plain text.
- If the answer was correct, confirm it and add one reinforcing detail.
- If it was wrong, name the correct option and explain it briefly without scolding.`

const analysisSystemPrompt = `You are a tutor summarizing a finished quiz.

Rules:
- Two to four sentences, plain text.
- Name what went well and which concepts need work, based on the miss list.
- End with one concrete suggestion for what to practice next.`

func buildGenerateMessage(in GenerateInput, concepts []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "Subtopic: %s\n", in.Subtopic)
	fmt.Fprintf(&b, "Difficulty level: %d\n", in.Difficulty)
	fmt.Fprintf(&b, "Number of questions: %d\n", in.NumQuestions)
	fmt.Fprintf(&b, "Concepts to cover: %s\n", strings.Join(concepts, ", "))
	return b.String()
}

func buildFeedbackMessage(q docstore.QuizQuestion, selected string, correct bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", q.Text)
	for _, key := range optionKeys {
		fmt.Fprintf(&b, "%s: %s\n", key, q.Options[key])
	}
	fmt.Fprintf(&b, "Correct option: %s\n", q.CorrectOption)
	fmt.Fprintf(&b, "Student picked: %s\n", selected)
	fmt.Fprintf(&b, "Student was correct: %t\n", correct)
	fmt.Fprintf(&b, "Reference explanation: %s\n", q.Explanation)
	return b.String()
}

func buildAnalysisMessage(quiz *docstore.QuizRecord, answers []docstore.QuizAnswer, correct int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", quiz.Topic)
	fmt.Fprintf(&b, "Score: %d of %d correct\n", correct, len(quiz.Questions))

	missed := MissedConcepts(quiz, answers)
	if len(missed) == 0 {
		b.WriteString("Missed concepts: none\n")
	} else {
		fmt.Fprintf(&b, "Missed concepts: %s\n", strings.Join(missed, ", "))
	}
	return b.String()
}
