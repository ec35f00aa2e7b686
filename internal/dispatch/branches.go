package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/tutorbot/internal/docstore"
	"github.com/abhisek/tutorbot/internal/event"
	"github.com/abhisek/tutorbot/internal/guide"
	"github.com/abhisek/tutorbot/internal/quizmaster"
	"github.com/abhisek/tutorbot/internal/session"
	"github.com/abhisek/tutorbot/internal/tutor"
)

// fallbackText is the user-safe response when a collaborator fails.
// The user never sees internal error detail.
func fallbackText(action string) string {
	return fmt.Sprintf("Sorry, I couldn't %s just now. Please try again in a moment.", action)
}

// handleQuestion answers a free-form question. Mode is unchanged.
func (d *Dispatcher) handleQuestion(ctx context.Context, st *session.State, utterance string) (string, bool) {
	callCtx, cancel := d.callCtx(ctx)
	defer cancel()

	answer, err := d.tutor.AnswerQuestion(callCtx, tutor.AnswerInput{
		Question:   utterance,
		Topic:      st.Topic,
		Difficulty: st.Difficulty,
		History:    st.RecentHistory(6),
	})
	if err != nil {
		return fallbackText("answer that"), true
	}
	return answer, false
}

// handleQuizRequest generates a quiz and moves the session into quiz
// mode. On failure the session stays exactly where it was.
func (d *Dispatcher) handleQuizRequest(ctx context.Context, st *session.State, utterance string) (string, bool) {
	if topic, subtopic := d.extractor.ExtractTopic(utterance); topic != "" {
		st.Topic = topic
		if subtopic != "" {
			st.Subtopic = subtopic
		}
	}
	topic := st.Topic
	if topic == "" {
		topic = session.DefaultTopic
		st.Topic = topic
	}
	subtopic := st.Subtopic
	if subtopic == "" {
		subtopic = session.DefaultSubtopic
		st.Subtopic = subtopic
	}

	total, _ := asPositiveInt(st.GetContext(session.CtxTotalQuestions, nil))
	if total < 1 {
		total = session.DefaultQuestions
	}

	callCtx, cancel := d.callCtx(ctx)
	defer cancel()

	quiz, err := d.quiz.GenerateQuiz(callCtx, quizmaster.GenerateInput{
		StudentID:    st.StudentID,
		Topic:        topic,
		Subtopic:     subtopic,
		Difficulty:   st.Difficulty,
		NumQuestions: total,
	})
	if err != nil {
		return fallbackText("put a quiz together"), true
	}

	if err := st.StartQuiz(quiz.Key); err != nil {
		return fallbackText("start the quiz"), true
	}
	if err := st.BeginQuizProgress(len(quiz.Questions)); err != nil {
		st.EndQuiz()
		return fallbackText("start the quiz"), true
	}
	st.SetContext(session.CtxQuizContent, quiz.Topic)

	d.publish(event.KeyQuizStarted, map[string]any{
		"quiz_id":    quiz.Key,
		"student_id": st.StudentID,
		"topic":      quiz.Topic,
		"questions":  len(quiz.Questions),
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Quiz time! %d questions on %s. Answer with A, B, C, or D.\n\n", len(quiz.Questions), quiz.Topic)
	b.WriteString(renderQuestion(quiz.Questions[0], 0, len(quiz.Questions)))
	return b.String(), false
}

// handleQuizAnswer grades the answer against the active quiz and drives
// the quiz sub-state-machine, ending the quiz on the last question.
func (d *Dispatcher) handleQuizAnswer(ctx context.Context, st *session.State, utterance string) (string, bool) {
	callCtx, cancel := d.callCtx(ctx)
	defer cancel()

	quiz, err := d.repo.Quiz(callCtx, st.ActiveQuizID)
	if err != nil {
		return fallbackText("check that answer"), true
	}

	index, _, ok := st.QuizProgress()
	if !ok {
		return fallbackText("check that answer"), true
	}

	eval, err := d.quiz.EvaluateAnswer(callCtx, quiz, quizmaster.EvaluateInput{
		StudentID:     st.StudentID,
		QuestionIndex: index,
		Utterance:     utterance,
	})
	if err != nil {
		return fallbackText("check that answer"), true
	}

	// Unreadable answers re-ask the same question without advancing.
	if !eval.Recognized {
		return eval.Feedback, false
	}

	completed, err := st.AdvanceQuiz()
	if err != nil {
		return fallbackText("check that answer"), true
	}

	if !completed {
		nextIndex, total, _ := st.QuizProgress()
		var b strings.Builder
		b.WriteString(eval.Feedback)
		b.WriteString("\n\n")
		b.WriteString(renderQuestion(quiz.Questions[nextIndex], nextIndex, total))
		return b.String(), false
	}

	return d.completeQuiz(callCtx, st, quiz, eval), false
}

// completeQuiz runs result analysis, persists the result, and moves the
// session to review mode. Analysis degrades internally, so the
// transition happens even when the model is down.
func (d *Dispatcher) completeQuiz(ctx context.Context, st *session.State, quiz *docstore.QuizRecord, eval *quizmaster.Evaluation) string {
	var b strings.Builder
	b.WriteString(eval.Feedback)
	b.WriteString("\n\nThat was the last question!")

	result, err := d.quiz.AnalyzeResults(ctx, quiz)
	if err == nil {
		fmt.Fprintf(&b, " You scored %d out of %d.\n%s", result.Correct, result.Total, result.Analysis)
		d.publish(event.KeyQuizCompleted, map[string]any{
			"quiz_id":    quiz.Key,
			"student_id": st.StudentID,
			"score":      result.Score,
		})
	} else {
		b.WriteString(" I couldn't save the final score, but the quiz is done.")
	}

	st.EndQuiz()
	return b.String()
}

// handleContent generates a lesson and moves the session to guided
// learning.
func (d *Dispatcher) handleContent(ctx context.Context, st *session.State, utterance string) (string, bool) {
	if topic, subtopic := d.extractor.ExtractTopic(utterance); topic != "" {
		st.Topic = topic
		if subtopic != "" {
			st.Subtopic = subtopic
		}
	}
	if st.Topic == "" {
		st.Topic = session.DefaultTopic
	}
	if st.Subtopic == "" {
		st.Subtopic = session.DefaultSubtopic
	}

	callCtx, cancel := d.callCtx(ctx)
	defer cancel()

	content, err := d.guide.LearningContent(callCtx, guide.ContentInput{
		Topic:      st.Topic,
		Subtopic:   st.Subtopic,
		Difficulty: st.Difficulty,
	})
	if err != nil {
		return fallbackText("put that lesson together"), true
	}

	st.Mode = session.ModeGuidedLearning
	return content, false
}

// handleProgress summarizes progress. Mode is unchanged.
func (d *Dispatcher) handleProgress(ctx context.Context, st *session.State) (string, bool) {
	callCtx, cancel := d.callCtx(ctx)
	defer cancel()

	report, err := d.progress.Summary(callCtx, st.StudentID, 0)
	if err != nil {
		return fallbackText("pull up your progress"), true
	}
	return report.Report, false
}

// handleStudyPlan builds a study plan. Mode is unchanged.
func (d *Dispatcher) handleStudyPlan(ctx context.Context, st *session.State, utterance string) (string, bool) {
	goal, timeline := d.extractor.ExtractGoal(utterance)

	topic := st.Topic
	if topic == "" {
		topic = session.DefaultTopic
	}

	callCtx, cancel := d.callCtx(ctx)
	defer cancel()

	plan, err := d.guide.StudyPlan(callCtx, guide.PlanInput{
		StudentID: st.StudentID,
		Topic:     topic,
		Goal:      goal,
		Timeline:  timeline,
	})
	if err != nil {
		return fallbackText("draw up a study plan"), true
	}
	return plan.Plan, false
}

// renderQuestion formats one question for the response.
func renderQuestion(q docstore.QuizQuestion, index, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question %d of %d: %s\n", index+1, total, q.Text)
	for _, key := range []string{"A", "B", "C", "D"} {
		fmt.Fprintf(&b, "%s) %s\n", key, q.Options[key])
	}
	return strings.TrimRight(b.String(), "\n")
}

func asPositiveInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, n > 0
	case float64:
		return int(n), n > 0
	}
	return 0, false
}
