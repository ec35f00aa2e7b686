package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/tutorbot/internal/app"
	"github.com/abhisek/tutorbot/internal/docstore"
	"github.com/abhisek/tutorbot/internal/event"
	"github.com/abhisek/tutorbot/internal/guide"
	"github.com/abhisek/tutorbot/internal/quizmaster"
	"github.com/abhisek/tutorbot/internal/session"
	"github.com/abhisek/tutorbot/internal/tutor"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type createSessionRequest struct {
	StudentID  string `json:"student_id"`
	Name       string `json:"name"`
	Topic      string `json:"topic"`
	Subtopic   string `json:"subtopic"`
	Difficulty int    `json:"difficulty_level"`
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID, err := s.app.StartSession(c.Request.Context(), app.StartSessionRequest{
		StudentID:  req.StudentID,
		Name:       req.Name,
		Topic:      req.Topic,
		Subtopic:   req.Subtopic,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"student_id": req.StudentID,
		"message":    "Session created successfully",
	})
}

type messageRequest struct {
	SessionID string `json:"session_id"`
	StudentID string `json:"student_id"`
	Message   string `json:"message"`
}

func (s *Server) handleMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Collaborator failures come back as fallback responses, not
	// errors; a turn always answers.
	res, err := s.app.HandleTurn(c.Request.Context(), req.SessionID, req.StudentID, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response": res.Response,
		"intent":   res.Intent,
		"fallback": res.Fallback,
		"state":    res.Summary,
	})
}

type endSessionRequest struct {
	SessionID       string `json:"session_id"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (s *Server) endSession(c *gin.Context) {
	var req endSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	duration := time.Duration(req.DurationMinutes) * time.Minute
	if err := s.app.EndSession(c.Request.Context(), req.SessionID, duration); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session ended successfully"})
}

type generateQuizRequest struct {
	StudentID     string `json:"student_id"`
	SessionID     string `json:"session_id"`
	Topic         string `json:"topic"`
	Subtopic      string `json:"subtopic"`
	QuestionCount int    `json:"question_count"`
}

// questionView is a question as shown to the student: no correct
// option, no explanation.
type questionView struct {
	Text    string            `json:"text"`
	Options map[string]string `json:"options"`
}

func (s *Server) generateQuiz(c *gin.Context) {
	var req generateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.StudentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id is required"})
		return
	}
	if req.Topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required"})
		return
	}

	ctx := c.Request.Context()
	difficulty, err := s.repo.DifficultyLevel(ctx, req.StudentID, req.Topic)
	if err != nil {
		difficulty = docstore.DefaultDifficulty
	}

	quiz, err := s.quiz.GenerateQuiz(ctx, quizmaster.GenerateInput{
		StudentID:    req.StudentID,
		Topic:        req.Topic,
		Subtopic:     req.Subtopic,
		Difficulty:   difficulty,
		NumQuestions: req.QuestionCount,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	// A quiz generated for a live session moves that session into
	// quiz mode, same as the conversational path.
	if req.SessionID != "" {
		if st, ok := s.app.Registry().Get(req.SessionID); ok {
			if err := st.StartQuiz(quiz.Key); err == nil {
				if err := st.BeginQuizProgress(len(quiz.Questions)); err != nil {
					st.EndQuiz()
				} else {
					st.SetContext(session.CtxQuizContent, quiz.Topic)
				}
			}
		}
	}

	questions := make([]questionView, len(quiz.Questions))
	for i, q := range quiz.Questions {
		questions[i] = questionView{Text: q.Text, Options: q.Options}
	}

	_ = s.publisher.Publish(event.KeyQuizStarted, gin.H{
		"quiz_id":    quiz.Key,
		"student_id": quiz.StudentID,
		"topic":      quiz.Topic,
		"questions":  len(quiz.Questions),
	})

	c.JSON(http.StatusOK, gin.H{
		"quiz_id":   quiz.Key,
		"topic":     quiz.Topic,
		"subtopic":  quiz.Subtopic,
		"questions": questions,
	})
}

type evaluateAnswerRequest struct {
	StudentID     string `json:"student_id"`
	QuizID        string `json:"quiz_id"`
	QuestionIndex *int   `json:"question_index"`
	Answer        string `json:"answer"`
}

func (s *Server) evaluateAnswer(c *gin.Context) {
	var req evaluateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.StudentID == "" || req.QuizID == "" || req.QuestionIndex == nil || req.Answer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id, quiz_id, question_index, and answer are required"})
		return
	}

	ctx := c.Request.Context()
	quiz, err := s.repo.Quiz(ctx, req.QuizID)
	if err != nil {
		writeError(c, err)
		return
	}

	eval, err := s.quiz.EvaluateAnswer(ctx, quiz, quizmaster.EvaluateInput{
		StudentID:     req.StudentID,
		QuestionIndex: *req.QuestionIndex,
		Utterance:     req.Answer,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recognized":     eval.Recognized,
		"selected":       eval.Selected,
		"correct":        eval.Correct,
		"correct_option": eval.CorrectOption,
		"feedback":       eval.Feedback,
	})
}

type followUpQuizRequest struct {
	StudentID string `json:"student_id"`
	QuizID    string `json:"quiz_id"`
}

func (s *Server) followUpQuiz(c *gin.Context) {
	var req followUpQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.StudentID == "" || req.QuizID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id and quiz_id are required"})
		return
	}

	ctx := c.Request.Context()
	prior, err := s.repo.Quiz(ctx, req.QuizID)
	if err != nil {
		writeError(c, err)
		return
	}

	quiz, err := s.quiz.FollowUpQuiz(ctx, prior)
	if err != nil {
		writeError(c, err)
		return
	}

	questions := make([]questionView, len(quiz.Questions))
	for i, q := range quiz.Questions {
		questions[i] = questionView{Text: q.Text, Options: q.Options}
	}

	_ = s.publisher.Publish(event.KeyQuizStarted, gin.H{
		"quiz_id":    quiz.Key,
		"student_id": quiz.StudentID,
		"topic":      quiz.Topic,
		"questions":  len(quiz.Questions),
	})

	c.JSON(http.StatusOK, gin.H{
		"quiz_id":   quiz.Key,
		"topic":     quiz.Topic,
		"subtopic":  quiz.Subtopic,
		"questions": questions,
	})
}

func (s *Server) quizResult(c *gin.Context) {
	quizID := c.Query("quiz_id")
	if c.Query("student_id") == "" || quizID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id and quiz_id are required"})
		return
	}

	result, err := s.repo.ResultForQuiz(c.Request.Context(), quizID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) progressSummary(c *gin.Context) {
	studentID := c.Query("student_id")
	if studentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id is required"})
		return
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))

	report, err := s.progress.Summary(c.Request.Context(), studentID, days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) learningContent(c *gin.Context) {
	studentID := c.Query("student_id")
	topic := c.Query("topic")
	if studentID == "" || topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id and topic are required"})
		return
	}

	ctx := c.Request.Context()
	difficulty, err := s.repo.DifficultyLevel(ctx, studentID, topic)
	if err != nil {
		difficulty = docstore.DefaultDifficulty
	}

	content, err := s.guide.LearningContent(ctx, guide.ContentInput{
		Topic:      topic,
		Subtopic:   c.Query("subtopic"),
		Difficulty: difficulty,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"topic":    topic,
		"subtopic": c.Query("subtopic"),
		"content":  content,
	})
}

type studyPlanRequest struct {
	StudentID string `json:"student_id"`
	Topic     string `json:"topic"`
	Goal      string `json:"goal"`
	Timeline  string `json:"timeline"`
}

func (s *Server) studyPlan(c *gin.Context) {
	var req studyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.StudentID == "" || req.Topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id and topic are required"})
		return
	}

	plan, err := s.guide.StudyPlan(c.Request.Context(), guide.PlanInput{
		StudentID: req.StudentID,
		Topic:     req.Topic,
		Goal:      req.Goal,
		Timeline:  req.Timeline,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (s *Server) resources(c *gin.Context) {
	studentID := c.Query("student_id")
	topic := c.Query("topic")
	if studentID == "" || topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id and topic are required"})
		return
	}

	ctx := c.Request.Context()
	difficulty, err := s.repo.DifficultyLevel(ctx, studentID, topic)
	if err != nil {
		difficulty = docstore.DefaultDifficulty
	}

	resources, err := s.guide.RecommendResources(ctx, guide.ResourceInput{
		Topic:      topic,
		Difficulty: difficulty,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"topic":     topic,
		"resources": resources,
	})
}

func (s *Server) learningPatterns(c *gin.Context) {
	studentID := c.Query("student_id")
	if studentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id is required"})
		return
	}

	patterns, err := s.progress.LearningPattern(c.Request.Context(), studentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patterns": patterns})
}

func (s *Server) difficultyRecommendation(c *gin.Context) {
	studentID := c.Query("student_id")
	topic := c.Query("topic")
	if studentID == "" || topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id and topic are required"})
		return
	}

	current, recommended, err := s.progress.RecommendDifficulty(c.Request.Context(), studentID, topic)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"topic":             topic,
		"current_level":     current,
		"recommended_level": recommended,
	})
}

func (s *Server) hint(c *gin.Context) {
	studentID := c.Query("student_id")
	question := c.Query("question")
	topic := c.Query("topic")
	if studentID == "" || question == "" || topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id, question, and topic are required"})
		return
	}

	ctx := c.Request.Context()
	difficulty, err := s.repo.DifficultyLevel(ctx, studentID, topic)
	if err != nil {
		difficulty = docstore.DefaultDifficulty
	}

	hint, err := s.tutor.ProvideHint(ctx, tutor.HintInput{
		Question:   question,
		Topic:      topic,
		Difficulty: difficulty,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hint": hint})
}

type misconceptionRequest struct {
	StudentID     string `json:"student_id"`
	Topic         string `json:"topic"`
	Misconception string `json:"misconception"`
}

func (s *Server) misconception(c *gin.Context) {
	var req misconceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.StudentID == "" || req.Topic == "" || req.Misconception == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id, topic, and misconception are required"})
		return
	}

	ctx := c.Request.Context()
	difficulty, err := s.repo.DifficultyLevel(ctx, req.StudentID, req.Topic)
	if err != nil {
		difficulty = docstore.DefaultDifficulty
	}

	explanation, err := s.tutor.ExplainMisconception(ctx, tutor.MisconceptionInput{
		Topic:         req.Topic,
		Misconception: req.Misconception,
		Difficulty:    difficulty,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"explanation": explanation})
}
