package guide

import (
	"fmt"
	"strings"
)

const contentSystemPrompt = `You are a tutor writing a short lesson.

Rules:
- Teach the topic at the stated difficulty level (1 = beginner, 5 = advanced).
- Structure: one-sentence overview, the core idea, one worked example, one thing to try.
- Plain text. No markdown headers, no LaTeX.
- Keep it under 300 words.`

const planSystemPrompt = `You are a tutor writing a study plan.

Rules:
- Break the timeline into stages, each with a focus and a concrete activity.
- Aim the plan at the stated goal; do not pad it with generic advice.
- Plain text, one stage per line.`

const resourcesSystemPrompt = `You are a tutor recommending learning resources.

Rules:
- Recommend three to five resources matched to the topic and level.
- Each resource is one of: video, article, exercise, book.
- Descriptions say what the resource covers and who it suits, in one sentence.
- Invent plausible titles; do not fabricate URLs.`

func buildContentMessage(in ContentInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "Subtopic: %s\n", in.Subtopic)
	fmt.Fprintf(&b, "Difficulty level: %d\n", in.Difficulty)
	return b.String()
}

func buildPlanMessage(in PlanInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "Goal: %s\n", in.Goal)
	fmt.Fprintf(&b, "Timeline: %s\n", in.Timeline)
	return b.String()
}

func buildResourcesMessage(in ResourceInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "Difficulty level: %d\n", in.Difficulty)
	return b.String()
}
