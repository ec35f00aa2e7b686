package classify

import "strings"

// Extractor pulls topic hints out of free text. It is a replaceable
// strategy: the heuristic implementation does phrase splitting, not
// language understanding.
type Extractor interface {
	// ExtractTopic returns a topic and subtopic guess. Empty strings
	// mean the utterance gave no usable hint.
	ExtractTopic(utterance string) (topic, subtopic string)

	// ExtractGoal returns learning-goal and timeline hints for study
	// plan requests. Empty strings mean no hint.
	ExtractGoal(utterance string) (goal, timeline string)
}

// topicAnchors are scanned in order; the text after the first match
// becomes the topic guess.
var topicAnchors = []string{
	"learn about ",
	"teach me about ",
	"teach me ",
	"explain ",
	" about ",
	" on ",
}

// noiseSuffixes are trimmed off a topic guess.
var noiseSuffixes = []string{"please", "for me", "to me", "today"}

// HeuristicExtractor implements Extractor with anchor-word splitting.
type HeuristicExtractor struct{}

func (HeuristicExtractor) ExtractTopic(utterance string) (topic, subtopic string) {
	lower := strings.ToLower(strings.TrimSpace(utterance))

	var rest string
	for _, anchor := range topicAnchors {
		if idx := strings.Index(lower, anchor); idx >= 0 {
			rest = lower[idx+len(anchor):]
			break
		}
	}
	if rest == "" {
		return "", ""
	}

	rest = strings.Trim(rest, " .,!?")
	for _, suffix := range noiseSuffixes {
		rest = strings.TrimSuffix(rest, suffix)
		rest = strings.Trim(rest, " .,!?")
	}
	if rest == "" {
		return "", ""
	}

	// "fractions, adding with unlike denominators" splits into topic
	// and subtopic; a bare phrase is all topic.
	if head, tail, found := strings.Cut(rest, ","); found {
		return strings.TrimSpace(head), strings.TrimSpace(tail)
	}
	return rest, ""
}

func (HeuristicExtractor) ExtractGoal(utterance string) (goal, timeline string) {
	lower := strings.ToLower(strings.TrimSpace(utterance))

	if idx := strings.Index(lower, "goal"); idx >= 0 {
		rest := lower[idx+len("goal"):]
		rest = strings.TrimLeft(rest, " :")
		rest = strings.TrimPrefix(rest, "is ")
		rest = strings.TrimPrefix(rest, "to ")
		if cut := strings.IndexAny(rest, ".;"); cut >= 0 {
			rest = rest[:cut]
		}
		goal = strings.Trim(rest, " ,!?")
	}

	if idx := strings.Index(lower, "timeline"); idx >= 0 {
		rest := lower[idx+len("timeline"):]
		rest = strings.TrimLeft(rest, " :")
		rest = strings.TrimPrefix(rest, "is ")
		rest = strings.TrimPrefix(rest, "of ")
		if cut := strings.IndexAny(rest, ".;,"); cut >= 0 {
			rest = rest[:cut]
		}
		timeline = strings.Trim(rest, " !?")
	}

	return goal, timeline
}
