package biz

import "strings"

// QuestionType is the closed set of recognized question intents.
type QuestionType string

const (
	// QuestionExactThreeTitles asks for a list of exactly three talk titles.
	QuestionExactThreeTitles QuestionType = "exact_three_titles"
	// QuestionPreciseFact asks for a specific fact about one talk.
	QuestionPreciseFact QuestionType = "precise_fact"
	// QuestionSummary asks for a summary or the key idea of a talk.
	QuestionSummary QuestionType = "summary"
	// QuestionRecommendation asks for a talk recommendation.
	QuestionRecommendation QuestionType = "recommendation"
	// QuestionGeneric is everything else.
	QuestionGeneric QuestionType = "generic"
)

// classifierRule pairs a predicate with the type it assigns. Rules are
// evaluated top to bottom and the first match wins, so precedence lives
// in the table order rather than in nested conditionals.
type classifierRule struct {
	questionType QuestionType
	matches      func(q string) bool
}

var classifierRules = []classifierRule{
	{
		questionType: QuestionExactThreeTitles,
		matches: func(q string) bool {
			return containsAny(q, "exactly 3", "exactly three") &&
				containsAny(q, "list", "titles", "talk titles")
		},
	},
	{
		questionType: QuestionRecommendation,
		matches: func(q string) bool {
			return strings.Contains(q, "recommend")
		},
	},
	{
		questionType: QuestionSummary,
		matches: func(q string) bool {
			return containsAny(q, "summary", "summar", "key idea", "main idea") ||
				(strings.Contains(q, "provide the title") && strings.Contains(q, "short summary"))
		},
	},
	{
		questionType: QuestionPreciseFact,
		matches: func(q string) bool {
			if strings.HasPrefix(q, "find ") || containsAny(q, "find a ted talk", "find a talk") {
				return true
			}
			return strings.Contains(q, "title") && containsAny(q, "speaker", "speaker_1")
		},
	},
}

// ClassifyQuestion assigns a QuestionType to a raw question. Matching is
// case-insensitive and deterministic. A question matching both the
// recommendation and summary rules classifies as a recommendation; that
// precedence is intentional.
func ClassifyQuestion(question string) QuestionType {
	q := strings.ToLower(question)
	for _, rule := range classifierRules {
		if rule.matches(q) {
			return rule.questionType
		}
	}
	return QuestionGeneric
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
