package models

// ResponseAnalysis is the completion service's reading of a single listener response.
type ResponseAnalysis struct {
	Keywords       []string `json:"keywords"`
	Depth          float64  `json:"depth"`
	KeyPoints      []string `json:"keyPoints"`
	RelevantQuotes []string `json:"relevantQuotes"`
	UserInterests  []string `json:"userInterests"`
}

// TopicTransition is a suggested way to move the conversation on.
type TopicTransition struct {
	TransitionStrategy string   `json:"transitionStrategy"`
	SuggestedTopics    []string `json:"suggestedTopics"`
	Rationale          string   `json:"rationale"`
}

// Question types accepted from the completion service.
const (
	QuestionFollowUp      = "followup"
	QuestionClarification = "clarification"
	QuestionTransition    = "transition"
)

// QuestionSuggestion is the next question the host could ask.
type QuestionSuggestion struct {
	Question  string `json:"question"`
	Type      string `json:"type"`
	Rationale string `json:"rationale"`
}

// EngagementMetrics combines model-judged metrics with length statistics.
type EngagementMetrics struct {
	Depth         float64 `json:"depth"`
	Relevance     float64 `json:"relevance"`
	Complexity    float64 `json:"complexity"`
	AverageLength float64 `json:"averageLength"`
	LengthTrend   []int   `json:"lengthTrend"`
}

// EngagementPatterns flags conversational behaviours seen in recent responses.
type EngagementPatterns struct {
	Elaboration       bool `json:"elaboration"`
	PersonalExamples  bool `json:"personalExamples"`
	FollowUpQuestions bool `json:"followUpQuestions"`
}

// EngagementAnalysis is the blended engagement verdict for recent responses.
type EngagementAnalysis struct {
	Score          float64            `json:"score"`
	Metrics        EngagementMetrics  `json:"metrics"`
	Patterns       EngagementPatterns `json:"patterns"`
	Recommendation string             `json:"recommendation"`
	Action         string             `json:"action"`
	// Indicator grades the most recent response on its own: high, medium or low.
	Indicator string `json:"indicator"`
}

// TransitionDecision says whether to leave the current topic and where to go.
type TransitionDecision struct {
	ShouldTransition   bool   `json:"shouldTransition"`
	Progress           int    `json:"progress"`
	NextTopicID        string `json:"nextTopicId,omitempty"`
	TransitionStrategy string `json:"transitionStrategy,omitempty"`
}

// TopicCoverage is one entry of a transcript summary.
type TopicCoverage struct {
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	Engagement float64 `json:"engagement"`
}

// TranscriptSummary is the post-episode summary of a transcript.
type TranscriptSummary struct {
	MainPoints        []string        `json:"mainPoints"`
	KeyTakeaways      []string        `json:"keyTakeaways"`
	TopicsCovered     []TopicCoverage `json:"topicsCovered"`
	OverallEngagement float64         `json:"overallEngagement"`
	Duration          float64         `json:"duration"`
}
