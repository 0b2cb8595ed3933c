package models

// ProcessDocumentRequest carries raw document text.
type ProcessDocumentRequest struct {
	Content string `json:"content"`
}

// RetrieveContextRequest asks for chunks relevant to a query.
type RetrieveContextRequest struct {
	Query     string `json:"query"`
	Namespace string `json:"namespace"`
	TopK      int    `json:"top_k,omitempty"`
}

// UpdateTopicStatusRequest changes a topic's lifecycle state.
type UpdateTopicStatusRequest struct {
	TopicID   string      `json:"topicId"`
	Status    TopicStatus `json:"status"`
	Namespace string      `json:"namespace"`
}

// AnalyzeResponseRequest asks for an analysis of a listener response.
type AnalyzeResponseRequest struct {
	Response       string `json:"response"`
	CurrentContext string `json:"currentContext"`
}

// SuggestTopicsRequest asks for a topic transition suggestion.
type SuggestTopicsRequest struct {
	CurrentTopic    *Topic  `json:"currentTopic"`
	Context         any     `json:"context"`
	EngagementScore float64 `json:"engagementScore"`
}

// SuggestQuestionRequest asks for a follow-up question.
type SuggestQuestionRequest struct {
	Topic   *Topic   `json:"topic"`
	Context any      `json:"context"`
	Depth   *float64 `json:"depth"`
}

// AnalyzeEngagementRequest carries the listener's recent responses.
type AnalyzeEngagementRequest struct {
	Responses    []string `json:"responses"`
	CurrentTopic string   `json:"currentTopic"`
}

// EngagementScoreRequest scores precomputed length observations.
type EngagementScoreRequest struct {
	AverageLength float64 `json:"averageLength"`
	LengthTrend   []int   `json:"lengthTrend"`
}

// EngagementScoreResponse is the pure score with its recommendation.
type EngagementScoreResponse struct {
	Score          float64 `json:"score"`
	Recommendation string  `json:"recommendation"`
	Message        string  `json:"message"`
}

// EvaluateTransitionRequest asks whether the conversation should move on.
type EvaluateTransitionRequest struct {
	CurrentTopic     Topic   `json:"currentTopic"`
	Topics           []Topic `json:"topics"`
	EngagementScore  float64 `json:"engagementScore"`
	DiscussionLength int     `json:"discussionLength"`
	Repetitions      int     `json:"repetitions"`
	Context          any     `json:"context"`
}

// GenerateSummaryRequest carries a finished transcript.
type GenerateSummaryRequest struct {
	Transcript string `json:"transcript"`
}

// GenerateSystemPromptRequest carries document text for host priming.
type GenerateSystemPromptRequest struct {
	Content string `json:"content"`
}
