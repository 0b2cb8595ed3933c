package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"podcast-prep-platform/internal/ai"
	"podcast-prep-platform/internal/config"
	"podcast-prep-platform/internal/logger"
	"podcast-prep-platform/internal/telemetry"
	"podcast-prep-platform/internal/vectorstore"
	"podcast-prep-platform/models"

	"github.com/google/uuid"
)

// PodcastService prepares documents for discussion and answers the per-turn questions a
// podcast host asks while the conversation runs.
type PodcastService struct {
	completer       ai.Completer
	chunker         *ChunkingService
	sessions        *SessionManager
	indexer         *Indexer
	retriever       *Retriever
	tracker         *TopicTracker
	metrics         *telemetry.Metrics
	maxDocumentSize int64
}

// NewPodcastService creates a new podcast service. metrics may be nil.
func NewPodcastService(cfg *config.Config, completer ai.Completer, embedder ai.Embedder, store vectorstore.Store, metrics *telemetry.Metrics) (*PodcastService, error) {
	chunker, err := NewChunkingService(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	return &PodcastService{
		completer:       completer,
		chunker:         chunker,
		sessions:        NewSessionManager(),
		indexer:         NewIndexer(embedder, store, cfg.EmbeddingConcurrency),
		retriever:       NewRetriever(embedder, store, cfg.RetrievalTopK),
		tracker:         NewTopicTracker(store),
		metrics:         metrics,
		maxDocumentSize: cfg.MaxDocumentSize,
	}, nil
}

// NewNamespace allocates a namespace ahead of processing, for queued documents.
func (ps *PodcastService) NewNamespace() string {
	return ps.sessions.NewNamespace()
}

// ValidateDocument checks document content without calling any external service.
func (ps *PodcastService) ValidateDocument(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: missing content", ErrValidation)
	}
	if ps.maxDocumentSize > 0 && int64(len(content)) > ps.maxDocumentSize {
		return fmt.Errorf("%w: content is %d bytes, limit is %d", ErrValidation, len(content), ps.maxDocumentSize)
	}
	return nil
}

// ProcessDocument outlines a document, chunks it and indexes it under a fresh namespace.
func (ps *PodcastService) ProcessDocument(ctx context.Context, content string) (*models.ProcessedDocument, error) {
	if err := ps.ValidateDocument(content); err != nil {
		return nil, err
	}
	return ps.ProcessDocumentInto(ctx, ps.sessions.NewNamespace(), content)
}

// ProcessDocumentInto is ProcessDocument with a caller-allocated namespace.
func (ps *PodcastService) ProcessDocumentInto(ctx context.Context, namespace, content string) (*models.ProcessedDocument, error) {
	start := time.Now()
	if err := ps.ValidateDocument(content); err != nil {
		return nil, err
	}
	if namespace == "" {
		return nil, fmt.Errorf("%w: namespace is required", ErrValidation)
	}

	outline, err := completeJSON(ctx, ps.completer, outlineInstructions, content, []string{"topics"}, normalizeOutline)
	if err != nil {
		ps.metrics.RecordDocument(ctx, time.Since(start).Seconds(), 0, "error")
		return nil, err
	}

	chunks := ps.chunker.BuildChunks(content, outline.Topics)
	indexed, err := ps.indexer.Index(ctx, namespace, chunks, outline.Topics)
	if err != nil {
		ps.metrics.RecordDocument(ctx, time.Since(start).Seconds(), 0, "error")
		return nil, err
	}

	ps.metrics.RecordDocument(ctx, time.Since(start).Seconds(), indexed, "success")
	logger.Info("document processed",
		"namespace", namespace,
		"chunks", len(chunks),
		"topics", len(outline.Topics),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &models.ProcessedDocument{Namespace: namespace, Outline: outline, Indexed: indexed}, nil
}

// normalizeOutline requires at least one titled topic, fills missing or duplicate ids and
// resets every topic to pending.
func normalizeOutline(o *models.Outline) error {
	if len(o.Topics) == 0 {
		return errors.New("outline has no topics")
	}
	seen := make(map[string]bool, len(o.Topics))
	for i := range o.Topics {
		t := &o.Topics[i]
		t.Title = strings.TrimSpace(t.Title)
		if t.Title == "" {
			return fmt.Errorf("topic %d has no title", i)
		}
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" || seen[t.ID] {
			t.ID = uuid.NewString()
		}
		seen[t.ID] = true
		t.Questions = nonNil(t.Questions)
		t.Excerpts = nonNil(t.Excerpts)
		t.Status = models.TopicPending
	}
	return nil
}

func (ps *PodcastService) RetrieveContext(ctx context.Context, namespace, query string, topK int) ([]string, error) {
	if strings.TrimSpace(query) == "" || namespace == "" {
		return nil, fmt.Errorf("%w: missing query or namespace", ErrValidation)
	}
	if topK < 0 {
		return nil, fmt.Errorf("%w: top_k must not be negative", ErrValidation)
	}

	contexts, err := ps.retriever.Retrieve(ctx, namespace, query, topK)
	if err != nil {
		return nil, err
	}
	ps.metrics.RecordRetrieval(ctx, len(contexts))
	return contexts, nil
}

func (ps *PodcastService) UpdateTopicStatus(ctx context.Context, namespace, topicID string, status models.TopicStatus) (models.TopicStatusUpdate, error) {
	update, err := ps.tracker.SetStatus(ctx, namespace, topicID, status)
	if err != nil {
		return update, err
	}
	ps.metrics.RecordTopicUpdate(ctx, string(status), update.Found)
	return update, nil
}

func (ps *PodcastService) AnalyzeResponse(ctx context.Context, response, currentContext string) (models.ResponseAnalysis, error) {
	if strings.TrimSpace(response) == "" {
		return models.ResponseAnalysis{}, fmt.Errorf("%w: missing response", ErrValidation)
	}
	content := fmt.Sprintf("Response: %s\nContext: %s", response, promptValue(currentContext))

	return completeJSON(ctx, ps.completer, responseAnalysisInstructions, content, []string{"keywords", "depth"}, func(a *models.ResponseAnalysis) error {
		if a.Depth < 0 || a.Depth > 5 {
			return fmt.Errorf("depth %v outside 0-5", a.Depth)
		}
		a.Keywords = nonNil(a.Keywords)
		a.KeyPoints = nonNil(a.KeyPoints)
		a.RelevantQuotes = nonNil(a.RelevantQuotes)
		a.UserInterests = nonNil(a.UserInterests)
		return nil
	})
}

func (ps *PodcastService) SuggestTopicTransition(ctx context.Context, currentTopic *models.Topic, convContext any, engagementScore float64) (models.TopicTransition, error) {
	if currentTopic == nil {
		return models.TopicTransition{}, fmt.Errorf("%w: missing currentTopic", ErrValidation)
	}
	content := fmt.Sprintf("Current Topic: %s\nContext: %s\nEngagement Score: %.2f",
		promptValue(currentTopic), promptValue(convContext), engagementScore)

	return completeJSON(ctx, ps.completer, topicTransitionInstructions, content, []string{"transitionStrategy"}, func(t *models.TopicTransition) error {
		if strings.TrimSpace(t.TransitionStrategy) == "" {
			return errors.New("missing transitionStrategy")
		}
		t.SuggestedTopics = nonNil(t.SuggestedTopics)
		return nil
	})
}

func (ps *PodcastService) SuggestQuestion(ctx context.Context, topic *models.Topic, convContext any, depth *float64) (models.QuestionSuggestion, error) {
	if topic == nil {
		return models.QuestionSuggestion{}, fmt.Errorf("%w: missing topic", ErrValidation)
	}
	depthText := "unknown"
	if depth != nil {
		depthText = fmt.Sprintf("%g", *depth)
	}
	content := fmt.Sprintf("Topic: %s\nContext: %s\nDiscussion Depth: %s",
		promptValue(topic), promptValue(convContext), depthText)

	return completeJSON(ctx, ps.completer, questionInstructions, content, []string{"question", "type"}, func(q *models.QuestionSuggestion) error {
		if strings.TrimSpace(q.Question) == "" {
			return errors.New("missing question")
		}
		switch q.Type {
		case models.QuestionFollowUp, models.QuestionClarification, models.QuestionTransition:
			return nil
		}
		return fmt.Errorf("unknown question type %q", q.Type)
	})
}

type modelEngagement struct {
	Score   float64 `json:"score"`
	Metrics struct {
		Depth      float64 `json:"depth"`
		Relevance  float64 `json:"relevance"`
		Complexity float64 `json:"complexity"`
	} `json:"metrics"`
	Patterns       models.EngagementPatterns `json:"patterns"`
	Recommendation string                    `json:"recommendation"`
}

// AnalyzeEngagement blends length statistics of the responses with the model's judgement.
func (ps *PodcastService) AnalyzeEngagement(ctx context.Context, responses []string, currentTopic string) (models.EngagementAnalysis, error) {
	if len(responses) == 0 {
		return models.EngagementAnalysis{}, fmt.Errorf("%w: missing responses", ErrValidation)
	}

	avg, trend := ResponseLengthStats(responses)
	recent, _ := json.Marshal(responses[max(0, len(responses)-3):])
	content := fmt.Sprintf("Recent responses: %s\nCurrent topic: %s", recent, promptValue(currentTopic))

	judged, err := completeJSON(ctx, ps.completer, engagementInstructions, content, []string{"score", "recommendation"}, func(m *modelEngagement) error {
		if m.Score < 0 || m.Score > 1 {
			return fmt.Errorf("score %v outside 0-1", m.Score)
		}
		return nil
	})
	if err != nil {
		return models.EngagementAnalysis{}, err
	}

	score := BlendedEngagementScore(avg, trend, judged.Score)
	action := Recommend(score)
	ps.metrics.RecordEngagement(ctx, score, string(action))

	return models.EngagementAnalysis{
		Score: score,
		Metrics: models.EngagementMetrics{
			Depth:         judged.Metrics.Depth,
			Relevance:     judged.Metrics.Relevance,
			Complexity:    judged.Metrics.Complexity,
			AverageLength: avg,
			LengthTrend:   trend,
		},
		Patterns:       judged.Patterns,
		Recommendation: judged.Recommendation,
		Action:         string(action),
		Indicator:      string(EngagementIndicator(responses[len(responses)-1]).Type),
	}, nil
}

// ScoreEngagement is the pure length-based score with its recommendation.
func (ps *PodcastService) ScoreEngagement(ctx context.Context, avgLength float64, lengthTrend []int) (models.EngagementScoreResponse, error) {
	if avgLength < 0 {
		return models.EngagementScoreResponse{}, fmt.Errorf("%w: averageLength must not be negative", ErrValidation)
	}
	for _, l := range lengthTrend {
		if l < 0 {
			return models.EngagementScoreResponse{}, fmt.Errorf("%w: lengthTrend values must not be negative", ErrValidation)
		}
	}
	score := EngagementScore(avgLength, lengthTrend)
	rec := Recommend(score)
	ps.metrics.RecordEngagement(ctx, score, string(rec))
	return models.EngagementScoreResponse{Score: score, Recommendation: string(rec), Message: rec.Message()}, nil
}

// EvaluateTopicTransition decides whether to leave the current topic. When it should, the
// next topic is the one after the current topic in outline order.
func (ps *PodcastService) EvaluateTopicTransition(ctx context.Context, req models.EvaluateTransitionRequest) (models.TransitionDecision, error) {
	if req.CurrentTopic.ID == "" {
		return models.TransitionDecision{}, fmt.Errorf("%w: missing currentTopic", ErrValidation)
	}
	progress := TopicProgress(req.DiscussionLength)
	if !ShouldTransitionTopic(req.EngagementScore, req.DiscussionLength, req.Repetitions) {
		return models.TransitionDecision{ShouldTransition: false, Progress: progress}, nil
	}

	suggestion, err := ps.SuggestTopicTransition(ctx, &req.CurrentTopic, req.Context, req.EngagementScore)
	if err != nil {
		return models.TransitionDecision{}, err
	}

	decision := models.TransitionDecision{
		ShouldTransition:   true,
		Progress:           progress,
		TransitionStrategy: suggestion.TransitionStrategy,
	}
	current := -1
	for i, t := range req.Topics {
		if t.ID == req.CurrentTopic.ID {
			current = i
			break
		}
	}
	if next := current + 1; next < len(req.Topics) {
		decision.NextTopicID = req.Topics[next].ID
	}
	return decision, nil
}

func (ps *PodcastService) GenerateSummary(ctx context.Context, transcript string) (models.TranscriptSummary, error) {
	if strings.TrimSpace(transcript) == "" {
		return models.TranscriptSummary{}, fmt.Errorf("%w: missing transcript", ErrValidation)
	}
	required := []string{"mainPoints", "keyTakeaways", "topicsCovered", "overallEngagement"}
	return completeJSON(ctx, ps.completer, summaryInstructions, transcript, required, func(s *models.TranscriptSummary) error {
		s.MainPoints = nonNil(s.MainPoints)
		s.KeyTakeaways = nonNil(s.KeyTakeaways)
		if s.TopicsCovered == nil {
			s.TopicsCovered = []models.TopicCoverage{}
		}
		return nil
	})
}

// GenerateSystemPrompt writes a host system prompt primed with the document's themes.
func (ps *PodcastService) GenerateSystemPrompt(ctx context.Context, content string) (string, error) {
	if err := ps.ValidateDocument(content); err != nil {
		return "", err
	}
	prompt, err := ps.completer.CompleteText(ctx, systemPromptInstructions, content)
	if err != nil {
		return "", fmt.Errorf("%w: completion: %w", ErrUpstream, err)
	}
	return prompt, nil
}
