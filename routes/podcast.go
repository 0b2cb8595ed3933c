package routes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"podcast-prep-platform/internal/config"
	"podcast-prep-platform/internal/logger"
	"podcast-prep-platform/internal/queue"
	"podcast-prep-platform/middleware"
	"podcast-prep-platform/models"
	"podcast-prep-platform/services"
	"podcast-prep-platform/utils"

	"github.com/gin-gonic/gin"
)

// DocumentQueue hands documents to the background worker.
type DocumentQueue interface {
	EnqueueDocument(ctx context.Context, namespace, content string) (*queue.JobStatus, error)
	Status(ctx context.Context, namespace string) (*queue.JobStatus, error)
}

// SetupPodcastRoutes registers the podcast preparation API. docQueue may be nil, in which
// case the async endpoints report that async processing is disabled.
func SetupPodcastRoutes(router gin.IRouter, cfg *config.Config, podcast *services.PodcastService, extractor *services.DocumentExtractor, docQueue DocumentQueue) {
	router.POST("/process_document", HandleProcessDocument(podcast))
	router.POST("/prepare_podcast", HandleProcessDocument(podcast))
	router.POST("/process_document/upload", HandleUploadDocument(cfg, podcast, extractor))
	router.POST("/process_document/async", HandleAsyncProcessDocument(podcast, docQueue))
	router.GET("/process_document/status/:namespace", HandleDocumentStatus(docQueue))

	router.POST("/retrieve_context", HandleRetrieveContext(podcast))
	router.POST("/update_topic_status", HandleUpdateTopicStatus(podcast))

	router.POST("/analyze_response", HandleAnalyzeResponse(podcast))
	router.POST("/suggest_topics", HandleSuggestTopics(podcast))
	router.POST("/suggest_question", HandleSuggestQuestion(podcast))
	router.POST("/analyze_engagement", HandleAnalyzeEngagement(podcast))
	router.POST("/engagement_score", HandleEngagementScore(podcast))
	router.POST("/evaluate_transition", HandleEvaluateTransition(podcast))
	router.POST("/generate_summary", HandleGenerateSummary(podcast))
	router.POST("/generate_system_prompt", HandleGenerateSystemPrompt(podcast))
}

// respondServiceError maps service errors onto the JSON error envelope.
func respondServiceError(c *gin.Context, op string, err error) {
	logger.Error(op+" failed", "error", err, "request_id", middleware.GetRequestID(c))

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		utils.RespondWithTimeout(c, "Request timed out")
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithBadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrUpstream):
		utils.RespondWithUpstreamError(c, "An upstream service failed", gin.H{"operation": op})
	case errors.Is(err, services.ErrConfiguration):
		utils.RespondWithConfigurationError(c, err.Error())
	default:
		utils.RespondWithInternalError(c, "Internal server error", nil)
	}
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
		return false
	}
	return true
}

// HandleProcessDocument outlines and indexes a document synchronously.
func HandleProcessDocument(podcast *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ProcessDocumentRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		doc, err := podcast.ProcessDocument(ctx, req.Content)
		if err != nil {
			respondServiceError(c, "process_document", err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

// HandleUploadDocument accepts a multipart "file" (text, HTML or PDF) and processes its text.
func HandleUploadDocument(cfg *config.Config, podcast *services.PodcastService, extractor *services.DocumentExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "no_file", "No document file provided", nil)
			return
		}
		defer file.Close()

		if cfg.MaxDocumentSize > 0 && header.Size > cfg.MaxDocumentSize {
			utils.RespondWithError(c, http.StatusRequestEntityTooLarge, "file_too_large",
				"File size exceeds maximum limit",
				gin.H{"max_size": cfg.MaxDocumentSize, "received": header.Size})
			return
		}

		data, err := io.ReadAll(file)
		if err != nil {
			utils.RespondWithBadRequest(c, "Cannot read uploaded file", nil)
			return
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		text, err := extractor.Extract(ctx, header.Header.Get("Content-Type"), header.Filename, data)
		if err != nil {
			respondServiceError(c, "extract_document", err)
			return
		}

		doc, err := podcast.ProcessDocument(ctx, text)
		if err != nil {
			respondServiceError(c, "process_document", err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

// HandleAsyncProcessDocument allocates the namespace up front and queues the work.
func HandleAsyncProcessDocument(podcast *services.PodcastService, docQueue DocumentQueue) gin.HandlerFunc {
	return func(c *gin.Context) {
		if docQueue == nil {
			utils.RespondWithError(c, http.StatusServiceUnavailable, "async_disabled", "Async processing is disabled", nil)
			return
		}

		var req models.ProcessDocumentRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := podcast.ValidateDocument(req.Content); err != nil {
			respondServiceError(c, "process_document_async", err)
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		namespace := podcast.NewNamespace()
		job, err := docQueue.EnqueueDocument(ctx, namespace, req.Content)
		if err != nil {
			logger.Error("failed to enqueue document", "namespace", namespace, "error", err)
			utils.RespondWithError(c, http.StatusServiceUnavailable, "queue_unavailable", "Failed to queue document", nil)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"namespace": job.Namespace,
			"task_id":   job.TaskID,
			"status":    job.Status,
		})
	}
}

func HandleDocumentStatus(docQueue DocumentQueue) gin.HandlerFunc {
	return func(c *gin.Context) {
		if docQueue == nil {
			utils.RespondWithError(c, http.StatusServiceUnavailable, "async_disabled", "Async processing is disabled", nil)
			return
		}

		namespace := c.Param("namespace")
		if !services.ValidNamespace(namespace) {
			utils.RespondWithBadRequest(c, "Invalid namespace", nil)
			return
		}

		ctx, cancel := utils.WithShortTimeout(c.Request.Context())
		defer cancel()

		job, err := docQueue.Status(ctx, namespace)
		if errors.Is(err, queue.ErrJobNotFound) {
			utils.RespondWithNotFound(c, fmt.Sprintf("No job for namespace %s", namespace))
			return
		}
		if err != nil {
			respondServiceError(c, "document_status", err)
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

func HandleRetrieveContext(podcast *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RetrieveContextRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		contexts, err := podcast.RetrieveContext(ctx, req.Namespace, req.Query, req.TopK)
		if err != nil {
			respondServiceError(c, "retrieve_context", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"contexts": contexts})
	}
}

func HandleUpdateTopicStatus(podcast *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UpdateTopicStatusRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		update, err := podcast.UpdateTopicStatus(ctx, req.Namespace, req.TopicID, req.Status)
		if err != nil {
			respondServiceError(c, "update_topic_status", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "success",
			"topicId":   update.TopicID,
			"newStatus": update.Status,
			"found":     update.Found,
		})
	}
}

func HandleAnalyzeResponse(podcast *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AnalyzeResponseRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		analysis, err := podcast.AnalyzeResponse(ctx, req.Response, req.CurrentContext)
		if err != nil {
			respondServiceError(c, "analyze_response", err)
			return
		}
		c.JSON(http.StatusOK, analysis)
	}
}

func HandleSuggestTopics(podcast *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SuggestTopicsRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		transition, err := podcast.SuggestTopicTransition(ctx, req.CurrentTopic, req.Context, req.EngagementScore)
		if err != nil {
			respondServiceError(c, "suggest_topics", err)
			return
		}
		c.JSON(http.StatusOK, transition)
	}
}

func HandleSuggestQuestion(podcast *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SuggestQuestionRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		question, err := podcast.SuggestQuestion(ctx, req.Topic, req.Context, req.Depth)
		if err != nil {
			respondServiceError(c, "suggest_question", err)
			return
		}
		c.JSON(http.StatusOK, question)
	}
}

func HandleAnalyzeEngagement(podcast *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AnalyzeEngagementRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		analysis, err := podcast.AnalyzeEngagement(ctx, req.Responses, req.CurrentTopic)
		if err != nil {
			respondServiceError(c, "analyze_engagement", err)
			return
		}
		c.JSON(http.StatusOK, analysis)
	}
}

func HandleEngagementScore(podcast *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.EngagementScoreRequest
		if !bindJSON(c, &req) {
			return
		}

		res, err := podcast.ScoreEngagement(c.Request.Context(), req.AverageLength, req.LengthTrend)
		if err != nil {
			respondServiceError(c, "engagement_score", err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func HandleEvaluateTransition(podcast *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.EvaluateTransitionRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		decision, err := podcast.EvaluateTopicTransition(ctx, req)
		if err != nil {
			respondServiceError(c, "evaluate_transition", err)
			return
		}
		c.JSON(http.StatusOK, decision)
	}
}

func HandleGenerateSummary(podcast *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.GenerateSummaryRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		summary, err := podcast.GenerateSummary(ctx, req.Transcript)
		if err != nil {
			respondServiceError(c, "generate_summary", err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func HandleGenerateSystemPrompt(podcast *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.GenerateSystemPromptRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		prompt, err := podcast.GenerateSystemPrompt(ctx, req.Content)
		if err != nil {
			respondServiceError(c, "generate_system_prompt", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"systemPrompt": prompt})
	}
}
