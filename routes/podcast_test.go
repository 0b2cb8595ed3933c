package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"podcast-prep-platform/internal/config"
	"podcast-prep-platform/internal/queue"
	"podcast-prep-platform/internal/vectorstore"
	"podcast-prep-platform/models"
	"podcast-prep-platform/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const outlineReply = `{
	"summary": "A talk about bees.",
	"topics": [
		{"id": "t1", "title": "Hive life", "questions": ["Who rules the hive?"], "excerpts": ["The queen lays eggs."]},
		{"id": "t2", "title": "Pollination", "questions": [], "excerpts": []}
	]
}`

const document = "Bees live in hives. The queen lays eggs. Workers gather pollen from flowers all day long."

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v, nil
}

type stubCompleter struct {
	reply string
	text  string
	err   error
}

func (s *stubCompleter) CompleteJSON(context.Context, string, string) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.reply), nil
}

func (s *stubCompleter) CompleteText(context.Context, string, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type stubQueue struct {
	mu   sync.Mutex
	jobs map[string]*queue.JobStatus
	err  error
}

func newStubQueue() *stubQueue {
	return &stubQueue{jobs: make(map[string]*queue.JobStatus)}
}

func (q *stubQueue) EnqueueDocument(_ context.Context, namespace, _ string) (*queue.JobStatus, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	job := &queue.JobStatus{Namespace: namespace, TaskID: namespace, Status: queue.JobQueued, UpdatedAt: time.Now()}
	q.jobs[namespace] = job
	return job, nil
}

func (q *stubQueue) Status(_ context.Context, namespace string) (*queue.JobStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[namespace]
	if !ok {
		return nil, queue.ErrJobNotFound
	}
	return job, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T, completer *stubCompleter, docQueue DocumentQueue) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		ChunkSize:            40,
		ChunkOverlap:         5,
		RetrievalTopK:        3,
		EmbeddingConcurrency: 2,
		MaxDocumentSize:      1 << 16,
	}
	podcast, err := services.NewPodcastService(cfg, completer, stubEmbedder{}, vectorstore.NewMemoryStore(), nil)
	require.NoError(t, err)

	r := gin.New()
	SetupPodcastRoutes(r, cfg, podcast, services.NewDocumentExtractor(), docQueue)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func processDocument(t *testing.T, r http.Handler) models.ProcessedDocument {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/process_document", gin.H{"content": document})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var doc models.ProcessedDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	return doc
}

func TestProcessDocumentAndRetrieve(t *testing.T) {
	r := setupRouter(t, &stubCompleter{reply: outlineReply}, nil)

	doc := processDocument(t, r)
	assert.True(t, services.ValidNamespace(doc.Namespace))
	require.Len(t, doc.Outline.Topics, 2)
	assert.Equal(t, models.TopicPending, doc.Outline.Topics[0].Status)
	assert.Greater(t, doc.Indexed, 2)

	w := doJSON(r, http.MethodPost, "/retrieve_context", gin.H{"query": "queen eggs", "namespace": doc.Namespace, "top_k": 2})
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Contexts []string `json:"contexts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Contexts)
	assert.LessOrEqual(t, len(res.Contexts), 2)
}

func TestPreparePodcastAlias(t *testing.T) {
	r := setupRouter(t, &stubCompleter{reply: outlineReply}, nil)

	w := doJSON(r, http.MethodPost, "/prepare_podcast", gin.H{"content": document})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"analysis"`)
}

func TestRetrieveContextUnknownNamespace(t *testing.T) {
	r := setupRouter(t, &stubCompleter{reply: outlineReply}, nil)

	w := doJSON(r, http.MethodPost, "/retrieve_context", gin.H{"query": "bees", "namespace": "podcast_unknown"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"contexts": []}`, w.Body.String())
}

func TestUpdateTopicStatus(t *testing.T) {
	r := setupRouter(t, &stubCompleter{reply: outlineReply}, nil)
	doc := processDocument(t, r)

	w := doJSON(r, http.MethodPost, "/update_topic_status", gin.H{"topicId": "t1", "status": "discussed", "namespace": doc.Namespace})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","topicId":"t1","newStatus":"discussed","found":true}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/update_topic_status", gin.H{"topicId": "missing", "status": "skipped", "namespace": doc.Namespace})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"found":false`)

	w = doJSON(r, http.MethodPost, "/update_topic_status", gin.H{"topicId": "t1", "status": "finished", "namespace": doc.Namespace})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEngagementScore(t *testing.T) {
	r := setupRouter(t, &stubCompleter{}, nil)

	w := doJSON(r, http.MethodPost, "/engagement_score", gin.H{"averageLength": 0, "lengthTrend": []int{}})
	require.Equal(t, http.StatusOK, w.Code)

	var res models.EngagementScoreResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "SWITCH", res.Recommendation)

	w = doJSON(r, http.MethodPost, "/engagement_score", gin.H{"averageLength": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		body   any
		status int
	}{
		{"missing content", nil, gin.H{"content": "   "}, http.StatusBadRequest},
		{"upstream failure", errors.New("model overloaded"), gin.H{"content": document}, http.StatusBadGateway},
		{"deadline", context.DeadlineExceeded, gin.H{"content": document}, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(t, &stubCompleter{reply: outlineReply, err: tt.err}, nil)
			w := doJSON(r, http.MethodPost, "/process_document", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestMalformedJSONBody(t *testing.T) {
	r := setupRouter(t, &stubCompleter{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/analyze_response", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateSystemPrompt(t *testing.T) {
	r := setupRouter(t, &stubCompleter{text: "You are hosting a show about bees."}, nil)

	w := doJSON(r, http.MethodPost, "/generate_system_prompt", gin.H{"content": document})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"systemPrompt":"You are hosting a show about bees."}`, w.Body.String())
}

func TestUploadDocument(t *testing.T) {
	r := setupRouter(t, &stubCompleter{reply: outlineReply}, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "bees.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte(document))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/process_document/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/process_document/upload", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAsyncProcessDocument(t *testing.T) {
	q := newStubQueue()
	r := setupRouter(t, &stubCompleter{reply: outlineReply}, q)

	w := doJSON(r, http.MethodPost, "/process_document/async", gin.H{"content": document})
	require.Equal(t, http.StatusAccepted, w.Code)

	var accepted struct {
		Namespace string `json:"namespace"`
		TaskID    string `json:"task_id"`
		Status    string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	assert.True(t, services.ValidNamespace(accepted.Namespace))
	assert.Equal(t, "queued", accepted.Status)

	w = doJSON(r, http.MethodGet, "/process_document/status/"+accepted.Namespace, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/process_document/status/podcast_00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/process_document/status/not-a-namespace", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/process_document/async", gin.H{"content": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, q.jobs, 1)
}

func TestAsyncDisabled(t *testing.T) {
	r := setupRouter(t, &stubCompleter{reply: outlineReply}, nil)

	w := doJSON(r, http.MethodPost, "/process_document/async", gin.H{"content": document})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doJSON(r, http.MethodGet, "/process_document/status/podcast_00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
