package tagger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/extract"
	"resume-parser-go/internal/ratelimit"
	"resume-parser-go/internal/types"
)

func TestNullTagger(t *testing.T) {
	spans, err := NullTagger{}.Tag(context.Background(), "John Doe")
	assert.NoError(t, err)
	assert.Empty(t, spans)
}

func TestVocabularyTagger(t *testing.T) {
	tg := NewVocabularyTagger(extract.DefaultVocabulary())

	spans, err := tg.Tag(context.Background(), "go and python, docker")
	require.NoError(t, err)
	assert.Equal(t, []types.TaggedSpan{
		{Text: "Docker", Kind: types.SpanSkill},
		{Text: "Python", Kind: types.SpanSkill},
	}, spans)
}

func newNERServer(t *testing.T, status *int32, calls *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		var req struct {
			Text string `json:"text"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if code := atomic.LoadInt32(status); code != http.StatusOK {
			w.WriteHeader(int(code))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spans":[
			{"text":"Jane Roe","label":"PERSON"},
			{"text":"Acme","label":"ORG"},
			{"text":"kubernetes","label":"skill"},
			{"text":"  ","label":"PERSON"}
		]}`))
	}))
}

func TestHTTPTagger(t *testing.T) {
	status, calls := int32(http.StatusOK), int32(0)
	srv := newNERServer(t, &status, &calls)
	defer srv.Close()

	tg := NewHTTPTagger(srv.URL, time.Second)
	spans, err := tg.Tag(context.Background(), "Jane Roe at Acme, kubernetes")

	require.NoError(t, err)
	assert.Equal(t, []types.TaggedSpan{
		{Text: "Jane Roe", Kind: types.SpanPerson},
		{Text: "kubernetes", Kind: types.SpanSkill},
	}, spans)
}

func TestHTTPTaggerRetriesServerErrors(t *testing.T) {
	status, calls := int32(http.StatusServiceUnavailable), int32(0)
	srv := newNERServer(t, &status, &calls)
	defer srv.Close()

	limiter := ratelimit.NewTokenBucket(6000, 10, ratelimit.WithRetryPolicy(time.Millisecond, 2))
	tg := NewHTTPTagger(srv.URL, time.Second, WithRateLimiter(limiter))

	_, err := tg.Tag(context.Background(), "text")
	assert.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	atomic.StoreInt32(&status, http.StatusBadRequest)
	atomic.StoreInt32(&calls, 0)
	_, err = tg.Tag(context.Background(), "text")
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx 不应重试")
}

func TestHTTPTaggerRecordsStatusOnSpan(t *testing.T) {
	status, calls := int32(http.StatusBadRequest), int32(0)
	srv := newNERServer(t, &status, &calls)
	defer srv.Close()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tg := NewHTTPTagger(srv.URL, time.Second, WithTracer(tp.Tracer("test")))

	_, err := tg.Tag(context.Background(), "text")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	attrs := map[string]string{}
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "http", attrs["error.type"])
	assert.Equal(t, "400", attrs["http.status_code"])
	assert.Equal(t, "client_error", attrs["error.category"])
}

type failingTagger struct{}

func (failingTagger) Tag(context.Context, string) ([]types.TaggedSpan, error) {
	return nil, errors.New("ner unavailable")
}

func TestChainTagger(t *testing.T) {
	vocab := NewVocabularyTagger([]string{"Go"})

	chain := NewChainTagger(zerolog.Nop(), true, failingTagger{}, vocab)
	spans, err := chain.Tag(context.Background(), "go")
	assert.Error(t, err)
	assert.Equal(t, []types.TaggedSpan{{Text: "Go", Kind: types.SpanSkill}}, spans, "失败的标注器不影响其余结果")

	strict := NewChainTagger(zerolog.Nop(), false, failingTagger{}, vocab)
	spans, err = strict.Tag(context.Background(), "go")
	assert.Error(t, err)
	assert.Nil(t, spans)
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]types.TaggedSpan
	err  error
}

func (m *memoryCache) GetSpans(_ context.Context, key string) ([]types.TaggedSpan, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	spans, ok := m.data[key]
	return spans, ok, nil
}

func (m *memoryCache) SetSpans(_ context.Context, key string, spans []types.TaggedSpan, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = spans
	return nil
}

type countingTagger struct {
	calls int
}

func (c *countingTagger) Tag(context.Context, string) ([]types.TaggedSpan, error) {
	c.calls++
	return []types.TaggedSpan{{Text: "Jane Roe", Kind: types.SpanPerson}}, nil
}

func TestCachedTagger(t *testing.T) {
	cache := &memoryCache{data: map[string][]types.TaggedSpan{}}
	next := &countingTagger{}
	tg := NewCachedTagger(next, cache, time.Minute, zerolog.Nop())

	for i := 0; i < 3; i++ {
		spans, err := tg.Tag(context.Background(), "Jane Roe")
		require.NoError(t, err)
		assert.Len(t, spans, 1)
	}
	assert.Equal(t, 1, next.calls)
	assert.Contains(t, cache.data, TextMD5("Jane Roe"))

	cache.err = errors.New("redis down")
	_, err := tg.Tag(context.Background(), "Jane Roe")
	require.NoError(t, err, "缓存故障时应直接调用下游")
	assert.Equal(t, 2, next.calls)
}

func TestBuild(t *testing.T) {
	cfg := config.DefaultConfig().Tagger

	cfg.Mode = "none"
	tg, err := Build(cfg, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, NullTagger{}, tg)

	cfg.Mode = "vocabulary"
	tg, err = Build(cfg, extract.DefaultVocabulary(), nil)
	require.NoError(t, err)
	assert.IsType(t, &VocabularyTagger{}, tg)

	cfg.Mode = "chain"
	cfg.Endpoint = "http://127.0.0.1:1/tag"
	cfg.CacheSpans = true
	tg, err = Build(cfg, extract.DefaultVocabulary(), &memoryCache{data: map[string][]types.TaggedSpan{}})
	require.NoError(t, err)
	assert.IsType(t, &CachedTagger{}, tg)

	cfg.Mode = "llm"
	_, err = Build(cfg, nil, nil)
	assert.Error(t, err)
}
