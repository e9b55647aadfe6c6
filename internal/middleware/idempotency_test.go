package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/prohmpiriya/sportify-web/pkg/logger"
)

type fakeIdempotencyRedis struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newFakeIdempotencyRedis() *fakeIdempotencyRedis {
	return &fakeIdempotencyRedis{data: map[string]string{}}
}

func (f *fakeIdempotencyRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeIdempotencyRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeIdempotencyRedis) SetNX(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = string(value.([]byte))
	return redis.NewBoolResult(true, nil)
}

func (f *fakeIdempotencyRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func idempotentRouter(rdb IdempotencyRedis, calls *int) *gin.Engine {
	r := gin.New()
	r.POST("/ui/booking-flow/submit", Idempotency(IdempotencyConfig{Redis: rdb}, logger.NewNop()), func(c *gin.Context) {
		*calls++
		c.JSON(http.StatusCreated, gin.H{"booking": *calls})
	})
	return r
}

func postIdempotent(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/ui/booking-flow/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	calls := 0
	r := idempotentRouter(newFakeIdempotencyRedis(), &calls)

	first := postIdempotent(r, "k1", `{"public":true}`)
	second := postIdempotent(r, "k1", `{"public":true}`)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
}

func TestIdempotency_KeyReusedForDifferentBody(t *testing.T) {
	calls := 0
	r := idempotentRouter(newFakeIdempotencyRedis(), &calls)

	postIdempotent(r, "k1", `{"public":true}`)
	w := postIdempotent(r, "k1", `{"public":false}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotency_InProgress(t *testing.T) {
	calls := 0
	rdb := newFakeIdempotencyRedis()
	r := idempotentRouter(rdb, &calls)

	// claim the key as if another request were still running
	req := httptest.NewRequest(http.MethodPost, "/ui/booking-flow/submit", strings.NewReader(`{}`))
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	_, err := claimRecord(context.Background(), rdb, idempotencyKeyPrefix+":k2",
		&idempotencyRecord{Status: statusProcessing, RequestHash: requestHash(c, []byte(`{}`))}, time.Minute)
	assert.NoError(t, err)

	w := postIdempotent(r, "k2", `{}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, calls)
}

func TestIdempotency_WithoutKeyOrStorePassesThrough(t *testing.T) {
	calls := 0
	r := idempotentRouter(newFakeIdempotencyRedis(), &calls)

	postIdempotent(r, "", `{}`)
	postIdempotent(r, "", `{}`)
	assert.Equal(t, 2, calls)

	broken := newFakeIdempotencyRedis()
	broken.err = errors.New("connection refused")
	r = idempotentRouter(broken, &calls)

	postIdempotent(r, "k3", `{}`)
	postIdempotent(r, "k3", `{}`)
	assert.Equal(t, 4, calls)
}

func TestIdempotency_FailuresReleaseKey(t *testing.T) {
	rdb := newFakeIdempotencyRedis()
	calls := 0
	r := gin.New()
	r.POST("/ui/booking-flow/submit", Idempotency(IdempotencyConfig{Redis: rdb}, logger.NewNop()), func(c *gin.Context) {
		calls++
		if calls == 1 {
			c.JSON(http.StatusOK, gin.H{"state": "submitError"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"state": "success"})
	})

	first := postIdempotent(r, "k4", `{}`)
	second := postIdempotent(r, "k4", `{}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, 2, calls)
	assert.Len(t, rdb.data, 1)
}

func TestIdempotency_RejectsMalformedKey(t *testing.T) {
	calls := 0
	r := idempotentRouter(newFakeIdempotencyRedis(), &calls)

	w := postIdempotent(r, strings.Repeat("x", maxIdempotencyKeyLen+1), `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, calls)
}
