package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	figure3d "github.com/flywave/go-figure3d"
	"github.com/flywave/go-figure3d/internal/generate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestServer(t *testing.T, gen generate.Generator) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	s := New(dir, "", gen, nil)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s, dir
}

func TestGenerateRequiresPrompt(t *testing.T) {
	s, _ := newTestServer(t, generate.KeywordGenerator{})
	for _, body := range []string{`{}`, `{"prompt": "  "}`, `not json`} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "prompt is required", resp.Error)
	}
}

func TestGenerateWritesModel(t *testing.T) {
	s, dir := newTestServer(t, generate.KeywordGenerator{})
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt":"a robot"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "/models/model_1700000000000.glb", resp.ModelURL)

	sm, err := figure3d.OpenGLB(filepath.Join(dir, "model_1700000000000.glb"))
	require.NoError(t, err)
	assert.Equal(t, 6, sm.Nodes)

	// 同一毫秒内的第二次请求使用新文件名
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt":"rabbit"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/models/model_1700000000000_1.glb", resp.ModelURL)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/models", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []string{"model_1700000000000.glb", "model_1700000000000_1.glb"}, list.Models)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, resp.ModelURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "glTF", rec.Body.String()[:4])
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string) (*generate.Result, error) {
	return nil, errors.New("upstream unavailable")
}

func TestGenerateFailure(t *testing.T) {
	s, dir := newTestServer(t, failingGenerator{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt":"dragon"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "model generation failed", resp.Error)
	assert.Contains(t, resp.Details, "upstream unavailable")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListModelsMissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "absent"), "", generate.KeywordGenerator{}, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/models", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"models": []}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t, generate.KeywordGenerator{})
	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

type rejectedRecipeGenerator struct{}

func (rejectedRecipeGenerator) Generate(context.Context, string) (*generate.Result, error) {
	return &generate.Result{Source: "parts: ["}, errors.New("parse recipe: unexpected end")
}

func TestGenerateLogsRejectedRecipe(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gen := generate.Fallback{rejectedRecipeGenerator{}, generate.KeywordGenerator{}}
	s := New(t.TempDir(), "", gen, zap.New(core))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt":"a dragon"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	entries := logs.FilterMessage("generated recipe failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "parts: [", entries[0].ContextMap()["recipe"])
	assert.Equal(t, 1, logs.FilterMessage("model generation failed").Len())
}

func TestListModelsSkipsEmptyFiles(t *testing.T) {
	s, dir := newTestServer(t, generate.KeywordGenerator{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model_1.glb"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model_2.glb"), []byte("glTF"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/models", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"models": ["model_2.glb"]}`, rec.Body.String())
}

func TestModelsDirectoryNotListed(t *testing.T) {
	s, dir := newTestServer(t, generate.KeywordGenerator{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model_2.glb"), []byte("glTF"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	h := s.Handler()

	for _, target := range []string{"/models/", "/models/sub/"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.NotContains(t, rec.Body.String(), "model_2.glb", target)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/models/model_2.glb", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "glTF", rec.Body.String())
}
