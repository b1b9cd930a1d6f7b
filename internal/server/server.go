// Package server exposes figure generation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	figure3d "github.com/flywave/go-figure3d"
	"github.com/flywave/go-figure3d/internal/generate"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Server generates GLB models from prompts and serves them.
type Server struct {
	modelsDir string
	publicDir string
	gen       generate.Generator
	logger    *zap.Logger
	now       func() time.Time
}

func New(modelsDir, publicDir string, gen generate.Generator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		modelsDir: modelsDir,
		publicDir: publicDir,
		gen:       gen,
		logger:    logger,
		now:       time.Now,
	}
}

// Handler returns the routed handler with CORS open to all origins.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/models", s.handleListModels)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.Handle("GET /models/", http.StripPrefix("/models/", http.FileServer(fileOnlyFS{http.Dir(s.modelsDir)})))
	if s.publicDir != "" {
		if st, err := os.Stat(s.publicDir); err == nil && st.IsDir() {
			mux.Handle("GET /", http.FileServer(http.Dir(s.publicDir)))
		}
	}
	return cors.AllowAll().Handler(mux)
}

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := os.MkdirAll(s.modelsDir, 0755); err != nil {
		return fmt.Errorf("create models dir: %w", err)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", zap.String("addr", addr), zap.String("models_dir", s.modelsDir))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type listResponse struct {
	Models []string `json:"models"`
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Success  bool   `json:"success"`
	ModelURL string `json:"modelUrl"`
	Message  string `json:"message"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleListModels(w http.ResponseWriter, _ *http.Request) {
	entries, err := os.ReadDir(s.modelsDir)
	if err != nil {
		writeJSON(w, http.StatusOK, listResponse{Models: []string{}})
		return
	}
	models := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".glb") {
			continue
		}
		// 预留的空文件在导出完成前不列出
		if info, err := e.Info(); err != nil || info.Size() == 0 {
			continue
		}
		models = append(models, e.Name())
	}
	sort.Strings(models)
	writeJSON(w, http.StatusOK, listResponse{Models: models})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "prompt is required"})
		return
	}
	logger := s.logger.With(zap.String("prompt", req.Prompt))
	logger.Info("prompt received")

	name, err := s.generate(r.Context(), logger, req.Prompt)
	if err != nil {
		logger.Error("model generation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "model generation failed",
			Details: err.Error(),
		})
		return
	}
	logger.Info("model generated", zap.String("file", name))
	writeJSON(w, http.StatusOK, generateResponse{
		Success:  true,
		ModelURL: "/models/" + name,
		Message:  "model generated",
	})
}

func (s *Server) generate(ctx context.Context, logger *zap.Logger, prompt string) (string, error) {
	res, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		if res != nil && res.Source != "" {
			logger.Error("generated recipe failed", zap.String("recipe", res.Source), zap.Error(err))
		}
		return "", err
	}
	if res == nil || res.Recipe == nil {
		return "", errors.New("generator returned no recipe")
	}
	sc := figure3d.NewScene()
	if err := res.Recipe.Build(sc); err != nil {
		logger.Error("generated recipe failed", zap.String("recipe", res.Source))
		return "", fmt.Errorf("build recipe: %w", err)
	}

	path, err := s.reservePath()
	if err != nil {
		return "", err
	}
	if err := figure3d.SaveFile(sc, path, figure3d.GLB); err != nil {
		os.Remove(path)
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		logger.Error("model file was not produced", zap.String("path", path), zap.String("recipe", res.Source))
		return "", fmt.Errorf("model file was not produced: %w", err)
	}
	return filepath.Base(path), nil
}

// reservePath 以毫秒时间戳命名，冲突时追加序号
func (s *Server) reservePath() (string, error) {
	if err := os.MkdirAll(s.modelsDir, 0755); err != nil {
		return "", err
	}
	base := fmt.Sprintf("model_%d", s.now().UnixMilli())
	for i := 0; i < 100; i++ {
		name := base + ".glb"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.glb", base, i)
		}
		path := filepath.Join(s.modelsDir, name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		f.Close()
		return path, nil
	}
	return "", errors.New("no free model file name")
}

// fileOnlyFS 只提供普通文件，目录请求按不存在处理
type fileOnlyFS struct {
	root http.FileSystem
}

func (f fileOnlyFS) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if st.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
