package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	figure3d "github.com/flywave/go-figure3d"
	"github.com/flywave/go-figure3d/internal/config"
	"github.com/flywave/go-figure3d/internal/generate"
	"github.com/flywave/go-figure3d/internal/logging"
	"github.com/flywave/go-figure3d/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose bool

	// build flags
	recipePath string
	format     string

	// serve flags
	dotenvPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "figure3d",
	Short: "Assemble primitive meshes into simple figures and export them",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.Verbose(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var buildCmd = &cobra.Command{
	Use:   "build [figure] <output>",
	Short: "Build a built-in figure or a recipe and write it to <output>",
	Long: `Builds one of the built-in figures (see "list") or, with --recipe, a YAML
recipe, and exports it. The format follows the output extension (glb, mst, stl)
unless --format is given.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runBuild,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in figures",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, n := range figure3d.Figures() {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.glb>",
	Short: "Print statistics of a GLB file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP model generation server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	buildCmd.Flags().StringVarP(&recipePath, "recipe", "r", "", "build from a YAML recipe instead of a built-in figure")
	buildCmd.Flags().StringVarP(&format, "format", "f", "", "export format: glb, mst or stl")

	serveCmd.Flags().StringVar(&dotenvPath, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(buildCmd, listCmd, inspectCmd, serveCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	var (
		sc  *figure3d.Scene
		err error
	)
	out := args[len(args)-1]
	if recipePath != "" {
		if len(args) != 1 {
			return fmt.Errorf("build --recipe takes only <output>")
		}
		r, err := figure3d.LoadRecipe(recipePath)
		if err != nil {
			return err
		}
		sc = figure3d.NewScene()
		if err := r.Build(sc); err != nil {
			return fmt.Errorf("build recipe %s: %w", recipePath, err)
		}
	} else {
		if len(args) != 2 {
			return fmt.Errorf("build needs <figure> <output>")
		}
		if sc, err = figure3d.BuildFigure(args[0]); err != nil {
			return err
		}
	}

	f := format
	if f == "" {
		f = figure3d.FormatFromPath(out)
	}
	logger.Debug("exporting",
		zap.String("output", out),
		zap.String("format", f),
		zap.Int("objects", len(sc.Objects)))
	if err := figure3d.SaveFile(sc, out, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "model saved: %s\n", out)
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	sm, err := figure3d.OpenGLB(args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "nodes:      %d %v\n", sm.Nodes, sm.NodeNames)
	fmt.Fprintf(w, "meshes:     %d\n", sm.Meshes)
	fmt.Fprintf(w, "primitives: %d\n", sm.Primitives)
	fmt.Fprintf(w, "materials:  %d\n", sm.Materials)
	for i, c := range sm.BaseColors {
		fmt.Fprintf(w, "  [%d] base color %.3g %.3g %.3g %.3g\n", i, c[0], c[1], c[2], c[3])
	}
	fmt.Fprintf(w, "vertices:   %d\n", sm.Vertices)
	fmt.Fprintf(w, "triangles:  %d\n", sm.Triangles)
	b := sm.BBox
	fmt.Fprintf(w, "bbox:       (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n", b[0], b[1], b[2], b[3], b[4], b[5])
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(dotenvPath)
	if err != nil {
		return err
	}
	if !verbose && cfg.LogLevel != "" {
		if logger, err = logging.New(cfg.LogLevel); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var gen generate.Generator = generate.KeywordGenerator{}
	if cfg.Gemini.APIKey != "" {
		gem, err := generate.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model,
			cfg.Gemini.Temperature, cfg.Gemini.MaxOutputTokens)
		if err != nil {
			return err
		}
		gen = generate.Fallback{gem, generate.KeywordGenerator{}}
		logger.Info("using Gemini recipe generator", zap.String("model", cfg.Gemini.Model))
	} else {
		logger.Info("GEMINI_API_KEY not set, using keyword generator")
	}

	srv := server.New(cfg.ModelsDir, cfg.PublicDir, gen, logger)
	return srv.ListenAndServe(ctx, cfg.Addr())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
			_ = logger.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
