// Command robot builds the robot figure and writes it as GLB to the path given as
// the last argument.
package main

import (
	"fmt"
	"os"

	figure3d "github.com/flywave/go-figure3d"
	"github.com/flywave/go-figure3d/internal/logging"
	"go.uber.org/zap"
)

func main() {
	logger, err := logging.New(os.Getenv("FIGURE_LOG_LEVEL"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := figure3d.Run(figure3d.ROBOT, os.Args, os.Stdout); err != nil {
		logger.Error("robot export failed", zap.Strings("args", os.Args[1:]), zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}
