package figure3d

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	GLB = "glb"
	MST = "mst"
	STL = "stl"
)

// Exporter 将场景写出为某种文件格式
type Exporter interface {
	Export(s *Scene, w io.Writer) error
}

func ExporterFactory(format string) Exporter {
	switch format {
	case GLB:
		return NewGlbExporter()
	case MST:
		return &MstExporter{}
	case STL:
		return &StlExporter{}
	}
	return nil
}

// FormatFromPath 根据扩展名判断格式，无法识别时使用 GLB
func FormatFromPath(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ExporterFactory(ext) != nil {
		return ext
	}
	return GLB
}

// SaveFile writes the scene to path. Data goes to a temporary file in the same
// directory first and is renamed into place once complete.
func SaveFile(s *Scene, path, format string) error {
	ex := ExporterFactory(format)
	if ex == nil {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := ex.Export(s, f); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", format, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// OutputPath 取命令行最后一个参数作为输出路径，args 包含程序名
func OutputPath(args []string) (string, error) {
	if len(args) < 2 {
		return "", ErrMissingOutput
	}
	out := args[len(args)-1]
	if out == "" || out == "--" {
		return "", ErrMissingOutput
	}
	return out, nil
}
