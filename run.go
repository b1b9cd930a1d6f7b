package figure3d

import (
	"fmt"
	"io"
)

// Run 构建内置造型并导出为 GLB，输出路径取 args 的最后一个参数，
// 成功后向 stdout 打印一行确认信息
func Run(figure string, args []string, stdout io.Writer) error {
	out, err := OutputPath(args)
	if err != nil {
		return err
	}
	sc, err := BuildFigure(figure)
	if err != nil {
		return err
	}
	if err := SaveFile(sc, out, GLB); err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "model saved: %s\n", out)
	return err
}
