// Package generate turns free-text prompts into figure recipes.
package generate

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	figure3d "github.com/flywave/go-figure3d"
)

// ErrNoMatch is returned when the keyword generator recognises no figure.
var ErrNoMatch = errors.New("no figure matches the prompt")

// Result is a generated recipe together with the text it was parsed from.
type Result struct {
	Recipe *figure3d.Recipe
	Source string
}

// Generator produces a recipe for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Result, error)
}

// keywords maps prompt fragments to built-in figures.
var keywords = map[string][]string{
	figure3d.RABBIT: {"rabbit", "bunny", "hare", "兎", "うさぎ", "ウサギ", "兔"},
	figure3d.ROBOT:  {"robot", "android", "mech", "ロボット", "机器人"},
}

// KeywordGenerator picks a built-in figure whose keywords occur in the prompt.
type KeywordGenerator struct{}

func (KeywordGenerator) Generate(_ context.Context, prompt string) (*Result, error) {
	p := strings.ToLower(prompt)
	for _, name := range figure3d.Figures() {
		for _, kw := range keywords[name] {
			if !strings.Contains(p, kw) {
				continue
			}
			r, err := figure3d.FigureRecipe(name)
			if err != nil {
				return nil, err
			}
			src, err := r.Marshal()
			if err != nil {
				return nil, err
			}
			return &Result{Recipe: r, Source: string(src)}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoMatch, prompt)
}

var fenced = []*regexp.Regexp{
	regexp.MustCompile("(?s)```ya?ml\\s*\\n(.*?)\\n```"),
	regexp.MustCompile("(?s)```\\s*\\n(.*?)\\n```"),
}

// ExtractRecipe returns the body of the first fenced code block, or the whole
// text when there is none.
func ExtractRecipe(content string) string {
	for _, re := range fenced {
		if m := re.FindStringSubmatch(content); m != nil {
			return m[1]
		}
	}
	return strings.TrimSpace(content)
}

// Fallback tries each generator in order and returns the first success. When
// every generator fails, the last non-nil Result is returned with the joined
// errors so the rejected recipe text is not lost.
type Fallback []Generator

func (f Fallback) Generate(ctx context.Context, prompt string) (*Result, error) {
	var (
		errs []error
		last *Result
	)
	for _, g := range f {
		res, err := g.Generate(ctx, prompt)
		if err == nil {
			return res, nil
		}
		if res != nil {
			last = res
		}
		if ctx.Err() != nil {
			return last, ctx.Err()
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, errors.New("no generators configured")
	}
	return last, errors.Join(errs...)
}
