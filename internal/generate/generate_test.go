package generate

import (
	"context"
	"errors"
	"testing"

	figure3d "github.com/flywave/go-figure3d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordGenerator(t *testing.T) {
	cases := []struct{ prompt, want string }{
		{"a white rabbit", "rabbit"},
		{"かわいいうさぎ", "rabbit"},
		{"Blue ROBOT please", "robot"},
		{"ロボットを作って", "robot"},
	}
	for _, c := range cases {
		prompt, want := c.prompt, c.want
		res, err := KeywordGenerator{}.Generate(context.Background(), prompt)
		require.NoError(t, err, prompt)
		assert.Equal(t, want, res.Recipe.Name, prompt)
		assert.NotEmpty(t, res.Source)
	}
}

func TestKeywordGeneratorNoMatch(t *testing.T) {
	_, err := KeywordGenerator{}.Generate(context.Background(), "a teapot")
	assert.True(t, errors.Is(err, ErrNoMatch))
}

func TestExtractRecipe(t *testing.T) {
	body := "name: ball\nparts: []"
	assert.Equal(t, body, ExtractRecipe("Here:\n```yaml\n"+body+"\n```\nbye"))
	assert.Equal(t, body, ExtractRecipe("```\n"+body+"\n```"))
	assert.Equal(t, body, ExtractRecipe("  "+body+"\n"))
}

type stubGenerator struct {
	res *Result
	err error
}

func (s stubGenerator) Generate(context.Context, string) (*Result, error) {
	return s.res, s.err
}

func TestFallback(t *testing.T) {
	r, err := figure3d.FigureRecipe(figure3d.ROBOT)
	require.NoError(t, err)

	f := Fallback{
		stubGenerator{err: errors.New("quota exceeded")},
		stubGenerator{res: &Result{Recipe: r}},
	}
	res, err := f.Generate(context.Background(), "robot")
	require.NoError(t, err)
	assert.Same(t, r, res.Recipe)

	_, err = Fallback{stubGenerator{err: errors.New("a")}, stubGenerator{err: errors.New("b")}}.
		Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "b")

	_, err = Fallback{}.Generate(context.Background(), "x")
	assert.Error(t, err)
}

func TestFallbackKeepsRejectedSource(t *testing.T) {
	bad := stubGenerator{res: &Result{Source: "parts: ["}, err: errors.New("parse recipe")}
	res, err := Fallback{bad, KeywordGenerator{}}.Generate(context.Background(), "a dragon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoMatch))
	require.NotNil(t, res)
	assert.Equal(t, "parts: [", res.Source)
	assert.Nil(t, res.Recipe)
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "", 0.7, 2048)
	assert.Error(t, err)
}
