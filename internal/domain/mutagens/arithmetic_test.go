package mutagens_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/jsgooze/internal/domain/mutagens"
	m "gooze.dev/pkg/jsgooze/internal/model"
)

func TestGenerateArithmeticMutations(t *testing.T) {
	t.Run("swaps the operator for every alternative", func(t *testing.T) {
		src := "const a = b + c;"

		mutations := generate(t, mutagens.GenerateArithmeticMutations, "add.js", src)
		require.Len(t, mutations, 4)

		assert.Equal(t, []string{" - ", " * ", " / ", " % "}, substitutes(mutations))

		first := mutations[0]
		assert.Equal(t, m.MutationArithmetic, first.Type)
		assert.Equal(t, " + ", first.Original)
		assert.Equal(t, m.MutatedLocation{StartLine: 1, EndLine: 1, StartCol: 11, EndCol: 14, MutatedCol: 12}, first.Location)
		assert.Equal(t, "const a = b - c;", apply(src, first))
		assert.Equal(t, m.Path("/repo/add.js"), first.Source.Origin.FullPath)
	})

	t.Run("nested expressions mutate each operator", func(t *testing.T) {
		src := "const a = x % (y * z);"

		mutations := generate(t, mutagens.GenerateArithmeticMutations, "nested.js", src)
		require.Len(t, mutations, 8)

		assert.Equal(t, "const a = x + (y * z);", apply(src, mutations[0]))
		assert.Equal(t, "const a = x % (y + z);", apply(src, mutations[4]))
	})

	t.Run("ignores non arithmetic operators", func(t *testing.T) {
		assert.Empty(t, generate(t, mutagens.GenerateArithmeticMutations, "cmp.js", "const a = b < c && d;"))
	})

	t.Run("operands on different lines are skipped", func(t *testing.T) {
		assert.Empty(t, generate(t, mutagens.GenerateArithmeticMutations, "multi.js", "const a = b +\n  c;\n"))
	})

	t.Run("operators inside comments are ignored", func(t *testing.T) {
		src := "const a = b /* - */ - c;"

		mutations := generate(t, mutagens.GenerateArithmeticMutations, "comment.js", src)
		require.Len(t, mutations, 4)

		assert.Equal(t, "const a = b /* - */ + c;", apply(src, mutations[0]))
		assert.Equal(t, 20, mutations[0].Location.MutatedCol)
	})

	t.Run("division after a block comment", func(t *testing.T) {
		src := "const a = b /* / */ / c;"

		mutations := generate(t, mutagens.GenerateArithmeticMutations, "div.js", src)
		require.Len(t, mutations, 4)
		assert.Equal(t, "const a = b /* / */ + c;", apply(src, mutations[0]))
	})

	t.Run("typescript sources", func(t *testing.T) {
		src := "const total = (a: number, b: number): number => a * b;"

		mutations := generate(t, mutagens.GenerateArithmeticMutations, "total.ts", src)
		require.Len(t, mutations, 4)
		assert.Equal(t, "const total = (a: number, b: number): number => a + b;", apply(src, mutations[0]))
	})
}
