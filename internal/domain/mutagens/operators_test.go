package mutagens_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/jsgooze/internal/domain/mutagens"
	m "gooze.dev/pkg/jsgooze/internal/model"
)

func applied(src string, mutations []m.Mutation) []string {
	out := make([]string, 0, len(mutations))
	for _, mutation := range mutations {
		out = append(out, apply(src, mutation))
	}

	return out
}

func TestGenerateComparisonMutations(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"a < b", []string{"a <= b", "a >= b"}},
		{"a >= b", []string{"a > b", "a < b"}},
		{"a === b", []string{"a !== b"}},
		{"a != b", []string{"a == b"}},
		{"a + b", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			mutations := generate(t, mutagens.GenerateComparisonMutations, "cmp.js", tt.src)
			assert.Equal(t, tt.want, applied(tt.src, mutations))
		})
	}
}

func TestGenerateLogicalMutations(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"a && b", []string{"a || b"}},
		{"a || b", []string{"a && b"}},
		{"a ?? b", []string{"a && b"}},
		{"a & b", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			mutations := generate(t, mutagens.GenerateLogicalMutations, "logic.js", tt.src)
			assert.Equal(t, tt.want, applied(tt.src, mutations))
		})
	}
}

func TestGenerateUnaryMutations(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"x = -y;", []string{"x = +y;"}},
		{"x = +y;", []string{"x = -y;"}},
		{"i++;", []string{"i--;"}},
		{"--i;", []string{"++i;"}},
		{"x = !y;", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			mutations := generate(t, mutagens.GenerateUnaryMutations, "unary.js", tt.src)
			assert.Equal(t, tt.want, applied(tt.src, mutations))
		})
	}
}

func TestGenerateStringMutations(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"non-empty is emptied", `const s = "hi";`, []string{`const s = "";`}},
		{"empty is filled", `const s = '';`, []string{`const s = 'Stryker was here!';`}},
		{"import specifiers are kept", `import x from "y";`, []string{}},
		{"directives are kept", `"use strict";`, []string{}},
		{"required modules are kept", `const math = require("./math");`, []string{}},
		{"dynamic imports are kept", `const load = () => import("./math");`, []string{}},
		{"other call arguments change", `log("./math");`, []string{`log("");`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mutations := generate(t, mutagens.GenerateStringMutations, "str.js", tt.src)
			assert.Equal(t, tt.want, applied(tt.src, mutations))
		})
	}
}

func TestGenerateBlockMutations(t *testing.T) {
	t.Run("single line function body is emptied", func(t *testing.T) {
		src := "function f() { return 1; }"

		mutations := generate(t, mutagens.GenerateBlockMutations, "block.js", src)
		require.Len(t, mutations, 1)
		assert.Equal(t, m.MutationBlock, mutations[0].Type)
		assert.Equal(t, "function f() {}", apply(src, mutations[0]))
	})

	t.Run("arrow function body", func(t *testing.T) {
		src := "const f = () => { go(); };"

		mutations := generate(t, mutagens.GenerateBlockMutations, "arrow.js", src)
		assert.Equal(t, []string{"const f = () => {};"}, applied(src, mutations))
	})

	t.Run("skipped bodies", func(t *testing.T) {
		for _, src := range []string{
			"function f() {}",
			"function f() {\n  return 1;\n}\n",
			"if (x) { go(); }",
		} {
			assert.Empty(t, generate(t, mutagens.GenerateBlockMutations, "skip.js", src), src)
		}
	})
}

func TestGenerateBranchMutations(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"if condition", "if (a > b) go();", []string{"if (true) go();", "if (false) go();"}},
		{"ternary condition", "x = ok ? 1 : 2;", []string{"x = true ? 1 : 2;", "x = false ? 1 : 2;"}},
		{"while loop only stops", "while (i < n) i++;", []string{"while (false) i++;"}},
		{"constant conditions are skipped", "if (true) go();", []string{"if (false) go();"}},
		{"multi-line conditions are skipped", "if (a &&\n  b) go();\n", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mutations := generate(t, mutagens.GenerateBranchMutations, "branch.js", tt.src)
			assert.Equal(t, tt.want, applied(tt.src, mutations))

			for _, mutation := range mutations {
				assert.Equal(t, m.MutationBranch, mutation.Type)
			}
		})
	}
}
