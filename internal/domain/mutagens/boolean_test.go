package mutagens_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/jsgooze/internal/domain/mutagens"
	m "gooze.dev/pkg/jsgooze/internal/model"
)

func TestGenerateBooleanMutations(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"true literal", "const ok = true;", []string{"const ok = false;"}},
		{"false literal", "const ok = false;", []string{"const ok = true;"}},
		{"negation is dropped", "if (!ready) go();", []string{"if (ready) go();"}},
		{"both in one line", "const x = !false;", []string{"const x = false;", "const x = !true;"}},
		{"other unary operators", "const t = typeof x;", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mutations := generate(t, mutagens.GenerateBooleanMutations, "bool.js", tt.src)
			require.Len(t, mutations, len(tt.want))

			for i, mutation := range mutations {
				assert.Equal(t, m.MutationBoolean, mutation.Type)
				assert.Equal(t, tt.want[i], apply(tt.src, mutation))
			}
		})
	}
}
