package mutagens_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/jsgooze/internal/adapter"
	"gooze.dev/pkg/jsgooze/internal/domain"
	"gooze.dev/pkg/jsgooze/internal/domain/mutagens"
	m "gooze.dev/pkg/jsgooze/internal/model"
)

// generate parses src as filename and runs gen over every candidate node.
func generate(t *testing.T, gen mutagens.Generator, filename, src string) []m.Mutation {
	t.Helper()

	ctx := context.Background()

	parser, err := adapter.NewLocalJSFileAdapter(nil)
	require.NoError(t, err)

	file, err := parser.Parse(ctx, filename, []byte(src))
	require.NoError(t, err)
	t.Cleanup(file.Close)

	nodes, err := domain.NewNodeCollector(nil).Collect(ctx, file)
	require.NoError(t, err)

	source := m.Source{Origin: &m.File{ShortPath: m.Path(filename), FullPath: m.Path("/repo/" + filename)}}

	var mutations []m.Mutation
	for _, node := range nodes.Nodes() {
		mutations = append(mutations, gen(node, nodes, []byte(src), source)...)
	}

	return mutations
}

func substitutes(mutations []m.Mutation) []string {
	out := make([]string, 0, len(mutations))
	for _, mutation := range mutations {
		out = append(out, mutation.Substitute)
	}

	return out
}

// apply splices a mutation into its single-line source.
func apply(src string, mutation m.Mutation) string {
	loc := mutation.Location

	return src[:loc.StartCol] + mutation.Substitute + src[loc.EndCol:]
}
