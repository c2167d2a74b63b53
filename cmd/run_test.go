package cmd

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/jsgooze/internal/domain"
	m "gooze.dev/pkg/jsgooze/internal/model"
)

func TestParseShardFlag(t *testing.T) {
	tests := []struct {
		name      string
		shard     string
		wantIndex int
		wantTotal int
		wantErr   bool
	}{
		{"empty string", "", 0, 1, false},
		{"valid 0/3", "0/3", 0, 3, false},
		{"valid 2/3", "2/3", 2, 3, false},
		{"invalid format", "invalid", 0, 0, true},
		{"zero total", "0/0", 0, 0, true},
		{"negative index", "-1/3", 0, 0, true},
		{"index >= total", "3/3", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, total, err := parseShardFlag(tt.shard)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantIndex, index, "index")
			assert.Equal(t, tt.wantTotal, total, "total")
		})
	}
}

func TestRunCmd_Defaults(t *testing.T) {
	cmd, mockWorkflow, _ := newTestRoot(t, newRunCmd())

	mockWorkflow.On("Test", mock.Anything, mock.MatchedBy(func(args domain.TestArgs) bool {
		return args.Threads == 2 &&
			args.ShardIndex == 0 &&
			args.TotalShardCount == 1 &&
			args.UseCache &&
			args.Reports == m.Path(defaultReportsDir) &&
			len(args.MutationTypes) == len(m.AllMutationTypes) &&
			assert.ObjectsAreEqual([]m.Path{"./..."}, args.Paths)
	})).Return(nil)

	require.NoError(t, execute(t, cmd, "run", "--parallel", "2"))
}

func TestRunCmd_WithSharding(t *testing.T) {
	cmd, mockWorkflow, _ := newTestRoot(t, newRunCmd())

	mockWorkflow.On("Test", mock.Anything, mock.MatchedBy(func(args domain.TestArgs) bool {
		return args.ShardIndex == 1 && args.TotalShardCount == 3
	})).Return(nil)

	require.NoError(t, execute(t, cmd, "run", "--shard", "1/3", "./..."))
}

func TestRunCmd_InvalidShardIsRejected(t *testing.T) {
	cmd, _, _ := newTestRoot(t, newRunCmd())

	require.Error(t, execute(t, cmd, "run", "--shard", "4/3"))
}

func TestRunCmd_PathsExcludesAndOperators(t *testing.T) {
	cmd, mockWorkflow, _ := newTestRoot(t, newRunCmd())

	mockWorkflow.On("Test", mock.Anything, mock.MatchedBy(func(args domain.TestArgs) bool {
		return assert.ObjectsAreEqual([]m.Path{"./src", "./lib"}, args.Paths) &&
			assert.ObjectsAreEqual([]string{"^generated_", `\.d\.ts$`}, args.Exclude) &&
			assert.ObjectsAreEqual([]m.MutationType{m.MutationArithmetic, m.MutationString}, args.MutationTypes)
	})).Return(nil)

	require.NoError(t, execute(t, cmd,
		"run", "-x", "^generated_", "-x", `\.d\.ts$`,
		"--operator", "arithmetic,string",
		"./src", "./lib",
	))
}

func TestRunCmd_UnknownOperatorIsRejected(t *testing.T) {
	cmd, _, _ := newTestRoot(t, newRunCmd())

	require.Error(t, execute(t, cmd, "run", "--operator", "branch"))
}

func TestRunCmd_NoCacheFlag_DisablesCache(t *testing.T) {
	cmd, mockWorkflow, _ := newTestRoot(t, newRunCmd())

	mockWorkflow.On("Test", mock.Anything, mock.MatchedBy(func(args domain.TestArgs) bool {
		return !args.UseCache
	})).Return(nil)

	require.NoError(t, execute(t, cmd, "--no-cache", "run"))
}

func TestRunCmd_MutationTimeoutFlag(t *testing.T) {
	cmd, mockWorkflow, _ := newTestRoot(t, newRunCmd())

	mockWorkflow.On("Test", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, execute(t, cmd, "run", "--mutation-timeout", "7"))
	assert.Equal(t, 7*time.Second, mutationTimeout())
	assert.Equal(t, int64(7), viper.GetInt64(mutationTimeoutKey))
}

func TestListCmd(t *testing.T) {
	cmd, mockWorkflow, _ := newTestRoot(t, newListCmd())

	mockWorkflow.On("Estimate", mock.Anything, mock.MatchedBy(func(args domain.EstimateArgs) bool {
		return assert.ObjectsAreEqual([]m.Path{"./src/..."}, args.Paths)
	})).Return(nil)

	require.NoError(t, execute(t, cmd, "list", "./src/..."))
}

func TestViewCmd(t *testing.T) {
	t.Run("uses root output flag by default", func(t *testing.T) {
		cmd, mockWorkflow, _ := newTestRoot(t, newViewCmd())

		mockWorkflow.On("View", mock.Anything, domain.ViewArgs{Reports: m.Path(defaultReportsDir)}).Return(nil)

		require.NoError(t, execute(t, cmd, "view"))
	})

	t.Run("output flag is passed through", func(t *testing.T) {
		cmd, mockWorkflow, _ := newTestRoot(t, newViewCmd())

		mockWorkflow.On("View", mock.Anything, domain.ViewArgs{Reports: "./reports-dir"}).Return(nil)

		require.NoError(t, execute(t, cmd, "view", "--output", "./reports-dir"))
	})

	t.Run("positional args are rejected", func(t *testing.T) {
		cmd, _, _ := newTestRoot(t, newViewCmd())

		require.Error(t, execute(t, cmd, "view", "./custom-reports"))
	})
}

func TestMergeCmd(t *testing.T) {
	cmd, mockWorkflow, _ := newTestRoot(t, newMergeCmd())

	mockWorkflow.On("Merge", mock.Anything, domain.MergeArgs{Reports: "./reports-dir"}).Return(nil)

	require.NoError(t, execute(t, cmd, "--output", "./reports-dir", "merge"))
}
