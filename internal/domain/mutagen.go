// Package domain contains the core mutation testing workflow and logic.
package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gooze.dev/pkg/jsgooze/internal/adapter"
	"gooze.dev/pkg/jsgooze/internal/domain/mutagens"
	m "gooze.dev/pkg/jsgooze/internal/model"
)

// Mutagen defines the interface for mutation generation.
type Mutagen interface {
	GenerateMutations(ctx context.Context, source m.Source, mutationTypes ...m.MutationType) ([]m.Mutation, error)
	StreamMutations(ctx context.Context, sources <-chan m.Source, threads int, mutationTypes ...m.MutationType) (<-chan m.Mutation, <-chan error)
}

// mutagen handles pure mutation generation logic.
type mutagen struct {
	adapter.JSFileAdapter
	adapter.SourceFSAdapter
	collector NodeCollector
}

// NewMutagen creates a new Mutagen instance.
func NewMutagen(jsFileAdapter adapter.JSFileAdapter, sourceFSAdapter adapter.SourceFSAdapter, collector NodeCollector) Mutagen {
	return &mutagen{
		JSFileAdapter:   jsFileAdapter,
		SourceFSAdapter: sourceFSAdapter,
		collector:       collector,
	}
}

var mutationGenerators = map[m.MutationType]mutagens.Generator{
	m.MutationArithmetic: mutagens.GenerateArithmeticMutations,
	m.MutationBoolean:    mutagens.GenerateBooleanMutations,
	m.MutationComparison: mutagens.GenerateComparisonMutations,
	m.MutationLogical:    mutagens.GenerateLogicalMutations,
	m.MutationUnary:      mutagens.GenerateUnaryMutations,
	m.MutationString:     mutagens.GenerateStringMutations,
	m.MutationBlock:      mutagens.GenerateBlockMutations,
	m.MutationBranch:     mutagens.GenerateBranchMutations,
}

func (mg *mutagen) GenerateMutations(ctx context.Context, source m.Source, mutationTypes ...m.MutationType) ([]m.Mutation, error) {
	if err := validateSource(source); err != nil {
		return nil, err
	}

	mutationTypes, err := resolveMutationTypes(mutationTypes)
	if err != nil {
		return nil, err
	}

	if err := validateAdapters(mg); err != nil {
		return nil, err
	}

	content, err := mg.ReadFile(ctx, source.Origin.FullPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", m.ErrUnreadable, source.Origin.FullPath, err)
	}

	file, err := mg.Parse(ctx, string(source.Origin.FullPath), content)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	nodes, err := mg.collector.Collect(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to collect nodes of %s: %w", source.Origin.FullPath, err)
	}

	mutations := collectMutations(nodes, content, source, mutationTypes)

	slog.Debug("Generated mutations", "file", source.Origin.FullPath, "nodes", nodes.Len(), "mutations", len(mutations))

	return mutations, nil
}

func validateSource(source m.Source) error {
	if source.Origin == nil || source.Origin.FullPath == "" {
		return fmt.Errorf("missing source origin")
	}

	return nil
}

func validateAdapters(mg *mutagen) error {
	if mg.SourceFSAdapter == nil || mg.JSFileAdapter == nil || mg.collector == nil {
		return fmt.Errorf("missing adapters")
	}

	return nil
}

func resolveMutationTypes(mutationTypes []m.MutationType) ([]m.MutationType, error) {
	if len(mutationTypes) == 0 {
		return m.AllMutationTypes, nil
	}

	for _, mutationType := range mutationTypes {
		if !mutationType.Valid() {
			return nil, fmt.Errorf("unsupported mutation type: %s", mutationType)
		}
	}

	return mutationTypes, nil
}

// collectMutations applies the requested generators to every candidate node
// in document order and numbers the results per type.
func collectMutations(nodes *m.NodeSet, content []byte, source m.Source, mutationTypes []m.MutationType) []m.Mutation {
	mutations := make([]m.Mutation, 0)
	counters := make(map[m.MutationType]int)
	prefix := shortHash(source)

	for _, node := range nodes.Nodes() {
		for _, mutationType := range mutationTypes {
			gen, ok := mutationGenerators[mutationType]
			if !ok {
				continue
			}

			for _, mutation := range gen(node, nodes, content, source) {
				counters[mutationType]++
				mutation.ID = fmt.Sprintf("%s%s_%d", prefix, strings.ToUpper(string(mutationType)), counters[mutationType])
				mutations = append(mutations, mutation)
			}
		}
	}

	return mutations
}

func shortHash(source m.Source) string {
	if len(source.Origin.Hash) < 8 {
		return ""
	}

	return source.Origin.Hash[:8] + "-"
}

// StreamMutations streams mutations for sources received from a channel.
// It returns a channel of mutations and a channel for errors. A source that
// fails to parse is reported on the error channel and skipped. Both channels
// close when sources is drained or ctx is cancelled.
func (mg *mutagen) StreamMutations(ctx context.Context, sources <-chan m.Source, threads int, mutationTypes ...m.MutationType) (<-chan m.Mutation, <-chan error) {
	bufferSize := threads
	if bufferSize <= 0 {
		bufferSize = 1
	}

	mutationCh := make(chan m.Mutation, bufferSize)
	errCh := make(chan error, bufferSize)

	go func() {
		defer close(mutationCh)
		defer close(errCh)

		resolvedTypes, err := mg.validateConfig(mutationTypes)
		if err != nil {
			errCh <- err
			return
		}

		for source := range sources {
			if ctx.Err() != nil {
				return
			}

			mutations, err := mg.GenerateMutations(ctx, source, resolvedTypes...)
			if err != nil {
				slog.Debug("Failed to generate mutations", "error", err)

				if !sendErr(ctx, errCh, err) {
					return
				}

				continue
			}

			if !sendMutations(ctx, mutations, mutationCh) {
				return
			}
		}
	}()

	return mutationCh, errCh
}

// validateConfig validates adapters and resolves mutation types.
func (mg *mutagen) validateConfig(mutationTypes []m.MutationType) ([]m.MutationType, error) {
	resolvedTypes, err := resolveMutationTypes(mutationTypes)
	if err != nil {
		return nil, err
	}

	if err := validateAdapters(mg); err != nil {
		return nil, err
	}

	return resolvedTypes, nil
}

// sendMutations sends mutations to the channel, respecting context cancellation.
// Returns false if context was cancelled.
func sendMutations(ctx context.Context, mutations []m.Mutation, mutationCh chan<- m.Mutation) bool {
	for _, mutation := range mutations {
		select {
		case <-ctx.Done():
			return false
		case mutationCh <- mutation:
		}
	}

	return true
}

func sendErr(ctx context.Context, errCh chan<- error, err error) bool {
	select {
	case <-ctx.Done():
		return false
	case errCh <- err:
		return true
	}
}
