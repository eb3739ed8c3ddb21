// Package repository materializes the state-vector dataset, serving it from
// the cache when possible and refetching the feed when not.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"iss-tracker/internal/cache"
	"iss-tracker/internal/modules/tracker/feed"
	"iss-tracker/internal/modules/tracker/types"
)

// datasetKey is the single cache slot holding the JSON-encoded dataset.
// The whole dataset is replaced on every cold fetch; there is no
// incremental update and no versioning.
const datasetKey = "iss:dataset"

// Fetcher retrieves a fresh dataset from the upstream feed.
type Fetcher interface {
	Fetch(ctx context.Context) ([]types.StateVector, error)
}

// DatasetSource yields the current dataset snapshot.
type DatasetSource interface {
	GetDataset(ctx context.Context) ([]types.StateVector, error)
	Refresh(ctx context.Context) ([]types.StateVector, error)
}

type repositoryImpl struct {
	store   cache.Store
	fetcher Fetcher
}

func NewRepository(store cache.Store, fetcher Fetcher) DatasetSource {
	return &repositoryImpl{store: store, fetcher: fetcher}
}

// GetDataset returns the cached dataset when present, otherwise fetches,
// caches and returns a fresh one. A backend failure or a corrupt cached
// value is logged and treated as a miss, so a broken cache degrades to
// fetch-per-request instead of taking the API down.
func (r *repositoryImpl) GetDataset(ctx context.Context) ([]types.StateVector, error) {
	raw, err := r.store.Get(ctx, datasetKey)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("cache get failed, falling back to fetch", "key", datasetKey, "error", err)
		}
		return r.Refresh(ctx)
	}

	var dataset []types.StateVector
	if err := json.Unmarshal(raw, &dataset); err != nil {
		slog.Warn("corrupt cached dataset, falling back to fetch", "key", datasetKey, "error", err)
		return r.Refresh(ctx)
	}
	return dataset, nil
}

// Refresh fetches and parses the feed, replacing the cached dataset on
// success. A document with no state vectors yields an empty dataset (logged,
// not cached, not an error). Cache write failures are logged only; the
// freshly fetched data is still returned.
func (r *repositoryImpl) Refresh(ctx context.Context) ([]types.StateVector, error) {
	dataset, err := r.fetcher.Fetch(ctx)
	if err != nil {
		if errors.Is(err, feed.ErrNoStateVectors) {
			slog.Error("feed contained no state vectors")
			return []types.StateVector{}, nil
		}
		return nil, fmt.Errorf("refresh dataset: %w", err)
	}

	raw, err := json.Marshal(dataset)
	if err != nil {
		slog.Error("encode dataset for cache", "error", err)
		return dataset, nil
	}
	if err := r.store.Set(ctx, datasetKey, raw); err != nil {
		slog.Warn("cache set failed", "key", datasetKey, "error", err)
	}
	return dataset, nil
}
