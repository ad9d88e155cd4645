package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/yumyai/snpseek/pkg/db"
)

// ErrReferenceNotFound aborts any request naming an unknown reference genome.
var ErrReferenceNotFound = errors.New("reference genome not found")

// ReferenceGenomeLocator resolves a reference genome id from its name and SNP set.
type ReferenceGenomeLocator struct {
	store ReferenceStore
	retry RetryPolicy
}

func NewReferenceGenomeLocator(store ReferenceStore, retry RetryPolicy) *ReferenceGenomeLocator {
	return &ReferenceGenomeLocator{store: store, retry: retry}
}

func (l *ReferenceGenomeLocator) Locate(ctx context.Context, name, snpSet string) (string, error) {
	id, err := retryValue(ctx, l.retry, "reference.find", func(ctx context.Context) (string, error) {
		return l.store.FindID(ctx, name, snpSet)
	})
	if errors.Is(err, db.ErrNotFound) {
		return "", fmt.Errorf("%w: %w", ErrReferenceNotFound, err)
	}
	return id, err
}
