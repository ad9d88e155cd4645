package search

import (
	"context"
	"fmt"

	"github.com/yumyai/snpseek/pkg/model"
)

// VarietyMetadataJoiner bulk loads variety records for matrix rows.
type VarietyMetadataJoiner struct {
	store VarietyStore
	retry RetryPolicy
}

func NewVarietyMetadataJoiner(store VarietyStore, retry RetryPolicy) *VarietyMetadataJoiner {
	return &VarietyMetadataJoiner{store: store, retry: retry}
}

// Join maps ids to their records. Ids without a record are left out.
func (j *VarietyMetadataJoiner) Join(ctx context.Context, ids []string) (map[string]model.VarietyRecord, error) {
	out := make(map[string]model.VarietyRecord, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	recs, err := retryValue(ctx, j.retry, "variety.find", func(ctx context.Context) ([]model.VarietyRecord, error) {
		return j.store.FindByIDs(ctx, ids)
	})
	if err != nil {
		return nil, fmt.Errorf("join variety metadata: %w", err)
	}
	for _, r := range recs {
		out[r.ID] = r
	}
	return out, nil
}
