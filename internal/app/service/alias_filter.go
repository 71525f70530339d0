package service

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/sifan077/snipr/internal/app/repository"
)

const (
	defaultFilterCapacity = 1_000_000
	defaultFalsePositive  = 0.001
)

// AliasFilter answers "definitely free" for codes without a database round trip.
// A positive answer must be confirmed against the repository.
type AliasFilter struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewAliasFilter sizes the filter for capacity codes at the default false-positive rate.
func NewAliasFilter(capacity uint) *AliasFilter {
	if capacity == 0 {
		capacity = defaultFilterCapacity
	}
	return &AliasFilter{filter: bloom.NewWithEstimates(capacity, defaultFalsePositive)}
}

// Seed adds every code currently stored in repo.
func (f *AliasFilter) Seed(ctx context.Context, repo repository.LinkRepository) (int, error) {
	n := 0
	err := repo.EachCode(ctx, func(code string) {
		f.Add(code)
		n++
	})
	return n, err
}

func (f *AliasFilter) Add(code string) {
	f.mu.Lock()
	f.filter.AddString(code)
	f.mu.Unlock()
}

// MightExist is false only when code was never added.
func (f *AliasFilter) MightExist(code string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.TestString(code)
}
