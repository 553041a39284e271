package storage

import (
	"fmt"
	"strings"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
)

// Policy decides how a fetch result turns into the next persisted set.
type Policy string

const (
	// PolicyHistory keeps every URL ever fetched; the set never shrinks.
	PolicyHistory Policy = "history"
	// PolicySnapshot keeps only the URLs of the latest fetch.
	PolicySnapshot Policy = "snapshot"
)

// ParsePolicy validates a policy name.
func ParsePolicy(name string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(name))); p {
	case PolicyHistory, PolicySnapshot:
		return p, nil
	default:
		return "", fmt.Errorf("unknown seen policy %q", name)
	}
}

// Next returns the set to persist after a run and whether it must be written.
// prev is not modified.
func (p Policy) Next(prev *domain.SeenSet, found bool, fetched []domain.Article) (*domain.SeenSet, bool) {
	if p == PolicySnapshot {
		return domain.NewSeenSet(fetched...), true
	}

	next := domain.NewSeenSet(prev.Records()...)
	added := 0
	for _, a := range fetched {
		if next.Add(a) {
			added++
		}
	}
	return next, added > 0 || !found
}
