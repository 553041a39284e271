package storage

import (
	"reflect"
	"testing"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
)

func articles(urls ...string) []domain.Article {
	out := make([]domain.Article, 0, len(urls))
	for _, u := range urls {
		out = append(out, domain.Article{Title: "t " + u, URL: u})
	}
	return out
}

func TestHistoryPolicyUnionsAndNeverShrinks(t *testing.T) {
	prev := domain.SeenSetFromURLs("https://a")

	next, save := PolicyHistory.Next(prev, true, articles("https://b", "https://a"))
	if !save {
		t.Fatalf("expected save when a URL was added")
	}
	if got := next.URLs(); !reflect.DeepEqual(got, []string{"https://a", "https://b"}) {
		t.Fatalf("URLs = %v", got)
	}
	if prev.Len() != 1 {
		t.Fatalf("prev was modified")
	}

	again, save := PolicyHistory.Next(next, true, articles("https://b"))
	if save {
		t.Fatalf("expected no save when nothing was added")
	}
	if again.Len() != 2 {
		t.Fatalf("history must not shrink, len=%d", again.Len())
	}
}

func TestHistoryPolicySavesFirstRunEvenWhenEmpty(t *testing.T) {
	next, save := PolicyHistory.Next(domain.NewSeenSet(), false, nil)
	if !save || next.Len() != 0 {
		t.Fatalf("first run should persist an empty set, save=%v len=%d", save, next.Len())
	}
}

func TestSnapshotPolicyReplaces(t *testing.T) {
	prev := domain.SeenSetFromURLs("https://a", "https://old")
	next, save := PolicySnapshot.Next(prev, true, articles("https://b", "https://a"))
	if !save {
		t.Fatalf("snapshot always saves")
	}
	if got := next.URLs(); !reflect.DeepEqual(got, []string{"https://b", "https://a"}) {
		t.Fatalf("URLs = %v", got)
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy(" Snapshot "); err != nil || p != PolicySnapshot {
		t.Fatalf("ParsePolicy snapshot: %v %v", p, err)
	}
	if _, err := ParsePolicy("forever"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
