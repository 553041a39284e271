package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
)

// decodeRecord accepts either a full record object or a bare URL string.
func decodeRecord(raw []byte) (domain.Article, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var url string
		if err := json.Unmarshal(raw, &url); err != nil {
			return domain.Article{}, err
		}
		return domain.Article{URL: url}, nil
	}
	var a domain.Article
	if err := json.Unmarshal(raw, &a); err != nil {
		return domain.Article{}, err
	}
	return a, nil
}

// decodeSet parses a JSON array of records or URLs.
func decodeSet(data []byte) (*domain.SeenSet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.NewSeenSet(), nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode seen set: %w", err)
	}
	set := domain.NewSeenSet()
	for i, item := range items {
		a, err := decodeRecord(item)
		if err != nil {
			return nil, fmt.Errorf("decode seen set entry %d: %w", i, err)
		}
		set.Add(a)
	}
	return set, nil
}

// encodeSet writes records, or bare URLs when urlsOnly is set.
func encodeSet(seen *domain.SeenSet, urlsOnly bool) ([]byte, error) {
	var v any
	if urlsOnly {
		urls := seen.URLs()
		if urls == nil {
			urls = []string{}
		}
		v = urls
	} else {
		records := seen.Records()
		if records == nil {
			records = []domain.Article{}
		}
		v = records
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode seen set: %w", err)
	}
	return append(data, '\n'), nil
}
