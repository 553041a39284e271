package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package sources describes the watched listing page and how to fetch it.

// Fetch strategies.
const (
	TypeRendered = "rendered"
	TypeStatic   = "static"
	TypeFeed     = "feed"
	TypeSitemap  = "sitemap"
)

// Extraction defaults match the listing markup of the watched aggregator.
const (
	DefaultCardSelector  = "div.article-card"
	DefaultTitleSelector = "h3"
	DefaultLinkAttr      = "onclick"
	DefaultLinkPattern   = `window\.open\('(.+?)'`
)

// Source config keys.
const (
	ConfigCardSelectorKey   = "card_selector"
	ConfigTitleSelectorKey  = "title_selector"
	ConfigLinkSelectorKey   = "link_selector"
	ConfigLinkAttrKey       = "link_attr"
	ConfigLinkPatternKey    = "link_pattern"
	ConfigTimeSelectorKey   = "time_selector"
	ConfigTimeAttrKey       = "time_attr"
	ConfigWaitSelectorKey   = "wait_selector"
	ConfigUserAgentKey      = "user_agent"
	ConfigAcceptKey         = "accept"
	ConfigAcceptLanguageKey = "accept_language"
	ConfigCacheControlKey   = "cache_control"
)

// Source describes the single page being watched.
type Source struct {
	ID     string         `json:"id" yaml:"id"`
	Name   string         `json:"name" yaml:"name"`
	Type   string         `json:"type" yaml:"type"`
	URL    string         `json:"url" yaml:"url"`
	Config map[string]any `json:"config" yaml:"config"`
}

// Default returns the built-in source for url fetched with the given strategy.
func Default(url, typ string) Source {
	return Sanitize(Source{
		ID:   "default",
		Name: "default",
		Type: typ,
		URL:  url,
	})
}

// LoadSource reads a source definition from a YAML or JSON file.
// Empty fields in the file are filled from fallback.
func LoadSource(path string, fallback Source) (Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Source{}, errors.New("source file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return Source{}, fmt.Errorf("open source file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return Source{}, fmt.Errorf("read source file: %w", err)
	}

	src, err := parseSource(raw, filepath.Ext(path))
	if err != nil {
		return Source{}, err
	}

	if strings.TrimSpace(src.URL) == "" {
		src.URL = fallback.URL
	}
	if strings.TrimSpace(src.Type) == "" {
		src.Type = fallback.Type
	}
	src = Sanitize(src)
	if err := Validate(src); err != nil {
		return Source{}, err
	}
	return src, nil
}

type unmarshalFn func([]byte, any) error

func parseSource(data []byte, ext string) (Source, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var src Source
		if err := d.fn(data, &src); err == nil {
			return src, nil
		}
	}

	return Source{}, errors.New("source file format not recognized (expected YAML or JSON)")
}

// Sanitize trims fields and applies the extraction defaults.
func Sanitize(s Source) Source {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.Type = strings.ToLower(strings.TrimSpace(s.Type))
	s.URL = strings.TrimSpace(s.URL)

	if s.ID == "" {
		s.ID = "default"
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	if s.Type == "" {
		s.Type = TypeRendered
	}
	if s.Config == nil {
		s.Config = map[string]any{}
	}
	return s
}

// Validate checks the required fields.
func Validate(s Source) error {
	if s.URL == "" {
		return fmt.Errorf("url is required for source %q", s.ID)
	}
	switch s.Type {
	case TypeRendered, TypeStatic, TypeFeed, TypeSitemap:
	default:
		return fmt.Errorf("unsupported fetch strategy %q for source %q", s.Type, s.ID)
	}
	return nil
}

// ConfigString returns the trimmed string value for key from source.Config or a fallback.
func ConfigString(s Source, key, fallback string) string {
	if s.Config != nil {
		if raw, ok := s.Config[key]; ok {
			if val, ok := raw.(string); ok {
				if trimmed := strings.TrimSpace(val); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return fallback
}

// ConfigValue returns the raw string for key, allowing an explicit empty value.
func ConfigValue(s Source, key, fallback string) string {
	if s.Config != nil {
		if raw, ok := s.Config[key]; ok {
			if val, ok := raw.(string); ok {
				return strings.TrimSpace(val)
			}
		}
	}
	return fallback
}

// Headers builds the common request headers from a source config (skips empty values).
func Headers(s Source) map[string]string {
	headers := make(map[string]string, 4)

	if v := ConfigString(s, ConfigUserAgentKey, ""); v != "" {
		headers["User-Agent"] = v
	}
	if v := ConfigString(s, ConfigAcceptKey, ""); v != "" {
		headers["Accept"] = v
	}
	if v := ConfigString(s, ConfigAcceptLanguageKey, ""); v != "" {
		headers["Accept-Language"] = v
	}
	if v := ConfigString(s, ConfigCacheControlKey, ""); v != "" {
		headers["Cache-Control"] = v
	}

	return headers
}
