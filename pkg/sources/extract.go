package sources

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
	"github.com/Adda-Baaj/khobor-watch/internal/logger"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoCards is returned when the card selector matches nothing on the page.
var ErrNoCards = errors.New("no article cards matched")

// extractor pulls (title, url, published) triples out of a listing page.
type extractor struct {
	card     string
	title    string
	linkSel  string
	linkAttr string
	linkRe   *regexp.Regexp
	timeSel  string
	timeAttr string
	sourceID string
	log      Logger
}

func newExtractor(src Source, log Logger) (*extractor, error) {
	ex := &extractor{
		card:     ConfigString(src, ConfigCardSelectorKey, DefaultCardSelector),
		title:    ConfigString(src, ConfigTitleSelectorKey, DefaultTitleSelector),
		linkSel:  ConfigString(src, ConfigLinkSelectorKey, ""),
		linkAttr: ConfigString(src, ConfigLinkAttrKey, DefaultLinkAttr),
		timeSel:  ConfigString(src, ConfigTimeSelectorKey, ""),
		timeAttr: ConfigString(src, ConfigTimeAttrKey, ""),
		sourceID: src.ID,
		log:      logger.Ensure(log),
	}

	pattern := ConfigValue(src, ConfigLinkPatternKey, DefaultLinkPattern)
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile link_pattern: %w", err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("link_pattern %q needs a capture group", pattern)
		}
		ex.linkRe = re
	}
	return ex, nil
}

// Extract parses body and returns the articles in page order.
// Cards without a title or URL are dropped with a warning.
func (ex *extractor) Extract(body []byte, pageURL string) ([]domain.Article, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	cards := doc.Find(ex.card)
	if cards.Length() == 0 {
		return nil, fmt.Errorf("%w: selector %q", ErrNoCards, ex.card)
	}

	articles := make([]domain.Article, 0, cards.Length())
	cards.Each(func(i int, card *goquery.Selection) {
		link := ex.link(card)
		title := collapseSpace(card.Find(ex.title).First().Text())

		if link == "" || title == "" {
			ex.log.WarnObj("article card skipped", "card_skip", map[string]any{
				"source_id": ex.sourceID,
				"index":     i,
				"has_url":   link != "",
				"has_title": title != "",
			})
			return
		}

		articles = append(articles, domain.Article{
			Title:     title,
			URL:       resolveURL(link, pageURL),
			Published: ex.published(card),
		})
	})

	if len(articles) == 0 {
		return nil, fmt.Errorf("none of %d cards yielded an article", cards.Length())
	}
	return articles, nil
}

func (ex *extractor) link(card *goquery.Selection) string {
	node := card
	if ex.linkSel != "" {
		node = card.Find(ex.linkSel).First()
	}
	raw, ok := node.Attr(ex.linkAttr)
	if !ok {
		return ""
	}
	raw = strings.TrimSpace(raw)
	if ex.linkRe == nil {
		return raw
	}
	m := ex.linkRe.FindStringSubmatch(raw)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func (ex *extractor) published(card *goquery.Selection) string {
	if ex.timeSel == "" {
		return ""
	}
	node := card.Find(ex.timeSel).First()
	if ex.timeAttr != "" {
		val, _ := node.Attr(ex.timeAttr)
		return strings.TrimSpace(val)
	}
	return collapseSpace(node.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveURL resolves a possibly relative URL against a base URL.
func resolveURL(raw, base string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}

	return baseURL.ResolveReference(parsed).String()
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
