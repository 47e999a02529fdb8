// =============================================================================
// sources_rss.go - フィード戦略（RSS）
// =============================================================================
//
// カテゴリごとに固定のRSSフィードURLを持ち、gofeed でパースして
// 先頭 N 件を見出しにする。デフォルトは NAVER ニュースの分野別RSS。
//
// 手法: RSS Feed (gofeed)
// URL:  https://rss.naver.com/<section>/<section>_general.xml
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
)

// FeedSource はカテゴリ → フィードURL の固定表から見出しを取得する
type FeedSource struct {
	feeds          map[string]string
	fallbackSource string
	cfg            HeadlineSourceConfig
}

// NewFeedSource はフィード戦略を作る
//
// fallbackSource はリンクが空のエントリに付けるソース名（例: "네이버뉴스"）。
func NewFeedSource(feeds map[string]string, fallbackSource string, cfg HeadlineSourceConfig) *FeedSource {
	return &FeedSource{
		feeds:          copyStringMap(feeds),
		fallbackSource: fallbackSource,
		cfg:            cfg,
	}
}

// Name はソース識別子
func (s *FeedSource) Name() string { return "feed" }

// Supports はカテゴリのフィードURLが設定されているか
func (s *FeedSource) Supports(category string) bool {
	return s.feeds[category] != ""
}

// FetchCategory はカテゴリのフィードを取得し、先頭 limit 件を返す
func (s *FeedSource) FetchCategory(ctx context.Context, category string, limit int) ([]Headline, error) {
	feedURL, ok := s.feeds[category]
	if !ok || feedURL == "" {
		return nil, fmt.Errorf("no feed configured for category %q", category)
	}

	feed, err := fetchRSSFeed(ctx, feedURL, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", category, err)
	}

	return feedItemsToHeadlines(feed.Items, limit, s.fallbackSource), nil
}
