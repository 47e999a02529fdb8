// =============================================================================
// sources_search.go - クエリ戦略（検索API・RSS検索）
// =============================================================================
//
// カテゴリごとの検索クエリを検索エンドポイントに投げて見出しを得る。
//
// 【含まれるソース】
//   1. NAVER 検索ニュースAPI - JSON（要 NAVER_CLIENT_ID / NAVER_CLIENT_SECRET）
//   2. Google ニュース RSS 検索 - XMLフィード（認証不要）
//
// どちらも上限価ヘッドライン収集（limitup.go の Path B）の検索にも使う。
//
// =============================================================================
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SearchSource はキーワード検索ができる取得元
type SearchSource interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Headline, error)
}

// QuerySource はカテゴリ → クエリ表を持ち、SearchSource で検索して NewsSource として振る舞う
type QuerySource struct {
	search  SearchSource
	queries map[string]string
}

// NewQuerySource はクエリ戦略を作る
func NewQuerySource(search SearchSource, queries map[string]string) *QuerySource {
	return &QuerySource{search: search, queries: copyStringMap(queries)}
}

// Name は検索元の識別子
func (s *QuerySource) Name() string { return s.search.Name() }

// Supports はカテゴリのクエリが設定されているか
func (s *QuerySource) Supports(category string) bool {
	return s.queries[category] != ""
}

// FetchCategory はカテゴリのクエリで検索する
func (s *QuerySource) FetchCategory(ctx context.Context, category string, limit int) ([]Headline, error) {
	q, ok := s.queries[category]
	if !ok || q == "" {
		return nil, fmt.Errorf("no query configured for category %q", category)
	}
	return s.search.Search(ctx, q, limit)
}

// =============================================================================
// NAVER 検索ニュースAPI
// =============================================================================
//
// エンドポイント: https://openapi.naver.com/v1/search/news.json
// パラメータ:     query, display（件数）, sort（sim | date）
// ヘッダー:       X-Naver-Client-Id, X-Naver-Client-Secret
//
// タイトルには検索語の <b>...</b> 強調とHTMLエンティティが含まれるため除去する。

// naverNewsResponse は検索APIのレスポンス
type naverNewsResponse struct {
	Items []struct {
		Title        string `json:"title"`
		OriginalLink string `json:"originallink"`
		Link         string `json:"link"`
		Description  string `json:"description"`
		PubDate      string `json:"pubDate"`
	} `json:"items"`
}

// NaverSearchSource は NAVER 検索ニュースAPIクライアント
type NaverSearchSource struct {
	endpoint     string
	sort         string
	clientID     string
	clientSecret string
	cfg          HeadlineSourceConfig
}

// NewNaverSearchSource は検索APIクライアントを作る
//
// 認証情報が揃っていない場合は nil を返す（呼び出し元で戦略から外す）。
func NewNaverSearchSource(nc NaverConfig, cfg HeadlineSourceConfig) *NaverSearchSource {
	if !nc.HasCredentials() {
		return nil
	}
	return &NaverSearchSource{
		endpoint:     nc.Endpoint,
		sort:         nc.Sort,
		clientID:     nc.ClientID,
		clientSecret: nc.ClientSecret,
		cfg:          cfg,
	}
}

// Name はソース識別子
func (s *NaverSearchSource) Name() string { return "naver" }

// Search はクエリで検索し、最大 limit 件の見出しを返す
func (s *NaverSearchSource) Search(ctx context.Context, query string, limit int) ([]Headline, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(limit))
	params.Set("sort", s.sort)

	req, err := newRequest(ctx, s.endpoint+"?"+params.Encode(), s.cfg)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Naver-Client-Id", s.clientID)
	req.Header.Set("X-Naver-Client-Secret", s.clientSecret)

	resp, err := doGet(req, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("naver search %q: %w", query, err)
	}
	defer resp.Body.Close()

	var data naverNewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("naver search %q: decode: %w", query, err)
	}

	out := make([]Headline, 0, min(len(data.Items), max(limit, 0)))
	for _, it := range data.Items {
		if len(out) >= limit {
			break
		}
		title := cleanHTMLTags(it.Title)
		link := strings.TrimSpace(it.OriginalLink)
		if link == "" {
			link = strings.TrimSpace(it.Link)
		}
		if title == "" || link == "" {
			continue
		}
		out = append(out, Headline{Title: title, URL: link, Source: hostToSource(link, "뉴스")})
	}
	return out, nil
}

// =============================================================================
// Google ニュース RSS 検索
// =============================================================================
//
// エンドポイント: https://news.google.com/rss/search
// パラメータ:     q, hl=ko, gl=KR, ceid=KR:ko
//
// 件数指定パラメータは無いため、取得後に limit 件で切る。

// RSSSearchSource は RSS を返す検索エンドポイントのクライアント
type RSSSearchSource struct {
	gc  GoogleConfig
	cfg HeadlineSourceConfig
}

// NewRSSSearchSource は Google ニュース RSS 検索クライアントを作る
func NewRSSSearchSource(gc GoogleConfig, cfg HeadlineSourceConfig) *RSSSearchSource {
	return &RSSSearchSource{gc: gc, cfg: cfg}
}

// Name はソース識別子
func (s *RSSSearchSource) Name() string { return "google" }

// Search はクエリで検索し、最大 limit 件の見出しを返す
func (s *RSSSearchSource) Search(ctx context.Context, query string, limit int) ([]Headline, error) {
	params := url.Values{}
	params.Set("q", query)
	if s.gc.HL != "" {
		params.Set("hl", s.gc.HL)
	}
	if s.gc.GL != "" {
		params.Set("gl", s.gc.GL)
	}
	if s.gc.CEID != "" {
		params.Set("ceid", s.gc.CEID)
	}

	feed, err := fetchRSSFeed(ctx, s.gc.Endpoint+"?"+params.Encode(), s.cfg)
	if err != nil {
		return nil, fmt.Errorf("rss search %q: %w", query, err)
	}
	return feedItemsToHeadlines(feed.Items, limit, "뉴스"), nil
}
