// =============================================================================
// headlines.go - ニュース取得の共通ロジック
// =============================================================================
//
// このファイルはカテゴリ別ニュース見出し収集の共通ロジックを提供します。
// 個別の取得戦略は以下のファイルに分割されています：
//
// 【ファイル構成】
//   - headlines.go (このファイル) - 共通ロジック、HTTPヘルパー、ギャップ補完
//   - sources_rss.go              - フィード戦略（NAVER ニュース RSS）
//   - sources_search.go           - クエリ戦略（NAVER 検索API、Google ニュース RSS 検索）
//   - sources_html.go             - 上限価一覧ページのスクレイピング
//
// =============================================================================
// 【フォールバック方針】
// =============================================================================
//
// 戦略は優先順に試し、前の戦略で「空だったカテゴリだけ」を次の戦略で埋める
// （カテゴリ単位のギャップ補完）。セクション全体の置き換えはしない。
//
//   naver (認証情報があれば) → feed
//
// 1カテゴリの失敗は空リストとして扱い、実行は止めない。
// リクエストの間には固定の待機（デフォルト200ms）を入れる。
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

var reScriptTags = regexp.MustCompile(`(?s)<script[^>]*>.*?</script>`)
var reHTMLTags = regexp.MustCompile(`<[^>]*>`)

// =============================================================================
// 設定と構造体
// =============================================================================

// HeadlineSourceConfig は見出し収集時のHTTP設定を保持
type HeadlineSourceConfig struct {
	UserAgent      string        // HTTPリクエスト時のUser-Agentヘッダー
	AcceptLanguage string        // Accept-Languageヘッダー
	Timeout        time.Duration // HTTPリクエストのタイムアウト時間
	Client         *http.Client  // 1回の実行で共有するHTTPクライアント
}

// NewHeadlineConfig は Config から HeadlineSourceConfig を組み立てる
//
// client が nil の場合はタイムアウト付きのクライアントを新しく作る。
func NewHeadlineConfig(cfg *Config, client *http.Client) (HeadlineSourceConfig, error) {
	timeout, err := cfg.HTTP.TimeoutDuration()
	if err != nil {
		return HeadlineSourceConfig{}, fmt.Errorf("http timeout: %w", err)
	}
	if client == nil {
		client = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return HeadlineSourceConfig{
		UserAgent:      cfg.HTTP.UserAgent,
		AcceptLanguage: cfg.HTTP.AcceptLanguage,
		Timeout:        timeout,
		Client:         client,
	}, nil
}

// NewsSource は1つの取得戦略
//
// 全ての戦略はこのインターフェースに従う:
//   - Name:          ログ・レポート用の識別子
//   - Supports:      そのカテゴリを取得できるか（フィードURL・クエリの有無）
//   - FetchCategory: カテゴリの見出しを最大 limit 件返す
type NewsSource interface {
	Name() string
	Supports(category string) bool
	FetchCategory(ctx context.Context, category string, limit int) ([]Headline, error)
}

// Throttle はリクエスト間の固定待機
//
// バースト1の rate.Limiter なので、2回目以降の Wait は前回から delay 経過まで待つ。
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle は delay 間隔のスロットルを作る。delay<=0 なら待機しない。
func NewThrottle(delay time.Duration) *Throttle {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Throttle{limiter: rate.NewLimiter(limit, 1)}
}

// Wait は次のリクエストまで待つ
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.limiter.Wait(ctx)
}

// =============================================================================
// 共通収集関数
// =============================================================================

// CollectNews は戦略を優先順に試し、空のカテゴリだけを順に埋める
//
// 【引数】
//   - sources:    優先順の取得戦略
//   - categories: 出力カテゴリ（全カテゴリが必ず結果に含まれる）
//   - limit:      カテゴリあたりの最大見出し数
//   - throttle:   リクエスト間の待機
//
// 【戻り値】
//   - 全カテゴリを含む NewsSection（失敗カテゴリは空リスト）
//   - 各リクエストの結果（FetchOutcome）
func CollectNews(ctx context.Context, sources []NewsSource, categories []string, limit int, throttle *Throttle, logger arbor.ILogger) (*NewsSection, []FetchOutcome) {
	section := NewNewsSection(categories)
	var outcomes []FetchOutcome

	for _, src := range sources {
		for _, cat := range section.EmptyCategories() {
			if !src.Supports(cat) {
				continue
			}
			if err := throttle.Wait(ctx); err != nil {
				o := newOutcome(src.Name(), cat, 0, err)
				outcomes = append(outcomes, o)
				logOutcome(logger, o)
				continue
			}

			hs, err := src.FetchCategory(ctx, cat, limit)
			if err != nil {
				hs = nil
			}
			hs = capHeadlines(hs, limit)
			section.Set(cat, hs)

			o := newOutcome(src.Name(), cat, len(hs), err)
			outcomes = append(outcomes, o)
			logOutcome(logger, o)
		}
	}

	return section, outcomes
}

// capHeadlines は見出しを limit 件に切り詰める
func capHeadlines(hs []Headline, limit int) []Headline {
	if limit >= 0 && len(hs) > limit {
		return hs[:limit]
	}
	return hs
}

// =============================================================================
// HTTPヘルパー
// =============================================================================

// newRequest は共通ヘッダー付きのGETリクエストを作る
func newRequest(ctx context.Context, u string, cfg HeadlineSourceConfig) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if cfg.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", cfg.AcceptLanguage)
	}
	return req, nil
}

// doGet はGETを実行し、2xx以外をエラーにする。呼び出し元で Body を閉じること。
func doGet(req *http.Request, cfg HeadlineSourceConfig) (*http.Response, error) {
	resp, err := cfg.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %s", req.URL.Redacted(), resp.Status)
	}
	return resp, nil
}

// fetchRSSFeed は指定URLからRSS/Atomフィードを取得してパース
//
// 共有HTTPクライアントでフェッチし、gofeed でパースする。
func fetchRSSFeed(ctx context.Context, feedURL string, cfg HeadlineSourceConfig) (*gofeed.Feed, error) {
	req, err := newRequest(ctx, feedURL, cfg)
	if err != nil {
		return nil, err
	}

	resp, err := doGet(req, cfg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("RSS parse failed: %w", err)
	}
	return feed, nil
}

// feedItemsToHeadlines は gofeed のアイテムを Headline に変換する
//
// タイトルが空のアイテムは飛ばす。リンクが空なら fallbackSource をソース名にする。
func feedItemsToHeadlines(items []*gofeed.Item, limit int, fallbackSource string) []Headline {
	out := make([]Headline, 0, min(len(items), max(limit, 0)))
	for _, item := range items {
		if len(out) >= limit {
			break
		}
		title := cleanHTMLTags(item.Title)
		if title == "" {
			continue
		}
		link := strings.TrimSpace(item.Link)
		src := fallbackSource
		if link != "" {
			src = hostToSource(link, fallbackSource)
		}
		out = append(out, Headline{Title: title, URL: link, Source: src})
	}
	return out
}

// =============================================================================
// 文字列ヘルパー
// =============================================================================

// hostToSource はURLのホスト名（www. を除く）をソース名として返す
func hostToSource(rawURL, fallback string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fallback
	}
	host := strings.TrimPrefix(u.Host, "www.")
	if host == "" {
		return fallback
	}
	return host
}

// cleanHTMLTags はHTMLタグ（検索APIの <b> 強調など）を除去し、エンティティをデコードする
func cleanHTMLTags(s string) string {
	if s == "" {
		return ""
	}
	text := reScriptTags.ReplaceAllString(s, "")
	text = reHTMLTags.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	return strings.TrimSpace(text)
}
