// =============================================================================
// config.go - ブリーフィング設定
// =============================================================================
//
// このファイルは設定のデフォルト値・TOMLファイルによる上書き・環境変数の反映・
// 検証を行います。
//
// 【設定グループ】
//   - HTTPConfig:    User-Agent、言語ヘッダー、タイムアウト
//   - NewsConfig:    カテゴリ、RSSフィード、検索クエリ、取得戦略の順序
//   - NaverConfig:   NAVER検索API（認証情報は環境変数のみ）
//   - GoogleConfig:  Googleニュース RSS 検索
//   - LimitUpConfig: 上限価ページ、キーワード、ヒューリスティック設定
//   - OutputConfig:  出力パス、銘柄検索リンク
//   - LoggingConfig: ログレベル
//
// 【読み込み順】
//   1. DefaultConfig()          - コードに埋め込まれた固定値
//   2. LoadConfigFile(path)     - briefing.toml があれば上書き
//   3. ApplyEnv(os.Getenv)      - NAVER_CLIENT_ID / NAVER_CLIENT_SECRET
//   4. Validate()               - validator/v10 で検証
//
// =============================================================================
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// =============================================================================
// 設定構造体
// =============================================================================

// Config はブリーフィング生成の全設定を保持する
type Config struct {
	HTTP    HTTPConfig    `toml:"http"`
	News    NewsConfig    `toml:"news"`
	Naver   NaverConfig   `toml:"naver"`
	Google  GoogleConfig  `toml:"google"`
	LimitUp LimitUpConfig `toml:"limit_up"`
	Output  OutputConfig  `toml:"output"`
	Logging LoggingConfig `toml:"logging"`
}

// HTTPConfig は共有HTTPクライアントの設定
type HTTPConfig struct {
	UserAgent      string `toml:"user_agent" validate:"required"`
	AcceptLanguage string `toml:"accept_language"`
	// Timeout は1リクエストあたりのタイムアウト（例: "10s"）
	Timeout string `toml:"timeout" validate:"required"`
}

// NewsConfig はニュース取得の設定
type NewsConfig struct {
	// Categories は出力するカテゴリの順序（全カテゴリが必ず出力される）
	Categories []string `toml:"categories" validate:"min=1,dive,required"`

	// MaxPerCategory はカテゴリあたりの最大見出し数
	MaxPerCategory int `toml:"max_per_category" validate:"gt=0"`

	// Delay はリクエスト間の待機時間（例: "200ms"、"0s"で無効）
	Delay string `toml:"delay" validate:"required"`

	// Strategies は取得戦略の優先順（"naver" | "google" | "feed"）
	// 先の戦略で空だったカテゴリだけを後の戦略で埋める
	Strategies []string `toml:"strategies" validate:"min=1,dive,oneof=naver google feed"`

	// Feeds はカテゴリ → RSSフィードURL
	Feeds map[string]string `toml:"feeds"`

	// Queries はカテゴリ → 検索クエリ
	Queries map[string]string `toml:"queries"`

	// FeedFallbackSource はリンクが無いエントリのソース名
	FeedFallbackSource string `toml:"feed_fallback_source"`
}

// NaverConfig は NAVER 検索ニュースAPIの設定
//
// 認証情報はファイルに書かせない（環境変数または .env のみ）
type NaverConfig struct {
	Endpoint     string `toml:"endpoint" validate:"required,url"`
	Sort         string `toml:"sort" validate:"oneof=sim date"`
	ClientID     string `toml:"-"`
	ClientSecret string `toml:"-"`
}

// HasCredentials は両方の認証情報が揃っているかどうか
func (c NaverConfig) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// GoogleConfig は Google ニュース RSS 検索の設定
type GoogleConfig struct {
	Endpoint string `toml:"endpoint" validate:"required,url"`
	HL       string `toml:"hl"`
	GL       string `toml:"gl"`
	CEID     string `toml:"ceid"`
}

// LimitUpConfig は上限価銘柄抽出の設定
type LimitUpConfig struct {
	// PageURL は上限価一覧ページ（Path A）
	PageURL string `toml:"page_url" validate:"required,url"`

	// TableSelector は結果テーブルのCSSセレクタ
	TableSelector string `toml:"table_selector" validate:"required"`

	// HeaderLabel はテーブル見出し行の銘柄名ラベル（この行はスキップ）
	HeaderLabel string `toml:"header_label"`

	// MaxItems は最大銘柄数
	MaxItems int `toml:"max_items" validate:"gt=0"`

	// Keyword は上限価を表すキーワード
	Keyword string `toml:"keyword" validate:"required"`

	// HeuristicFallback が true の場合、Path A が空ならヘッドラインから推定する（Path B）
	HeuristicFallback bool `toml:"heuristic_fallback"`

	// Queries は Path B で使う検索クエリ
	Queries []string `toml:"queries"`

	// PerQuery はクエリあたりの取得件数
	PerQuery int `toml:"per_query" validate:"gt=0"`

	// FetchArticles が true の場合、タイトルから銘柄名が取れなければ本文を取得する
	FetchArticles bool `toml:"fetch_articles"`
}

// OutputConfig は出力に関する設定
type OutputConfig struct {
	// JSONPath は briefing.json の出力先
	JSONPath string `toml:"json_path" validate:"required"`

	// HTMLPath は静的HTMLの出力先（空の場合は出力しない）
	HTMLPath string `toml:"html_path"`

	// SectorsPath はセクター設定ファイル（.json / .yaml / .yml）
	SectorsPath string `toml:"sectors_path" validate:"required"`

	// StockSearchURL は銘柄名リンクのベースURL（query= の直前まで）
	StockSearchURL string `toml:"stock_search_url" validate:"required,url"`

	// StockSearchSuffix は検索語の末尾に付ける語（例: "주가"）
	StockSearchSuffix string `toml:"stock_search_suffix"`

	// WeekendNote は土日に出力する注記
	WeekendNote string `toml:"weekend_note"`
}

// LoggingConfig はログ出力の設定
type LoggingConfig struct {
	Level string `toml:"level" validate:"oneof=trace debug info warn error"`
}

// =============================================================================
// デフォルト値
// =============================================================================

// DefaultCategories は出力カテゴリの順序
var DefaultCategories = []string{
	"politics", "economy", "society", "culture",
	"world", "technology", "entertainment", "sports",
}

// DefaultFeeds は NAVER ニュース RSS（フィード戦略）
var DefaultFeeds = map[string]string{
	"politics":      "https://rss.naver.com/politics/politics_general.xml",
	"economy":       "https://rss.naver.com/economy/economy_general.xml",
	"society":       "https://rss.naver.com/society/society_general.xml",
	"culture":       "https://rss.naver.com/culture/culture_general.xml",
	"world":         "https://rss.naver.com/world/world_general.xml",
	"technology":    "https://rss.naver.com/it/it_general.xml",
	"entertainment": "https://rss.naver.com/entertainment/entertainment_general.xml",
	"sports":        "https://sports.news.naver.com/rss/index.nhn?category=all",
}

// DefaultQueries はカテゴリ別の検索クエリ（クエリ戦略）
var DefaultQueries = map[string]string{
	"politics":      "정치",
	"economy":       "경제",
	"society":       "사회",
	"culture":       "문화",
	"world":         "세계",
	"technology":    "기술 OR 과학 OR IT",
	"entertainment": "연예",
	"sports":        "스포츠",
}

// DefaultUserAgent はモバイルSafariを名乗る（モバイル版ページのほうが軽い）
const DefaultUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) " +
	"AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1"

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			UserAgent:      DefaultUserAgent,
			AcceptLanguage: "ko-KR,ko;q=0.9",
			Timeout:        "10s",
		},
		News: NewsConfig{
			Categories:         append([]string{}, DefaultCategories...),
			MaxPerCategory:     9,
			Delay:              "200ms",
			Strategies:         []string{"naver", "feed"},
			Feeds:              copyStringMap(DefaultFeeds),
			Queries:            copyStringMap(DefaultQueries),
			FeedFallbackSource: "네이버뉴스",
		},
		Naver: NaverConfig{
			Endpoint: "https://openapi.naver.com/v1/search/news.json",
			Sort:     "sim",
		},
		Google: GoogleConfig{
			Endpoint: "https://news.google.com/rss/search",
			HL:       "ko",
			GL:       "KR",
			CEID:     "KR:ko",
		},
		LimitUp: LimitUpConfig{
			PageURL:           "https://finance.naver.com/sise/sise_upper.naver",
			TableSelector:     "table.type_2",
			HeaderLabel:       "종목명",
			MaxItems:          10,
			Keyword:           "상한가",
			HeuristicFallback: true,
			Queries:           []string{"상한가", "상한가 종목", "특징주 상한가"},
			PerQuery:          20,
			FetchArticles:     true,
		},
		Output: OutputConfig{
			JSONPath:          "briefing.json",
			HTMLPath:          "briefing.html",
			SectorsPath:       "data/sectors.json",
			StockSearchURL:    "https://search.naver.com/search.naver",
			StockSearchSuffix: "주가",
			WeekendNote:       "금요일 장 기준 브리핑입니다.",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// 読み込み・検証
// =============================================================================

// LoadConfigFile は TOML ファイルを読み込み、デフォルト設定に上書きして返す
//
// path が空の場合はデフォルト設定をそのまま返す。
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config TOML: %w", err)
	}
	return cfg, nil
}

// ApplyEnv は環境変数から認証情報などを反映する
//
// getenv には通常 os.Getenv を渡す（テストでは差し替え可能）。
// NAVER_CLIENT_ID / NAVER_CLIENT_SECRET が無いことはエラーではない。
func (c *Config) ApplyEnv(getenv func(string) string) {
	c.Naver.ClientID = strings.TrimSpace(getenv("NAVER_CLIENT_ID"))
	c.Naver.ClientSecret = strings.TrimSpace(getenv("NAVER_CLIENT_SECRET"))
	if lvl := strings.TrimSpace(getenv("LOG_LEVEL")); lvl != "" {
		c.Logging.Level = strings.ToLower(lvl)
	}
}

// Validate は設定値を検証する
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: '%s' failed on '%s'", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	if _, err := c.HTTP.TimeoutDuration(); err != nil {
		return fmt.Errorf("config error: http.timeout: %w", err)
	}
	if _, err := c.News.DelayDuration(); err != nil {
		return fmt.Errorf("config error: news.delay: %w", err)
	}
	for _, cat := range c.News.Categories {
		if c.News.Feeds[cat] == "" && c.News.Queries[cat] == "" {
			return fmt.Errorf("config error: category %q has neither feed nor query", cat)
		}
	}
	return nil
}

// TimeoutDuration は Timeout を time.Duration に変換する
func (c HTTPConfig) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", c.Timeout)
	}
	return d, nil
}

// DelayDuration は Delay を time.Duration に変換する（0は待機なし）
func (c NewsConfig) DelayDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Delay)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative, got %s", c.Delay)
	}
	return d, nil
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
