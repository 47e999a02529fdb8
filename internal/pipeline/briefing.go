// =============================================================================
// briefing.go - ブリーフィングの組み立てと出力
// =============================================================================
//
// 【処理の流れ】
//
//   Generator.Generate
//     1. 時刻      Now / LastTradingDay / IsWeekend
//     2. ニュース   CollectNews（戦略を優先順に、空カテゴリだけを補完）
//     3. 上限価     Path A（一覧ページ）→ 空なら Path B（ヘッドライン推定）
//     4. セクター   LoadSectors
//     5. BriefingRecord + RunReport を返す
//
//   WriteOutputs
//     - briefing.json（常に）
//     - briefing.html（HTMLPath が空でなければ）
//
// 各ステップの失敗は空のコレクションに縮退し、RunReport に記録される。
// 全体が止まるのは出力の書き込みに失敗したときだけ。
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
)

// GeneratedAtLayout は generated_at の書式（ゾーン名は "UTC+09:00"）
const GeneratedAtLayout = "2006-01-02 15:04:05 MST"

// DateLayout は date / last_trading_day の書式
const DateLayout = "2006-01-02"

// Generator は1回分のブリーフィングを組み立てる
type Generator struct {
	cfg    *Config
	hcfg   HeadlineSourceConfig
	logger arbor.ILogger
	clock  Clock
}

// NewGenerator は Generator を作る
//
// 【引数】
//   - cfg:    検証済みの設定
//   - client: 共有HTTPクライアント（nil なら設定のタイムアウトで作る）
//   - logger: arbor ロガー（nil ならログを出さない）
//   - clock:  現在時刻（nil なら Now）
func NewGenerator(cfg *Config, client *http.Client, logger arbor.ILogger, clock Clock) (*Generator, error) {
	hcfg, err := NewHeadlineConfig(cfg, client)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = Now
	}
	return &Generator{cfg: cfg, hcfg: hcfg, logger: logger, clock: clock}, nil
}

// Generate はニュース・上限価・セクターを集めて BriefingRecord を作る
//
// 個別の取得失敗はエラーにならない（RunReport を参照）。
func (g *Generator) Generate(ctx context.Context) (*BriefingRecord, *RunReport) {
	now := g.clock().In(KST)
	report := &RunReport{}

	delay, err := g.cfg.News.DelayDuration()
	if err != nil {
		delay = 0
	}
	throttle := NewThrottle(delay)

	// ニュース
	sources, skipped := g.newsSources()
	report.News = append(report.News, skipped...)
	news, outcomes := CollectNews(ctx, sources, g.cfg.News.Categories, g.cfg.News.MaxPerCategory, throttle, g.logger)
	report.News = append(report.News, outcomes...)

	// 上限価
	limitUp, luOutcomes := g.collectLimitUp(ctx, throttle)
	report.LimitUp = luOutcomes

	// セクター
	sectors, err := LoadSectors(g.cfg.Output.SectorsPath)
	report.Sectors = newOutcome("sectors", g.cfg.Output.SectorsPath, sectors.Len(), err)
	logOutcome(g.logger, report.Sectors)

	rec := &BriefingRecord{
		GeneratedAt:    now.Format(GeneratedAtLayout),
		Date:           now.Format(DateLayout),
		LastTradingDay: LastTradingDay(now).Format(DateLayout),
		WeekendNote:    "",
		News:           news,
		LimitUp:        limitUp,
		Sectors:        sectors,
		SectorOrder:    append([]string{}, sectors.Order...),
	}
	if IsWeekend(now) {
		rec.WeekendNote = g.cfg.Output.WeekendNote
	}

	g.logSummary(rec, report)
	return rec, report
}

// newsSources は設定の戦略順から NewsSource を組み立てる
//
// naver は認証情報が無ければ使わず、skipped として記録する。
func (g *Generator) newsSources() ([]NewsSource, []FetchOutcome) {
	var sources []NewsSource
	var skipped []FetchOutcome

	for _, name := range g.cfg.News.Strategies {
		switch name {
		case "naver":
			ns := NewNaverSearchSource(g.cfg.Naver, g.hcfg)
			if ns == nil {
				o := FetchOutcome{Source: "naver", Status: FetchSkipped}
				skipped = append(skipped, o)
				logOutcome(g.logger, o)
				continue
			}
			sources = append(sources, NewQuerySource(ns, g.cfg.News.Queries))
		case "google":
			sources = append(sources, NewQuerySource(NewRSSSearchSource(g.cfg.Google, g.hcfg), g.cfg.News.Queries))
		case "feed":
			sources = append(sources, NewFeedSource(g.cfg.News.Feeds, g.cfg.News.FeedFallbackSource, g.hcfg))
		}
	}
	return sources, skipped
}

// limitUpSearch は Path B の検索元（認証情報があれば NAVER、無ければ Google RSS）
func (g *Generator) limitUpSearch() SearchSource {
	if ns := NewNaverSearchSource(g.cfg.Naver, g.hcfg); ns != nil {
		return ns
	}
	return NewRSSSearchSource(g.cfg.Google, g.hcfg)
}

// collectLimitUp は Path A を試し、空または失敗なら Path B で推定する
func (g *Generator) collectLimitUp(ctx context.Context, throttle *Throttle) ([]LimitUpEntry, []FetchOutcome) {
	lc := g.cfg.LimitUp
	var outcomes []FetchOutcome

	if err := throttle.Wait(ctx); err != nil {
		return []LimitUpEntry{}, []FetchOutcome{newOutcome("limit-up-page", "", 0, err)}
	}
	entries, err := ScrapeLimitUp(ctx, lc, g.hcfg)
	o := newOutcome("limit-up-page", "", len(entries), err)
	outcomes = append(outcomes, o)
	logOutcome(g.logger, o)
	if len(entries) > 0 || !lc.HeuristicFallback {
		return entries, outcomes
	}

	ex := NewExtractor(lc.Keyword)
	headlines, qOutcomes := ex.CollectLimitUpHeadlines(ctx, g.limitUpSearch(), lc.Queries, lc.PerQuery, throttle, g.logger)
	outcomes = append(outcomes, qOutcomes...)

	var articleText ArticleTextFunc
	if lc.FetchArticles {
		articleText = g.articleTextFunc(ctx, throttle)
	}
	entries = ex.ExtractLimitUp(headlines, articleText, lc.MaxItems)

	o = newOutcome("limit-up-headlines", lc.Keyword, len(entries), nil)
	outcomes = append(outcomes, o)
	logOutcome(g.logger, o)
	return entries, outcomes
}

// articleTextFunc は本文取得の失敗を空文字列に変換する ArticleTextFunc を返す
func (g *Generator) articleTextFunc(ctx context.Context, throttle *Throttle) ArticleTextFunc {
	return func(articleURL string) string {
		if err := throttle.Wait(ctx); err != nil {
			return ""
		}
		text, err := FetchArticleText(ctx, articleURL, g.hcfg)
		if err != nil {
			if g.logger != nil {
				g.logger.Debug().Err(err).Str("url", articleURL).Msg("article body unavailable")
			}
			return ""
		}
		return text
	}
}

func (g *Generator) logSummary(rec *BriefingRecord, report *RunReport) {
	if g.logger == nil {
		return
	}
	g.logger.Info().
		Str("date", rec.Date).
		Str("last_trading_day", rec.LastTradingDay).
		Int("headlines", rec.News.Total()).
		Int("limit_up", len(rec.LimitUp)).
		Int("sectors", rec.Sectors.Len()).
		Int("failed", len(report.Failed())).
		Msg("briefing generated")
}

// =============================================================================
// 出力
// =============================================================================

// WriteJSON はブリーフィングを2スペースインデントのJSONで書き出す
func WriteJSON(path string, rec *BriefingRecord) error {
	return writeJSONFile(path, rec)
}

// WriteOutputs は JSON と（設定されていれば）HTML を書き出し、書いたパスを返す
func WriteOutputs(rec *BriefingRecord, oc OutputConfig) ([]string, error) {
	var written []string

	if err := WriteJSON(oc.JSONPath, rec); err != nil {
		return written, fmt.Errorf("write briefing json: %w", err)
	}
	written = append(written, oc.JSONPath)

	if oc.HTMLPath != "" {
		if err := writeFile(oc.HTMLPath, []byte(RenderHTML(rec, oc))); err != nil {
			return written, fmt.Errorf("write briefing html: %w", err)
		}
		written = append(written, oc.HTMLPath)
	}
	return written, nil
}
