// =============================================================================
// types.go - データ構造定義
// =============================================================================
//
// このファイルはモーニングブリーフィング全体で使用するデータ構造（型）を定義します。
//
// 【このファイルで定義している型】
//   - Headline:       ニュース見出し（タイトル・URL・ソース名）
//   - NewsSection:    カテゴリ順を保持した見出しマップ
//   - LimitUpEntry:   上限価（상한가）銘柄
//   - SectorMap:      セクター → 銘柄リスト（ファイル順を保持）
//   - BriefingRecord: 出力JSONのルート
//   - FetchOutcome:   取得結果（成功/空/失敗/スキップ）
//
// 【JSONキーについて】
//   出力JSONはショートカットアプリ側でそのまま描画されるため、
//   キー名（src, limit_up, sector_order など）は変更しないこと。
//
// =============================================================================
package pipeline

import (
	"bytes"
	"encoding/json"
)

// -----------------------------------------------------------------------------
// Headline - ニュース見出し
// -----------------------------------------------------------------------------
//
// RSSフィードまたは検索APIから取得した1件の記事を表します。
// どのカテゴリに属するかは NewsSection 側のキーで決まります。
type Headline struct {
	Title  string `json:"title"` // 記事タイトル（HTMLタグ・エンティティ除去済み）
	URL    string `json:"url"`   // 記事URL
	Source string `json:"src"`   // ソース名（URLのホスト名、取得できなければ固定ラベル）
}

// -----------------------------------------------------------------------------
// NewsSection - カテゴリ別見出し
// -----------------------------------------------------------------------------
//
// Go の map は順序を持たないため、カテゴリ順を別途保持する。
// JSON化の際は Categories の順にキーを出力し、空カテゴリも [] として必ず出力する。
type NewsSection struct {
	Categories []string
	Items      map[string][]Headline
}

// NewNewsSection は全カテゴリを空リストで初期化した NewsSection を返す
func NewNewsSection(categories []string) *NewsSection {
	ns := &NewsSection{
		Categories: append([]string{}, categories...),
		Items:      make(map[string][]Headline, len(categories)),
	}
	for _, c := range categories {
		ns.Items[c] = []Headline{}
	}
	return ns
}

// Get はカテゴリの見出しを返す（未登録なら空スライス）
func (ns *NewsSection) Get(category string) []Headline {
	if hs, ok := ns.Items[category]; ok {
		return hs
	}
	return []Headline{}
}

// Set はカテゴリの見出しを設定する。nil は空スライスに正規化する。
func (ns *NewsSection) Set(category string, hs []Headline) {
	if hs == nil {
		hs = []Headline{}
	}
	if _, ok := ns.Items[category]; !ok {
		ns.Categories = append(ns.Categories, category)
	}
	ns.Items[category] = hs
}

// EmptyCategories は見出しが0件のカテゴリを順序どおりに返す
func (ns *NewsSection) EmptyCategories() []string {
	var out []string
	for _, c := range ns.Categories {
		if len(ns.Items[c]) == 0 {
			out = append(out, c)
		}
	}
	return out
}

// Total は全カテゴリの見出し数の合計
func (ns *NewsSection) Total() int {
	n := 0
	for _, c := range ns.Categories {
		n += len(ns.Items[c])
	}
	return n
}

// MarshalJSON はカテゴリ順を保ったJSONオブジェクトを出力する
func (ns *NewsSection) MarshalJSON() ([]byte, error) {
	if ns == nil {
		return []byte("{}"), nil
	}
	entries := make([]orderedEntry, 0, len(ns.Categories))
	for _, c := range ns.Categories {
		entries = append(entries, orderedEntry{Key: c, Value: ns.Get(c)})
	}
	return marshalOrdered(entries)
}

// -----------------------------------------------------------------------------
// LimitUpEntry - 上限価銘柄
// -----------------------------------------------------------------------------
//
// 構造化スクレイプ（Path A）では Reason は常に空文字列。
// ヘッドラインからの推定（Path B）ではタイトルから抜き出した短い理由が入る。
type LimitUpEntry struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// -----------------------------------------------------------------------------
// SectorMap - セクター → 銘柄リスト
// -----------------------------------------------------------------------------
//
// 設定ファイルの記載順をそのまま保持する（sector_order にも使用）。
// 内容の検証は行わない。
type SectorMap struct {
	Order  []string
	Stocks map[string][]string
}

// NewSectorMap は空の SectorMap を返す
func NewSectorMap() *SectorMap {
	return &SectorMap{Order: []string{}, Stocks: map[string][]string{}}
}

// Add はセクターを末尾に追加する。既存キーは値のみ上書き（位置は最初の出現）。
func (sm *SectorMap) Add(sector string, stocks []string) {
	if stocks == nil {
		stocks = []string{}
	}
	if _, ok := sm.Stocks[sector]; !ok {
		sm.Order = append(sm.Order, sector)
	}
	sm.Stocks[sector] = stocks
}

// Len はセクター数
func (sm *SectorMap) Len() int {
	if sm == nil {
		return 0
	}
	return len(sm.Order)
}

// MarshalJSON はファイル順を保ったJSONオブジェクトを出力する
func (sm *SectorMap) MarshalJSON() ([]byte, error) {
	if sm == nil {
		return []byte("{}"), nil
	}
	entries := make([]orderedEntry, 0, len(sm.Order))
	for _, s := range sm.Order {
		entries = append(entries, orderedEntry{Key: s, Value: sm.Stocks[s]})
	}
	return marshalOrdered(entries)
}

// -----------------------------------------------------------------------------
// BriefingRecord - 出力JSONのルート
// -----------------------------------------------------------------------------
//
// 1回の実行で1つだけ生成され、シリアライズ後は破棄される。
// 取得に全て失敗しても全キーが出力される（空コレクションに縮退）。
type BriefingRecord struct {
	GeneratedAt    string         `json:"generated_at"`     // 生成日時（UTC+9）
	Date           string         `json:"date"`             // 生成日（YYYY-MM-DD）
	LastTradingDay string         `json:"last_trading_day"` // 直近の取引日（YYYY-MM-DD）
	WeekendNote    string         `json:"weekend_note"`     // 週末のみ注記
	News           *NewsSection   `json:"news"`
	LimitUp        []LimitUpEntry `json:"limit_up"`
	Sectors        *SectorMap     `json:"sectors"`
	SectorOrder    []string       `json:"sector_order"`
}

// -----------------------------------------------------------------------------
// FetchOutcome - 取得結果
// -----------------------------------------------------------------------------
//
// 失敗は実行を止めずに空の結果へ縮退するが、「データが無い」と「取得に失敗した」を
// 区別できるように結果を明示的に記録する。
type FetchStatus string

const (
	FetchOK      FetchStatus = "ok"      // 1件以上取得
	FetchEmpty   FetchStatus = "empty"   // 正常応答だが0件
	FetchFailed  FetchStatus = "failed"  // ネットワーク・パースエラー
	FetchSkipped FetchStatus = "skipped" // 認証情報なし・カテゴリ非対応など
)

// FetchOutcome は1回の取得（カテゴリ単位・ソース単位）の結果
type FetchOutcome struct {
	Source   string
	Category string
	Status   FetchStatus
	Count    int
	Err      error
}

// newOutcome は件数とエラーからステータスを決めて FetchOutcome を作る
func newOutcome(source, category string, count int, err error) FetchOutcome {
	status := FetchOK
	switch {
	case err != nil:
		status = FetchFailed
	case count == 0:
		status = FetchEmpty
	}
	return FetchOutcome{Source: source, Category: category, Status: status, Count: count, Err: err}
}

// RunReport は1回の生成で発生した全取得結果
type RunReport struct {
	News    []FetchOutcome
	LimitUp []FetchOutcome
	Sectors FetchOutcome
}

// Failed は失敗した取得結果だけを返す
func (r *RunReport) Failed() []FetchOutcome {
	var out []FetchOutcome
	for _, o := range r.News {
		if o.Status == FetchFailed {
			out = append(out, o)
		}
	}
	for _, o := range r.LimitUp {
		if o.Status == FetchFailed {
			out = append(out, o)
		}
	}
	if r.Sectors.Status == FetchFailed {
		out = append(out, r.Sectors)
	}
	return out
}

// -----------------------------------------------------------------------------
// 順序付きJSONオブジェクト
// -----------------------------------------------------------------------------

type orderedEntry struct {
	Key   string
	Value any
}

// marshalOrdered はエントリ順にJSONオブジェクトを組み立てる
//
// 非ASCII文字（ハングル）をエスケープせず、HTMLエスケープも行わない。
func marshalOrdered(entries []orderedEntry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := encodeJSON(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := encodeJSON(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeJSON は SetEscapeHTML(false) で1値をエンコードし、末尾の改行を落とす
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
