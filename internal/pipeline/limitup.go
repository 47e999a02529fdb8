// =============================================================================
// limitup.go - ヘッドラインからの上限価銘柄推定（Path B）
// =============================================================================
//
// 上限価一覧ページ（Path A, sources_html.go）が使えないときに、
// 「상한가」を含むニュースタイトルから銘柄名と理由を推定する。
// 正解の保証は無いベストエフォートの抽出で、曖昧な結果は許容する。
//
// =============================================================================
// 【処理の流れ】
// =============================================================================
//
//   検索クエリ（상한가 / 상한가 종목 / 특징주 상한가）
//        │  タイトル完全一致で重複除去、キーワードを含むものだけ残す
//        v
//   CleanTitle         [특징주] や (종합) を除去、空白を正規化
//        │
//        v
//   ExtractNames       キーワード前の部分を ·/& 및 와 과 で分割 → 銘柄名らしいものを採用
//        │  0件なら
//        v
//   ExtractNameFromBody  記事本文から「銘柄名らしい文字列 + 상한가」を1件探す
//        │
//        v
//   ExtractReason      ":" "…" "—" などの後ろ、またはキーワードの後ろ（4〜60文字）
//        │
//        v
//   銘柄名で全体重複除去、maxItems 件で打ち切り
//
// 抽出関数はすべて文字列だけを受け取る純粋関数。本文取得は ArticleTextFunc で注入する。
//
// =============================================================================
package pipeline

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/ternarybob/arbor"
)

var reBracketTags = regexp.MustCompile(`\[[^\]]*\]|【[^】]*】`)
var reParenAsides = regexp.MustCompile(`\([^)]*\)|（[^）]*）`)

// 銘柄名らしい文字列: ハングル・英字・数字・ドット・ハイフン・アンパサンドの2〜20文字
var reNameShape = regexp.MustCompile(`^[가-힣A-Za-z0-9.&\-]{2,20}$`)
var reNameDisallowed = regexp.MustCompile(`[^가-힣A-Za-z0-9.&\-]`)

// 区切り: 中黒の各種・スラッシュ、前後に空白のある &、「및」、「와/과」+空白
var reNameDelimiters = regexp.MustCompile(`\s*[·ㆍ•・/]\s*|\s+&\s+|\s+및\s+|(?:와|과)\s+`)

// reasonSeparators は理由を切り出す区切り（優先順）
var reasonSeparators = []string{":", "…", "...", "—", "–", " - ", "|"}

// edgePunctuation は名前・理由の前後から落とす記号
const edgePunctuation = " \t\"'“”‘’「」『』<>《》〈〉,.:;!?~…·ㆍ•-—–|"

const (
	reasonMinLen = 4
	reasonMaxLen = 60
	nameMinLen   = 2
	nameMaxLen   = 20
)

// ArticleTextFunc は記事URLから本文テキストを返す。失敗時は空文字列。
type ArticleTextFunc func(articleURL string) string

// Extractor はキーワードに依存する正規表現を保持する
type Extractor struct {
	keyword    string
	reBodyName *regexp.Regexp
}

// NewExtractor はキーワード（例: "상한가"）用の抽出器を作る
func NewExtractor(keyword string) *Extractor {
	return &Extractor{
		keyword:    keyword,
		reBodyName: regexp.MustCompile(`([가-힣A-Za-z0-9.&\-]{2,20})\s*` + regexp.QuoteMeta(keyword)),
	}
}

// =============================================================================
// タイトル処理
// =============================================================================

// CleanTitle は [..] のタグと (..) の補足を除去し、空白を正規化する
//
//	CleanTitle("[특징주] 삼성전자(005930)  상한가")  // "삼성전자 상한가"
func CleanTitle(title string) string {
	t := reBracketTags.ReplaceAllString(title, " ")
	t = reParenAsides.ReplaceAllString(t, " ")
	return normalizeWhitespace(t)
}

// ExtractNames はタイトルから銘柄名候補を抽出する
//
// タイトルは先に CleanTitle を通す。キーワードを含まなければ空。キーワードより前の部分を区切りで分割し、
// 各片の前後の記号を落としてから判定する:
//   - 厳密判定: 2〜20文字の許可文字のみ
//   - 緩い判定: 許可外の文字を除いた残りが2〜20文字で、文字を1つ以上含む
//
// タイトル内の重複は最初の出現順で除去する。
func (e *Extractor) ExtractNames(title string) []string {
	title = CleanTitle(title)
	idx := strings.Index(title, e.keyword)
	if idx < 0 {
		return []string{}
	}
	head := title[:idx]

	var names []string
	for _, piece := range reNameDelimiters.Split(head, -1) {
		piece = strings.Trim(piece, edgePunctuation)
		if piece == "" {
			continue
		}
		if reNameShape.MatchString(piece) {
			names = append(names, piece)
			continue
		}
		loose := reNameDisallowed.ReplaceAllString(piece, "")
		if n := runeLen(loose); n >= nameMinLen && n <= nameMaxLen && hasLetter(loose) {
			names = append(names, loose)
		}
	}
	return uniqStrings(names)
}

// ExtractNameFromBody は本文から「銘柄名らしい文字列 + キーワード」の最初の1件を返す
func (e *Extractor) ExtractNameFromBody(body string) string {
	if body == "" {
		return ""
	}
	for _, m := range e.reBodyName.FindAllStringSubmatch(body, -1) {
		name := strings.Trim(m[1], edgePunctuation)
		if runeLen(name) >= nameMinLen && hasLetter(name) {
			return name
		}
	}
	return ""
}

// ExtractReason はタイトルから短い理由を取り出す（タイトルは先に CleanTitle を通す）
//
// 【優先順位】
//  1. 区切り（: … ... — – " - " |）の後ろ。4〜60文字なら採用
//  2. キーワードの後ろ（前後の記号を除去）。4〜60文字なら採用
//  3. タイトル先頭60文字
func (e *Extractor) ExtractReason(title string) string {
	title = CleanTitle(title)
	for _, sep := range reasonSeparators {
		idx := strings.Index(title, sep)
		if idx < 0 {
			continue
		}
		reason := strings.TrimSpace(title[idx+len(sep):])
		if n := runeLen(reason); n >= reasonMinLen && n <= reasonMaxLen {
			return reason
		}
	}

	if idx := strings.Index(title, e.keyword); idx >= 0 {
		reason := strings.Trim(title[idx+len(e.keyword):], edgePunctuation)
		if n := runeLen(reason); n >= reasonMinLen && n <= reasonMaxLen {
			return reason
		}
	}

	return truncateRunes(title, reasonMaxLen)
}

// =============================================================================
// 集約
// =============================================================================

// ExtractLimitUp は見出し群から (銘柄名, 理由) を集める
//
// 銘柄名で全体重複除去（最初の出現を採用）し、maxItems 件で打ち切る。
// articleText が nil の場合は本文フォールバックを行わない。
func (e *Extractor) ExtractLimitUp(headlines []Headline, articleText ArticleTextFunc, maxItems int) []LimitUpEntry {
	out := []LimitUpEntry{}
	if maxItems <= 0 {
		return out
	}
	seen := map[string]bool{}

	for _, h := range headlines {
		if !strings.Contains(h.Title, e.keyword) {
			continue
		}
		cleaned := CleanTitle(h.Title)
		names := e.ExtractNames(cleaned)
		if len(names) == 0 && articleText != nil && h.URL != "" {
			if name := e.ExtractNameFromBody(articleText(h.URL)); name != "" {
				names = []string{name}
			}
		}
		if len(names) == 0 {
			continue
		}

		reason := e.ExtractReason(cleaned)
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, LimitUpEntry{Name: name, Reason: reason})
			if len(out) >= maxItems {
				return out
			}
		}
	}
	return out
}

// CollectLimitUpHeadlines は検索クエリごとに見出しを集める
//
// タイトル完全一致で重複除去し、キーワードを含むものだけを返す。
// クエリ単位の失敗は FetchOutcome に記録して次のクエリへ進む。
func (e *Extractor) CollectLimitUpHeadlines(ctx context.Context, search SearchSource, queries []string, perQuery int, throttle *Throttle, logger arbor.ILogger) ([]Headline, []FetchOutcome) {
	var out []Headline
	var outcomes []FetchOutcome
	seen := map[string]bool{}

	for _, q := range queries {
		if err := throttle.Wait(ctx); err != nil {
			o := newOutcome(search.Name(), q, 0, err)
			outcomes = append(outcomes, o)
			logOutcome(logger, o)
			continue
		}
		hs, err := search.Search(ctx, q, perQuery)
		o := newOutcome(search.Name(), q, len(hs), err)
		outcomes = append(outcomes, o)
		logOutcome(logger, o)
		if err != nil {
			continue
		}
		for _, h := range hs {
			if seen[h.Title] {
				continue
			}
			seen[h.Title] = true
			if strings.Contains(h.Title, e.keyword) {
				out = append(out, h)
			}
		}
	}
	return out, outcomes
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
