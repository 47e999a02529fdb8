// =============================================================================
// render_html.go - 静的HTMLの生成
// =============================================================================
//
// briefing.json と同じ内容を1枚の静的HTMLにする。テンプレートエンジンは使わず、
// strings.Builder で組み立て、外部由来の文字列は全て html.EscapeString を通す。
//
// 【ページ構成】
//   nav                    カテゴリ・上限価・セクターへのアンカーリンク
//   section#<category>     カテゴリごとの見出し（元記事へのリンク）
//   section#limit-up       上限価銘柄（銘柄検索へのリンク + 理由）
//   section#sectors        セクター → 銘柄（銘柄検索へのリンク）
//
// =============================================================================
package pipeline

import (
	"fmt"
	"html"
	"net/url"
	"strings"
)

// categoryLabels はカテゴリの表示名
var categoryLabels = map[string]string{
	"politics":      "정치",
	"economy":       "경제",
	"society":       "사회",
	"culture":       "문화",
	"world":         "세계",
	"technology":    "IT/과학",
	"entertainment": "연예",
	"sports":        "스포츠",
}

// CategoryLabel はカテゴリの表示名を返す（未登録ならキーそのもの）
func CategoryLabel(category string) string {
	if l, ok := categoryLabels[category]; ok {
		return l
	}
	return category
}

// StockSearchLink は銘柄名の検索URL（例: ...search.naver?query=삼성전자+주가）
func StockSearchLink(name string, oc OutputConfig) string {
	q := name
	if oc.StockSearchSuffix != "" {
		q += " " + oc.StockSearchSuffix
	}
	return oc.StockSearchURL + "?query=" + url.QueryEscape(q)
}

// isWebURL は http / https の絶対URLだけを true にする
func isWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

const pageStyle = `body{font-family:-apple-system,"Apple SD Gothic Neo",sans-serif;margin:0 auto;max-width:720px;padding:12px;line-height:1.5}
nav a{margin-right:8px;white-space:nowrap}
section{margin-top:20px}
li{margin:4px 0}
.src,.reason,.note{color:#666;font-size:0.9em}`

// RenderHTML はブリーフィングを静的HTMLに変換する
func RenderHTML(rec *BriefingRecord, oc OutputConfig) string {
	var b strings.Builder
	esc := html.EscapeString

	b.WriteString("<!DOCTYPE html>\n<html lang=\"ko\">\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(&b, "<title>모닝 브리핑 %s</title>\n", esc(rec.Date))
	fmt.Fprintf(&b, "<style>\n%s\n</style>\n</head>\n<body>\n", pageStyle)

	fmt.Fprintf(&b, "<h1>모닝 브리핑 %s</h1>\n", esc(rec.Date))
	fmt.Fprintf(&b, "<p class=\"note\">생성: %s · 기준 거래일: %s</p>\n", esc(rec.GeneratedAt), esc(rec.LastTradingDay))
	if rec.WeekendNote != "" {
		fmt.Fprintf(&b, "<p class=\"note\">%s</p>\n", esc(rec.WeekendNote))
	}

	var categories []string
	if rec.News != nil {
		categories = rec.News.Categories
	}

	// ナビゲーション
	b.WriteString("<nav>\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "<a href=\"#%s\">%s</a>\n", esc(c), esc(CategoryLabel(c)))
	}
	b.WriteString("<a href=\"#limit-up\">상한가</a>\n<a href=\"#sectors\">섹터</a>\n</nav>\n")

	// ニュース
	for _, c := range categories {
		fmt.Fprintf(&b, "<section id=\"%s\">\n<h2>%s</h2>\n", esc(c), esc(CategoryLabel(c)))
		hs := rec.News.Get(c)
		if len(hs) == 0 {
			b.WriteString("<p class=\"note\">뉴스를 가져오지 못했습니다.</p>\n")
		} else {
			b.WriteString("<ol>\n")
			for _, h := range hs {
				if isWebURL(h.URL) {
					fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a>", esc(h.URL), esc(h.Title))
				} else {
					fmt.Fprintf(&b, "<li>%s", esc(h.Title))
				}
				fmt.Fprintf(&b, " <span class=\"src\">%s</span></li>\n", esc(h.Source))
			}
			b.WriteString("</ol>\n")
		}
		b.WriteString("</section>\n")
	}

	// 上限価
	b.WriteString("<section id=\"limit-up\">\n<h2>상한가</h2>\n")
	if len(rec.LimitUp) == 0 {
		b.WriteString("<p class=\"note\">상한가 종목이 없습니다.</p>\n")
	} else {
		b.WriteString("<ul>\n")
		for _, e := range rec.LimitUp {
			fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a>", esc(StockSearchLink(e.Name, oc)), esc(e.Name))
			if e.Reason != "" {
				fmt.Fprintf(&b, " <span class=\"reason\">%s</span>", esc(e.Reason))
			}
			b.WriteString("</li>\n")
		}
		b.WriteString("</ul>\n")
	}
	b.WriteString("</section>\n")

	// セクター
	b.WriteString("<section id=\"sectors\">\n<h2>섹터</h2>\n")
	if rec.Sectors != nil {
		for _, s := range rec.SectorOrder {
			fmt.Fprintf(&b, "<h3>%s</h3>\n<ul>\n", esc(s))
			for _, name := range rec.Sectors.Stocks[s] {
				fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n", esc(StockSearchLink(name, oc)), esc(name))
			}
			b.WriteString("</ul>\n")
		}
	}
	b.WriteString("</section>\n</body>\n</html>\n")

	return b.String()
}
