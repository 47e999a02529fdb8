// =============================================================================
// sources_html.go - HTMLスクレイピング
// =============================================================================
//
// 【含まれる処理】
//   1. ScrapeLimitUp     - NAVER 金融の上限価一覧ページ（Path A、構造化スクレイプ）
//   2. FetchArticleText  - 記事本文の取得（Path B の本文フォールバック用）
//
// 上限価ページは EUC-KR で配信されるため、golang.org/x/text で UTF-8 に変換してから
// goquery に渡す。記事ページは Content-Type / <meta charset> から文字コードを判定する。
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// =============================================================================
// Path A: 上限価一覧ページ
// =============================================================================

// ScrapeLimitUp は上限価一覧ページから銘柄名を最大 maxItems 件取得する
//
// 手法: HTMLスクレイピング (goquery) + EUC-KR デコード
// URL:  https://finance.naver.com/sise/sise_upper.naver
//
// 【抽出ルール】
//   - 最初にマッチした結果テーブル（table.type_2）の各行を見る
//   - td が2つ未満の行（見出し・区切り行）は飛ばす
//   - 2番目のセルを銘柄名とする。空、または見出しラベル（종목명）なら飛ばす
//   - maxItems 件集まったら終了
//
// 理由テキストはページに無いため Reason は常に空文字列。
// エラー時は空スライスとエラーを返す（呼び出し元で空リストに縮退させる）。
func ScrapeLimitUp(ctx context.Context, lc LimitUpConfig, cfg HeadlineSourceConfig) ([]LimitUpEntry, error) {
	req, err := newRequest(ctx, lc.PageURL, cfg)
	if err != nil {
		return []LimitUpEntry{}, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := doGet(req, cfg)
	if err != nil {
		return []LimitUpEntry{}, fmt.Errorf("limit-up page: %w", err)
	}
	defer resp.Body.Close()

	body := transform.NewReader(resp.Body, korean.EUCKR.NewDecoder())
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return []LimitUpEntry{}, fmt.Errorf("limit-up page: parse: %w", err)
	}

	return parseLimitUpTable(doc, lc.TableSelector, lc.HeaderLabel, lc.MaxItems), nil
}

// parseLimitUpTable はテーブルから銘柄名を抽出する
func parseLimitUpTable(doc *goquery.Document, selector, headerLabel string, maxItems int) []LimitUpEntry {
	items := []LimitUpEntry{}
	table := doc.Find(selector).First()
	if table.Length() == 0 || maxItems <= 0 {
		return items
	}

	table.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		tds := tr.Find("td")
		if tds.Length() < 2 {
			return true
		}
		name := strings.TrimSpace(tds.Eq(1).Text())
		if name == "" || name == headerLabel {
			return true
		}
		items = append(items, LimitUpEntry{Name: name, Reason: ""})
		return len(items) < maxItems
	})
	return items
}

// =============================================================================
// 記事本文
// =============================================================================

// FetchArticleText は記事ページの本文テキストを返す
//
// 【優先順位】
//  1. <meta name="description"> / <meta property="og:description">
//  2. 全ての <p> のテキストを連結（空白は1つに正規化）
//
// 取得・パースに失敗した場合は空文字列とエラーを返す。
func FetchArticleText(ctx context.Context, articleURL string, cfg HeadlineSourceConfig) (string, error) {
	req, err := newRequest(ctx, articleURL, cfg)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := doGet(req, cfg)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// 韓国の報道サイトには EUC-KR のページがまだ残っている
	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("article charset: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("article parse: %w", err)
	}
	return extractArticleText(doc), nil
}

// extractArticleText は goquery ドキュメントから本文テキストを抜き出す
func extractArticleText(doc *goquery.Document) string {
	for _, sel := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if text := normalizeWhitespace(content); text != "" {
				return text
			}
		}
	}

	var parts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := normalizeWhitespace(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}
