// =============================================================================
// utils.go - ユーティリティ関数
// =============================================================================
//
// 【このファイルで提供する機能】
//   - 文字列操作: 空白正規化、重複削除、rune 単位の切り詰め
//   - ファイル出力: JSON / テキストの書き出し（親ディレクトリも作成）
//
// =============================================================================
package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// -----------------------------------------------------------------------------
// 文字列操作関数
// -----------------------------------------------------------------------------

// normalizeWhitespace は連続する空白を単一スペースに正規化する
//
//	normalizeWhitespace("  삼성전자   상한가  ")  // "삼성전자 상한가"
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// uniqStrings は重複と空文字列を除去する（最初の出現順を保持）
func uniqStrings(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// runeLen はマルチバイト文字を1文字として数えた長さ
func runeLen(s string) int {
	return len([]rune(s))
}

// truncateRunes は先頭 maxLen 文字（rune）を返す。省略記号は付けない。
func truncateRunes(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

// -----------------------------------------------------------------------------
// ファイル出力
// -----------------------------------------------------------------------------

// MarshalBriefing は2スペースインデントのJSONを返す
//
// ハングルはエスケープせずそのまま出力する（\uXXXX にしない）。
func MarshalBriefing(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeJSONFile は任意のデータをJSONでファイルに保存する
//
// 【ファイル権限】0o644 = 所有者は読み書き可、他は読み取りのみ
func writeJSONFile(path string, v any) error {
	b, err := MarshalBriefing(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return writeFile(path, b)
}

// writeFile は親ディレクトリを作成してからファイルを上書きする
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
