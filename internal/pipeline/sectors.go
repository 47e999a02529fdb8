// =============================================================================
// sectors.go - セクター設定の読み込み
// =============================================================================
//
// セクター → 銘柄リストの対応を設定ファイルから読む。取得は行わず、中身の検証もしない。
// ファイルに書かれた順序がそのまま sector_order になるため、map に直接デコードせず
// トークン単位（JSON）/ ノード単位（YAML）で読んで順序を保持する。
//
// 【対応形式】
//   - .json        {"반도체": ["삼성전자", "SK하이닉스"], ...}
//   - .yaml / .yml 반도체: [삼성전자, SK하이닉스]
//
// =============================================================================
package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadSectors はセクター設定ファイルを読み込む
//
// 読み込み・パースに失敗した場合は空の SectorMap とエラーを返す
// （呼び出し元は空マップのまま続行できる）。
func LoadSectors(path string) (*SectorMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewSectorMap(), fmt.Errorf("read sectors %s: %w", path, err)
	}

	var sm *SectorMap
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		sm, err = parseSectorsYAML(data)
	default:
		sm, err = parseSectorsJSON(data)
	}
	if err != nil {
		return NewSectorMap(), fmt.Errorf("parse sectors %s: %w", path, err)
	}
	return sm, nil
}

// parseSectorsJSON はトップレベルのJSONオブジェクトをキー順に読む
func parseSectorsJSON(data []byte) (*SectorMap, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	sm := NewSectorMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}
		var stocks []string
		if err := dec.Decode(&stocks); err != nil {
			return nil, fmt.Errorf("sector %q: %w", key, err)
		}
		sm.Add(key, stocks)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after the top-level object")
	}
	return sm, nil
}

// parseSectorsYAML はトップレベルのマッピングをノード順に読む
func parseSectorsYAML(data []byte) (*SectorMap, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	sm := NewSectorMap()
	if len(doc.Content) == 0 {
		return sm, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping at line %d", root.Line)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		var stocks []string
		if err := valNode.Decode(&stocks); err != nil {
			return nil, fmt.Errorf("sector %q: %w", keyNode.Value, err)
		}
		sm.Add(keyNode.Value, stocks)
	}
	return sm, nil
}
