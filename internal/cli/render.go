package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// 出力形式
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// render はvをformatの形式でwに書き出す。
func render(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("JSONの出力に失敗: %w", err)
		}
		return nil
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("YAMLの出力に失敗: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("未対応の出力形式: %s", format)
	}
}

// renderRaw はJSONのままのデータをformatの形式で書き出す。
func renderRaw(w io.Writer, format string, raw json.RawMessage) error {
	var v any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("レスポンスのデコードに失敗: %w", err)
		}
	}
	return render(w, format, v)
}
