package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Convention はエンドポイントが使うエンベロープの成功判定方式。
type Convention int

const (
	// ConventionDefault はゲートウェイに設定された既定の方式を使う。
	ConventionDefault Convention = iota
	// ConventionCode200 は code == 200 を成功とみなす。
	ConventionCode200
	// ConventionCode0 は code == 0 を成功とみなす（游记APIなど一部のエンドポイント）。
	ConventionCode0
	// ConventionRaw はエンベロープを解釈せず、ボディ全体をデータとして扱う。
	ConventionRaw
)

// String は設定値として使う文字列表現を返す。
func (c Convention) String() string {
	switch c {
	case ConventionCode200:
		return "200"
	case ConventionCode0:
		return "0"
	case ConventionRaw:
		return "none"
	default:
		return "default"
	}
}

// ParseConvention は "200" / "0" / "none" を Convention に変換する。
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "200", "code200":
		return ConventionCode200, nil
	case "0", "code0":
		return ConventionCode0, nil
	case "none", "raw":
		return ConventionRaw, nil
	case "", "default":
		return ConventionDefault, nil
	}
	return ConventionDefault, fmt.Errorf("不明なエンベロープ方式: %q", s)
}

// successCode は方式ごとの成功を表すcode。
func (c Convention) successCode() int {
	if c == ConventionCode0 {
		return 0
	}
	return 200
}

const (
	// messageFallback はエンベロープにメッセージが無い場合の文言。
	messageFallback = "Error"
	// messageMalformed は解釈できないレスポンスを受け取った場合の文言。
	messageMalformed = "malformed response"
	// messageRequestFailed はトランスポートが失敗した場合の文言。
	messageRequestFailed = "request failed"
	// messageSessionExpired は401でメッセージが無い場合の文言。
	messageSessionExpired = "session expired, please log in again"
)

// nullJSON はデータが無い成功結果の値。
var nullJSON = json.RawMessage("null")

// envelope はバックエンドの応答ラッパーから読み取った状態。
type envelope struct {
	hasCode    bool
	code       int
	hasSuccess bool
	success    bool
	message    string
	data       json.RawMessage
}

// decodeEnvelope はボディをエンベロープとして読み取る。
// オブジェクトでない、または code も success も持たない場合は nil を返し、
// JSONとして不正な場合や状態フィールドの型が合わない場合はエラーを返す。
func decodeEnvelope(body []byte) (*envelope, error) {
	if !json.Valid(body) {
		return nil, fmt.Errorf("JSONとして解釈できません")
	}
	if body[0] != '{' {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}

	env := &envelope{data: fields["data"]}
	if raw, ok := fields["code"]; ok && !isNull(raw) {
		code, err := decodeCode(raw)
		if err != nil {
			return nil, err
		}
		env.code = code
		env.hasCode = true
	}
	if raw, ok := fields["success"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &env.success); err != nil {
			return nil, fmt.Errorf("successが真偽値ではありません: %w", err)
		}
		env.hasSuccess = true
	}
	if !env.hasCode && !env.hasSuccess {
		return nil, nil
	}

	env.message = textField(fields["message"])
	if env.message == "" {
		env.message = textField(fields["msg"])
	}
	return env, nil
}

// decodeCode はcodeを整数として読み取る。200.0 のような整数値の小数表記も受け付ける。
func decodeCode(raw json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("codeが数値ではありません: %w", err)
	}
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("codeが整数ではありません: %v", f)
	}
	return int(f), nil
}

// normalize は2xxレスポンスのボディを方式に従って正規化する。
func normalize(body []byte, conv Convention) (json.RawMessage, *ErrorInfo) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nullJSON, nil
	}
	if conv == ConventionRaw {
		if !json.Valid(body) {
			return nil, &ErrorInfo{Code: 500, Message: messageMalformed}
		}
		return json.RawMessage(body), nil
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, &ErrorInfo{Code: 500, Message: messageMalformed}
	}
	if env == nil {
		return json.RawMessage(body), nil
	}

	ok := env.success
	if env.hasCode {
		ok = env.code == conv.successCode()
	}
	if !ok {
		info := &ErrorInfo{Code: 500, Message: env.message}
		if env.hasCode {
			info.Code = env.code
		}
		if info.Message == "" {
			info.Message = messageFallback
		}
		return nil, info
	}

	// dataを持たない成功レスポンス（管理画面のログインなど）はエンベロープごと返す
	if env.data == nil {
		return json.RawMessage(body), nil
	}
	return env.data, nil
}

// errorMessage は2xx以外のレスポンスボディからメッセージを取り出す。
func errorMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"message", "msg", "error"} {
		if msg := textField(fields[key]); msg != "" {
			return msg
		}
	}
	return ""
}

// textField は文字列のJSON値を取り出す。文字列以外は空文字列を返す。
func textField(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// isNull はJSONのnullかどうかを返す。
func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
