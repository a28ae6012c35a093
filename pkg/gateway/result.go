package gateway

import "fmt"

// ErrorInfo は失敗したリクエストの正規化済みエラー情報。
type ErrorInfo struct {
	// Code はHTTPステータスまたはエンベロープのcode。
	Code int `json:"code"`
	// Message は表示用のメッセージ。
	Message string `json:"message"`
}

// Error はerrorインターフェースを実装する。
func (e ErrorInfo) Error() string {
	return fmt.Sprintf("code=%d: %s", e.Code, e.Message)
}

// Unauthorized は認証切れによる失敗かどうかを返す。
func (e ErrorInfo) Unauthorized() bool {
	return e.Code == 401
}

// Result はゲートウェイが返す唯一の結果型。Ok か Err のどちらか一方を保持する。
type Result[T any] struct {
	value T
	err   *ErrorInfo
}

// Ok は成功結果を生成する。
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err は失敗結果を生成する。
func Err[T any](info ErrorInfo) Result[T] {
	return Result[T]{err: &info}
}

// IsOk は成功結果かどうかを返す。
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Value は成功時の値を返す。失敗時はゼロ値とfalseを返す。
func (r Result[T]) Value() (T, bool) {
	if r.err != nil {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Failure は失敗時のエラー情報を返す。成功時はfalseを返す。
func (r Result[T]) Failure() (ErrorInfo, bool) {
	if r.err == nil {
		return ErrorInfo{}, false
	}
	return *r.err, true
}

// Unwrap は値とerrorの組に変換する。失敗時のerrorはErrorInfo。
func (r Result[T]) Unwrap() (T, error) {
	if r.err != nil {
		var zero T
		return zero, *r.err
	}
	return r.value, nil
}

// Map は成功時の値をfで変換する。失敗結果はそのまま引き継ぐ。
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Err[U](*r.err)
	}
	return Ok(f(r.value))
}
