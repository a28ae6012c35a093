// Package middleware は観光APIのGinサーバーで使用する共通ミドルウェアを提供する。
//
// JWTの発行と検証、パニックリカバリ、CORS設定を含む。
// 全てのエラーレスポンスは観光APIのエンベロープ形式
// {"code": ..., "message": ..., "success": false} で返す。
package middleware
