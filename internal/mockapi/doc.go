// Package mockapi は観光APIの開発用バックエンドを提供する。
//
// 公開サイト向けの /api と管理画面向けの /admin を実装し、
// 実際のバックエンドと同じ3種類のエンベロープ（code=200、code=0、
// エンベロープ無し）で応答する。ユーザーと景点はSQLiteに保存し、
// パスワードはbcryptでハッシュ化する。
package mockapi
