// Package gateway はアプリケーションコードとHTTPトランスポートの間に立つ
// リクエストゲートウェイを提供する。
//
// すべての外向きリクエストはゲートウェイを通過し、次の処理を受ける。
//
//   - セッションストアにトークンがあれば Bearer 認証ヘッダーを付与する
//   - タイムアウト付きでトランスポートに1回だけ送信する（リトライしない）
//   - バックエンドごとに異なるエンベロープ（code 200 / code 0 / success）を
//     Result[T] に正規化する
//   - 401 を検知した場合はトークンを破棄し、Navigator にログイン画面への
//     遷移を依頼する
//
// 呼び出し側が受け取るのは常に Ok か Err のどちらか一方であり、
// トランスポートのエラーがそのまま返ることはない。
package gateway
