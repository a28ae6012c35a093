// Package httpclient はバックエンドAPIとのHTTP通信を行うトランスポートを提供する。
//
// タイムアウト付きでリクエストを1回だけ送信し、ステータスコードと
// ボディをそのまま返す。リトライは行わない。エンベロープの解釈や
// 認証情報の付与は上位のgatewayパッケージが担当する。
package httpclient
