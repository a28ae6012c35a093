// Package api は観光APIの各リソースをゲートウェイ経由で呼び出す関数を提供する。
//
// 各関数はリクエストの内容（Descriptor）を組み立ててゲートウェイに渡すだけで、
// 認証ヘッダーの付与やエンベロープの解釈、401の処理は全てゲートウェイが行う。
// 旅行記のAPIだけはcode=0を成功とする方式で呼び出す。
package api
