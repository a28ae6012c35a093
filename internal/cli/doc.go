// Package cli はtourismctlのコマンドを実装する。
//
// 全てのコマンドは同じゲートウェイを通して観光APIを呼び出す。
// トークンはSQLiteのセッションストアに保存され、401を受け取ると
// ゲートウェイがトークンを破棄し、再ログインを促すメッセージを表示する。
package cli
