// Package session はクライアント側で保持する認証トークンのストアを提供する。
//
// トークンはプロセス全体で共有される唯一の可変状態であり、
// ゲートウェイには Store インターフェースとして注入する。
// MemoryStore はプロセス内、SQLiteStore はCLIの起動をまたいで
// トークンを保持する。どちらも並行呼び出しに対して安全で、
// トークンの破棄は冪等である。
package session
