// Package event はセッションのライフサイクルイベントを定義する。
//
// ゲートウェイが認証切れを検知した際の通知や、ログイン・ログアウトの
// 記録に使用する。イベントはナビゲーション層への唯一の連絡手段となる。
package event
