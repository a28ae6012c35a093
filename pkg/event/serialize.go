package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// New は新しいセッションイベントを生成する。
// dataにはイベント固有のデータ構造体を渡す。nilの場合はDataが空になる。
func New(eventType Type, data any) (*Event, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("イベントデータのシリアライズに失敗: %w", err)
		}
		raw = b
	}

	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Data:      raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// DecodeData はイベントのDataフィールドを指定された型にデシリアライズする。
func DecodeData[T any](e *Event) (*T, error) {
	var data T
	if len(e.Data) == 0 {
		return nil, fmt.Errorf("イベント %s にデータがありません", e.Type)
	}
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, fmt.Errorf("イベントデータのデシリアライズに失敗: %w", err)
	}
	return &data, nil
}
