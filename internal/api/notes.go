package api

import (
	"context"

	"github.com/nao1215/tourism/pkg/gateway"
)

const notesPath = "/api/notes"

// ListNotes は公開中の旅行記の一覧を返す。
func ListNotes(ctx context.Context, gw *gateway.Gateway, q PageQuery) gateway.Result[Page[Note]] {
	return gateway.Send[Page[Note]](ctx, gw, gateway.Descriptor{
		Path:       notesPath,
		Query:      q.values(),
		Convention: gateway.ConventionCode0,
	})
}

// GetNote は旅行記の詳細を返す。
func GetNote(ctx context.Context, gw *gateway.Gateway, id int64) gateway.Result[Note] {
	return gateway.Send[Note](ctx, gw, gateway.Descriptor{
		Path:       idPath(notesPath, id),
		Convention: gateway.ConventionCode0,
	})
}
