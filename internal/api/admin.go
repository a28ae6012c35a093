package api

import (
	"context"
	"net/http"

	"github.com/nao1215/tourism/pkg/gateway"
)

const adminAttractionsPath = "/admin/attractions"

// Dashboard は管理画面トップの集計値を返す。
func Dashboard(ctx context.Context, gw *gateway.Gateway) gateway.Result[DashboardData] {
	return gateway.Send[DashboardData](ctx, gw, gateway.Descriptor{Path: "/admin/dashboard"})
}

// AdminListAttractions は管理画面の景点一覧を返す。
func AdminListAttractions(ctx context.Context, gw *gateway.Gateway, q AttractionQuery) gateway.Result[Page[Attraction]] {
	return gateway.Send[Page[Attraction]](ctx, gw, gateway.Descriptor{
		Path:  adminAttractionsPath,
		Query: q.values(),
	})
}

// AdminGetAttraction は管理画面の景点詳細を返す。
func AdminGetAttraction(ctx context.Context, gw *gateway.Gateway, id int64) gateway.Result[Attraction] {
	return gateway.Send[Attraction](ctx, gw, gateway.Descriptor{Path: idPath(adminAttractionsPath, id)})
}

// CreateAttraction は景点を作成する。
func CreateAttraction(ctx context.Context, gw *gateway.Gateway, in AttractionInput) gateway.Result[Attraction] {
	return gateway.Send[Attraction](ctx, gw, gateway.Descriptor{
		Method: http.MethodPost,
		Path:   adminAttractionsPath,
		Body:   in,
	})
}

// UpdateAttraction は景点を更新する。
func UpdateAttraction(ctx context.Context, gw *gateway.Gateway, id int64, in AttractionInput) gateway.Result[Attraction] {
	return gateway.Send[Attraction](ctx, gw, gateway.Descriptor{
		Method: http.MethodPut,
		Path:   idPath(adminAttractionsPath, id),
		Body:   in,
	})
}

// DeleteAttraction は景点を削除する。
func DeleteAttraction(ctx context.Context, gw *gateway.Gateway, id int64) gateway.Result[struct{}] {
	return gateway.Send[struct{}](ctx, gw, gateway.Descriptor{
		Method: http.MethodDelete,
		Path:   idPath(adminAttractionsPath, id),
	})
}
