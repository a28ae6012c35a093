package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nao1215/tourism/pkg/gateway"
)

const attractionsPath = "/api/attractions"

// ListAttractions は景点の一覧を返す。
func ListAttractions(ctx context.Context, gw *gateway.Gateway, q AttractionQuery) gateway.Result[Page[Attraction]] {
	return gateway.Send[Page[Attraction]](ctx, gw, gateway.Descriptor{
		Path:  attractionsPath,
		Query: q.values(),
	})
}

// GetAttraction は景点の詳細を返す。
func GetAttraction(ctx context.Context, gw *gateway.Gateway, id int64) gateway.Result[Attraction] {
	return gateway.Send[Attraction](ctx, gw, gateway.Descriptor{Path: idPath(attractionsPath, id)})
}

// HotAttractions は人気の景点を最大limit件返す。limitが0以下の場合はバックエンドの既定値。
func HotAttractions(ctx context.Context, gw *gateway.Gateway, limit int) gateway.Result[[]Attraction] {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	return gateway.Send[[]Attraction](ctx, gw, gateway.Descriptor{
		Path:  attractionsPath + "/hot",
		Query: q,
	})
}

// LikeAttraction は景点にいいねし、更新後のいいね数を返す。
func LikeAttraction(ctx context.Context, gw *gateway.Gateway, id int64) gateway.Result[int] {
	res := gateway.Send[counter](ctx, gw, gateway.Descriptor{
		Method: http.MethodPost,
		Path:   idPath(attractionsPath, id, "/like"),
	})
	return gateway.Map(res, func(c counter) int { return c.LikeCount })
}

// CollectAttraction は景点をお気に入りに追加し、更新後のお気に入り数を返す。
func CollectAttraction(ctx context.Context, gw *gateway.Gateway, id int64) gateway.Result[int] {
	res := gateway.Send[counter](ctx, gw, gateway.Descriptor{
		Method: http.MethodPost,
		Path:   idPath(attractionsPath, id, "/collect"),
	})
	return gateway.Map(res, func(c counter) int { return c.CollectionCount })
}

// counter はいいね・お気に入りのレスポンス。
type counter struct {
	LikeCount       int `json:"like_count"`
	CollectionCount int `json:"collection_count"`
}
