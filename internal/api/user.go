package api

import (
	"context"
	"net/http"

	"github.com/nao1215/tourism/pkg/gateway"
)

// Profile はログイン中のユーザーのプロフィールを返す。
func Profile(ctx context.Context, gw *gateway.Gateway) gateway.Result[User] {
	return gateway.Send[User](ctx, gw, gateway.Descriptor{Path: "/api/user/profile"})
}

// UpdateProfile はプロフィールを更新し、更新後のユーザーを返す。
func UpdateProfile(ctx context.Context, gw *gateway.Gateway, u ProfileUpdate) gateway.Result[User] {
	return gateway.Send[User](ctx, gw, gateway.Descriptor{
		Method: http.MethodPut,
		Path:   "/api/user/profile",
		Body:   u,
	})
}
