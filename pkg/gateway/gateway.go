package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nao1215/tourism/pkg/event"
	"github.com/nao1215/tourism/pkg/httpclient"
	"github.com/nao1215/tourism/pkg/session"
)

// tracerName はゲートウェイのスパンに使うトレーサー名。
const tracerName = "github.com/nao1215/tourism/pkg/gateway"

// Transport はリクエストを1回送信する能力。
// ネットワーク障害では error を、2xx以外では *httpclient.StatusError を返す。
type Transport interface {
	Dispatch(ctx context.Context, r httpclient.Request) (*httpclient.Response, error)
}

// Descriptor は1回の論理リクエストの内容。呼び出しごとに生成し、送信後は保持しない。
type Descriptor struct {
	// Method はHTTPメソッド。空の場合はGET。
	Method string
	// Path はAPIのパス。空文字列は不正。
	Path string
	// Query はクエリパラメータ。
	Query url.Values
	// Body はJSONで送信するボディ。
	Body any
	// Header は追加のリクエストヘッダー。
	Header http.Header
	// Convention はこのエンドポイントの成功判定方式。
	// ConventionDefault の場合はゲートウェイの既定値を使う。
	Convention Convention
}

// Gateway は全ての外向きリクエストが通過する単一の窓口。
// 複数のゴルーチンから同時に使用できる。
type Gateway struct {
	// transport はHTTPトランスポート。
	transport Transport
	// store はトークンを保持するセッションストア。
	store session.Store
	// navigator はセッション切れの通知先。
	navigator Navigator
	// convention はDescriptorで指定されない場合の成功判定方式。
	convention Convention
	// logger は失敗時のログ出力先。
	logger *log.Logger
	// tracer はリクエストごとのスパンを作成する。
	tracer trace.Tracer
}

// Option はGatewayの設定を変更する関数。
type Option func(*Gateway)

// WithNavigator はセッション切れの通知先を設定する。
func WithNavigator(n Navigator) Option {
	return func(g *Gateway) {
		if n != nil {
			g.navigator = n
		}
	}
}

// WithConvention は既定の成功判定方式を設定する。
func WithConvention(c Convention) Option {
	return func(g *Gateway) {
		if c != ConventionDefault {
			g.convention = c
		}
	}
}

// WithLogger はログ出力先を設定する。
func WithLogger(l *log.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithTracer はスパンの作成に使うトレーサーを設定する。
func WithTracer(t trace.Tracer) Option {
	return func(g *Gateway) {
		if t != nil {
			g.tracer = t
		}
	}
}

// New は新しいGatewayを生成する。
func New(transport Transport, store session.Store, opts ...Option) *Gateway {
	g := &Gateway{
		transport:  transport,
		store:      store,
		navigator:  nopNavigator{},
		convention: ConventionCode200,
		logger:     log.Default(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Do はリクエストを送信し、正規化済みの結果をJSONのまま返す。
// どの経路でも Ok か Err のどちらか一方を必ず返す。
func (g *Gateway) Do(ctx context.Context, d Descriptor) Result[json.RawMessage] {
	method := d.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := g.tracer.Start(ctx, "gateway "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", d.Path),
		),
	)
	defer span.End()

	res := g.do(ctx, method, d)
	if info, failed := res.Failure(); failed {
		span.SetAttributes(attribute.Int("tourism.result.code", info.Code))
		span.SetStatus(codes.Error, info.Message)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return res
}

// do はDoの本体。スパンの管理はDoで行う。
func (g *Gateway) do(ctx context.Context, method string, d Descriptor) Result[json.RawMessage] {
	if d.Path == "" {
		return Err[json.RawMessage](ErrorInfo{Code: 400, Message: "empty request path"})
	}

	token, err := g.store.Token(ctx)
	if err != nil {
		// トークンが読めなくても未認証として送信し、認可はバックエンドに任せる
		g.logger.Printf("[Gateway] トークンの取得に失敗: %v", err)
		token = ""
	}

	header := d.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.dispatch(ctx, httpclient.Request{
		Method: method,
		Path:   d.Path,
		Query:  d.Query,
		Header: header,
		Body:   d.Body,
	})
	if err != nil {
		return g.handleTransportError(ctx, method, d.Path, token, err)
	}
	if resp == nil {
		g.logger.Printf("[Gateway] %s %s: レスポンスが空です", method, d.Path)
		return Err[json.RawMessage](ErrorInfo{Code: 500, Message: messageMalformed})
	}

	conv := d.Convention
	if conv == ConventionDefault {
		conv = g.convention
	}
	data, info := normalize(resp.Body, conv)
	if info != nil {
		if info.Unauthorized() {
			g.expireSession(ctx, method, d.Path, token, *info)
		}
		g.logger.Printf("[Gateway] %s %s: code=%d message=%s", method, d.Path, info.Code, info.Message)
		return Err[json.RawMessage](*info)
	}
	return Ok(data)
}

// errTransportPanic はトランスポートがパニックしたことを表す。
var errTransportPanic = errors.New("トランスポートがパニックしました")

// dispatch はトランスポートを呼び出す。パニックは通信失敗として扱う。
func (g *Gateway) dispatch(ctx context.Context, r httpclient.Request) (resp *httpclient.Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Printf("[PANIC] Transport: %v", rec)
			resp, err = nil, errTransportPanic
		}
	}()
	return g.transport.Dispatch(ctx, r)
}

// handleTransportError はトランスポートのエラーを分類してErrに変換する。
func (g *Gateway) handleTransportError(ctx context.Context, method, path, token string, err error) Result[json.RawMessage] {
	var statusErr *httpclient.StatusError
	if !errors.As(err, &statusErr) {
		g.logger.Printf("[Gateway] %s %s: 通信に失敗: %v", method, path, err)
		return Err[json.RawMessage](ErrorInfo{Code: 500, Message: messageRequestFailed})
	}

	info := ErrorInfo{Code: statusErr.StatusCode, Message: errorMessage(statusErr.Body)}
	if info.Unauthorized() {
		if info.Message == "" {
			info.Message = messageSessionExpired
		}
		g.expireSession(ctx, method, path, token, info)
	} else if info.Message == "" {
		info.Message = messageRequestFailed
	}
	g.logger.Printf("[Gateway] %s %s: status=%d message=%s", method, path, info.Code, info.Message)
	return Err[json.RawMessage](info)
}

// expireSession は送信したトークンを破棄し、ログイン画面への遷移を依頼する。
// 同じトークンで並行して401を受け取った場合、破棄と遷移は最初の1件だけが行う。
// トークンを付けずに送信していた場合は破棄せずに遷移だけを依頼する。
func (g *Gateway) expireSession(ctx context.Context, method, path, token string, info ErrorInfo) {
	// 呼び出し元がキャンセルしても副作用は完了させる
	ctx = context.WithoutCancel(ctx)

	if token != "" {
		cleared, err := g.store.CompareAndClear(ctx, token)
		if err != nil {
			g.logger.Printf("[Gateway] トークンの破棄に失敗: %v", err)
			return
		}
		if !cleared {
			return
		}
	}

	ev, err := event.New(event.TypeSessionExpired, event.SessionExpiredData{
		Method:  method,
		Path:    path,
		Status:  info.Code,
		Message: info.Message,
	})
	if err != nil {
		g.logger.Printf("[Gateway] イベントの生成に失敗: %v", err)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			g.logger.Printf("[PANIC] Navigator: %v", r)
		}
	}()
	g.navigator.RedirectToLogin(ctx, ev)
}

// Send はリクエストを送信し、成功時のデータをTにデコードして返す。
// デコードできない場合は Err{500, "malformed response"} を返す。
func Send[T any](ctx context.Context, g *Gateway, d Descriptor) Result[T] {
	res := g.Do(ctx, d)
	raw, ok := res.Value()
	if !ok {
		info, _ := res.Failure()
		return Err[T](info)
	}

	var v T
	if len(raw) == 0 || isNull(raw) {
		return Ok(v)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		g.logger.Printf("[Gateway] %s: レスポンスのデコードに失敗: %v", d.Path, err)
		return Err[T](ErrorInfo{Code: 500, Message: messageMalformed})
	}
	return Ok(v)
}
