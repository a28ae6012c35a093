package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/nao1215/tourism/pkg/event"
	"github.com/nao1215/tourism/pkg/httpclient"
	"github.com/nao1215/tourism/pkg/session"
)

// discardLogger はテスト中のログ出力を捨てるロガー。
var discardLogger = log.New(io.Discard, "", 0)

// recordingNavigator は遷移要求を記録するNavigator。
type recordingNavigator struct {
	mu     sync.Mutex
	events []*event.Event
}

func (n *recordingNavigator) RedirectToLogin(_ context.Context, e *event.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNavigator) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// countingStore は破棄の回数を数えるセッションストア。
type countingStore struct {
	*session.MemoryStore
	clears atomic.Int32
}

func (s *countingStore) CompareAndClear(ctx context.Context, token string) (bool, error) {
	cleared, err := s.MemoryStore.CompareAndClear(ctx, token)
	if cleared {
		s.clears.Add(1)
	}
	return cleared, err
}

// failingStore はトークンの取得に失敗するセッションストア。
type failingStore struct {
	*session.MemoryStore
}

func (*failingStore) Token(context.Context) (string, error) {
	return "", errors.New("disk I/O error")
}

// transportFunc は関数をTransportとして扱うアダプタ。
type transportFunc func(ctx context.Context, r httpclient.Request) (*httpclient.Response, error)

func (f transportFunc) Dispatch(ctx context.Context, r httpclient.Request) (*httpclient.Response, error) {
	return f(ctx, r)
}

// newTestGateway はhandlerをバックエンドとするテスト用Gatewayを生成する。
func newTestGateway(t *testing.T, handler http.HandlerFunc, store session.Store, opts ...Option) *Gateway {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	opts = append([]Option{WithLogger(discardLogger)}, opts...)
	return New(httpclient.New(ts.URL), store, opts...)
}

// writeJSON はテストサーバーからJSONを返す。
func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// resource はテスト用のリソース。
type resource struct {
	ID int `json:"id"`
}

// TestSend は代表的なシナリオでのSendの結果を検証する。
func TestSend(t *testing.T) {
	t.Parallel()

	t.Run("code200のエンベロープからdataを取り出すこと", func(t *testing.T) {
		t.Parallel()

		var gotAuth, gotPath string
		g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			writeJSON(w, http.StatusOK, `{"code":200,"data":{"id":42},"message":"ok"}`)
		}, session.NewMemoryStore("token-abc"))

		res := Send[resource](context.Background(), g, Descriptor{Path: "/resource/42"})
		v, ok := res.Value()
		if !ok {
			info, _ := res.Failure()
			t.Fatalf("Errが返った: %+v", info)
		}
		if v.ID != 42 {
			t.Errorf("ID = %d, want 42", v.ID)
		}
		if gotAuth != "Bearer token-abc" {
			t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer token-abc")
		}
		if gotPath != "/resource/42" {
			t.Errorf("Path = %q, want %q", gotPath, "/resource/42")
		}
	})

	t.Run("トークンが無い場合は認証ヘッダーを付けずに送信すること", func(t *testing.T) {
		t.Parallel()

		var hasAuth bool
		g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			_, hasAuth = r.Header["Authorization"]
			writeJSON(w, http.StatusOK, `[]`)
		}, session.NewMemoryStore(""))

		res := Send[[]resource](context.Background(), g, Descriptor{Path: "/api/attractions/hot"})
		if !res.IsOk() {
			t.Fatal("Errが返った")
		}
		if hasAuth {
			t.Error("トークンが無いのにAuthorizationヘッダーが付与された")
		}
	})

	t.Run("Descriptorのヘッダーとクエリを転送し元のヘッダーを変更しないこと", func(t *testing.T) {
		t.Parallel()

		var gotLang, gotQuery string
		g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			gotLang = r.Header.Get("Accept-Language")
			gotQuery = r.URL.RawQuery
			writeJSON(w, http.StatusOK, `{"code":200,"data":null}`)
		}, session.NewMemoryStore("t"))

		header := http.Header{}
		header.Set("Accept-Language", "zh-CN")
		res := g.Do(context.Background(), Descriptor{
			Path:   "/api/notes",
			Query:  map[string][]string{"page": {"1"}},
			Header: header,
		})
		if !res.IsOk() {
			t.Fatal("Errが返った")
		}
		if gotLang != "zh-CN" {
			t.Errorf("Accept-Language = %q, want %q", gotLang, "zh-CN")
		}
		if gotQuery != "page=1" {
			t.Errorf("RawQuery = %q, want %q", gotQuery, "page=1")
		}
		if header.Get("Authorization") != "" {
			t.Error("呼び出し側のヘッダーにAuthorizationが書き込まれた")
		}
	})

	t.Run("業務エラーはErrになりセッションは変更されないこと", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore("keep-me")
		nav := &recordingNavigator{}
		g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"code":403,"message":"forbidden"}`)
		}, store, WithNavigator(nav))

		res := Send[resource](context.Background(), g, Descriptor{Path: "/resource/42"})
		info, failed := res.Failure()
		if !failed {
			t.Fatal("Okが返った")
		}
		if info != (ErrorInfo{Code: 403, Message: "forbidden"}) {
			t.Errorf("ErrorInfo = %+v, want {403 forbidden}", info)
		}
		if tok, _ := store.Token(context.Background()); tok != "keep-me" {
			t.Errorf("トークンが変更された: %q", tok)
		}
		if nav.count() != 0 {
			t.Errorf("遷移回数 = %d, want 0", nav.count())
		}
	})

	t.Run("HTTP401でトークンを破棄し遷移を1回依頼すること", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore("expired-token")
		nav := &recordingNavigator{}
		g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"code":401,"message":"Token has expired"}`)
		}, store, WithNavigator(nav))

		res := Send[resource](context.Background(), g, Descriptor{Method: http.MethodGet, Path: "/api/user/profile"})
		info, failed := res.Failure()
		if !failed {
			t.Fatal("Okが返った")
		}
		if info.Code != 401 || info.Message != "Token has expired" {
			t.Errorf("ErrorInfo = %+v", info)
		}
		if tok, _ := store.Token(context.Background()); tok != "" {
			t.Errorf("トークンが破棄されていない: %q", tok)
		}
		if nav.count() != 1 {
			t.Fatalf("遷移回数 = %d, want 1", nav.count())
		}

		data, err := event.DecodeData[event.SessionExpiredData](nav.events[0])
		if err != nil {
			t.Fatalf("イベントデータのデコードに失敗: %v", err)
		}
		if data.Path != "/api/user/profile" || data.Method != http.MethodGet || data.Status != 401 {
			t.Errorf("SessionExpiredData = %+v", *data)
		}
	})

	t.Run("ボディの無い401では既定のメッセージを使うこと", func(t *testing.T) {
		t.Parallel()

		g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}, session.NewMemoryStore(""))

		info, _ := g.Do(context.Background(), Descriptor{Path: "/api/x"}).Failure()
		if info.Code != 401 || info.Message != "session expired, please log in again" {
			t.Errorf("ErrorInfo = %+v", info)
		}
	})

	t.Run("エンベロープ内のcode=401でもセッションを破棄すること", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore("admin-token")
		nav := &recordingNavigator{}
		g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"code":401,"message":"未登录","success":false}`)
		}, store, WithNavigator(nav))

		info, failed := g.Do(context.Background(), Descriptor{Path: "/admin/dashboard"}).Failure()
		if !failed || info.Code != 401 || info.Message != "未登录" {
			t.Errorf("Failure() = (%+v, %v)", info, failed)
		}
		if tok, _ := store.Token(context.Background()); tok != "" {
			t.Errorf("トークンが破棄されていない: %q", tok)
		}
		if nav.count() != 1 {
			t.Errorf("遷移回数 = %d, want 1", nav.count())
		}
	})

	t.Run("401以外のHTTPエラーはステータスとメッセージを返すこと", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore("keep-me")
		g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusBadRequest, `{"code":400,"message":"用户名已存在","success":false}`)
		}, store)

		info, _ := g.Do(context.Background(), Descriptor{Method: http.MethodPost, Path: "/api/auth/register"}).Failure()
		if info != (ErrorInfo{Code: 400, Message: "用户名已存在"}) {
			t.Errorf("ErrorInfo = %+v", info)
		}
		if tok, _ := store.Token(context.Background()); tok != "keep-me" {
			t.Errorf("トークンが変更された: %q", tok)
		}
	})

	t.Run("メッセージの無いHTTPエラーは既定の文言を使うこと", func(t *testing.T) {
		t.Parallel()

		g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		}, session.NewMemoryStore(""))

		info, _ := g.Do(context.Background(), Descriptor{Path: "/api/x"}).Failure()
		if info != (ErrorInfo{Code: 502, Message: "request failed"}) {
			t.Errorf("ErrorInfo = %+v", info)
		}
	})

	t.Run("タイムアウトは500のErrになりセッションは変更されないこと", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(ts.Close)

		store := session.NewMemoryStore("keep-me")
		nav := &recordingNavigator{}
		g := New(httpclient.New(ts.URL, httpclient.WithTimeout(50*time.Millisecond)), store,
			WithNavigator(nav), WithLogger(discardLogger))

		start := time.Now()
		info, failed := g.Do(context.Background(), Descriptor{Path: "/slow"}).Failure()
		if !failed {
			t.Fatal("Okが返った")
		}
		if info != (ErrorInfo{Code: 500, Message: "request failed"}) {
			t.Errorf("ErrorInfo = %+v", info)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("結果が返るまでの時間 = %v, want < 1s", elapsed)
		}
		if tok, _ := store.Token(context.Background()); tok != "keep-me" {
			t.Errorf("トークンが変更された: %q", tok)
		}
		if nav.count() != 0 {
			t.Errorf("遷移回数 = %d, want 0", nav.count())
		}
	})

	t.Run("dataを型に変換できない場合は汎用のErrになること", func(t *testing.T) {
		t.Parallel()

		g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"code":200,"data":{"id":"not-a-number"}}`)
		}, session.NewMemoryStore(""))

		info, failed := Send[resource](context.Background(), g, Descriptor{Path: "/resource/1"}).Failure()
		if !failed || info != (ErrorInfo{Code: 500, Message: "malformed response"}) {
			t.Errorf("Failure() = (%+v, %v)", info, failed)
		}
	})

	t.Run("Descriptorの方式がゲートウェイの既定値より優先されること", func(t *testing.T) {
		t.Parallel()

		g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"code":0,"message":"获取成功","data":{"id":7}}`)
		}, session.NewMemoryStore(""))

		if g.Do(context.Background(), Descriptor{Path: "/api/notes/7"}).IsOk() {
			t.Error("既定のcode200方式でcode=0がOkになった")
		}
		v, ok := Send[resource](context.Background(), g, Descriptor{Path: "/api/notes/7", Convention: ConventionCode0}).Value()
		if !ok || v.ID != 7 {
			t.Errorf("Value() = (%+v, %v), want ({7}, true)", v, ok)
		}
	})

	t.Run("dataがnullの場合はゼロ値のOkを返すこと", func(t *testing.T) {
		t.Parallel()

		g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"code":200,"message":"删除成功","data":null}`)
		}, session.NewMemoryStore(""))

		v, ok := Send[*resource](context.Background(), g, Descriptor{Method: http.MethodDelete, Path: "/admin/attractions/1"}).Value()
		if !ok || v != nil {
			t.Errorf("Value() = (%v, %v), want (nil, true)", v, ok)
		}
	})
}

// TestDo_Guards は送信前の検査と外部コンポーネントの異常時の動作を検証する。
func TestDo_Guards(t *testing.T) {
	t.Parallel()

	t.Run("空のパスは送信せずにErrを返すこと", func(t *testing.T) {
		t.Parallel()

		var dispatched atomic.Bool
		g := New(transportFunc(func(context.Context, httpclient.Request) (*httpclient.Response, error) {
			dispatched.Store(true)
			return &httpclient.Response{StatusCode: 200}, nil
		}), session.NewMemoryStore(""), WithLogger(discardLogger))

		info, failed := g.Do(context.Background(), Descriptor{}).Failure()
		if !failed || info.Code != 400 {
			t.Errorf("Failure() = (%+v, %v)", info, failed)
		}
		if dispatched.Load() {
			t.Error("空のパスで送信された")
		}
	})

	t.Run("トークンの取得に失敗しても未認証として送信すること", func(t *testing.T) {
		t.Parallel()

		var gotAuth string
		g := New(transportFunc(func(_ context.Context, r httpclient.Request) (*httpclient.Response, error) {
			gotAuth = r.Header.Get("Authorization")
			return &httpclient.Response{StatusCode: 200, Body: []byte(`{"code":200,"data":1}`)}, nil
		}), &failingStore{MemoryStore: session.NewMemoryStore("")}, WithLogger(discardLogger))

		v, ok := Send[int](context.Background(), g, Descriptor{Path: "/api/x"}).Value()
		if !ok || v != 1 {
			t.Errorf("Value() = (%d, %v), want (1, true)", v, ok)
		}
		if gotAuth != "" {
			t.Errorf("Authorization = %q, want empty", gotAuth)
		}
	})

	t.Run("トランスポートがパニックしてもErrが返ること", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore("t")
		g := New(transportFunc(func(context.Context, httpclient.Request) (*httpclient.Response, error) {
			panic("connection pool closed")
		}), store, WithLogger(discardLogger))

		info, failed := g.Do(context.Background(), Descriptor{Path: "/api/x"}).Failure()
		if !failed || info.Code != 500 || info.Message != "request failed" {
			t.Errorf("Failure() = (%+v, %v), want ({500 request failed}, true)", info, failed)
		}
		if tok, _ := store.Token(context.Background()); tok != "t" {
			t.Errorf("token = %q, want %q", tok, "t")
		}
	})

	t.Run("レスポンスもエラーも無い場合はmalformed responseになること", func(t *testing.T) {
		t.Parallel()

		g := New(transportFunc(func(context.Context, httpclient.Request) (*httpclient.Response, error) {
			return nil, nil
		}), session.NewMemoryStore(""), WithLogger(discardLogger))

		info, failed := g.Do(context.Background(), Descriptor{Path: "/api/x"}).Failure()
		if !failed || info.Code != 500 || info.Message != "malformed response" {
			t.Errorf("Failure() = (%+v, %v), want ({500 malformed response}, true)", info, failed)
		}
	})

	t.Run("Navigatorがパニックしても呼び出し側にはErrが返ること", func(t *testing.T) {
		t.Parallel()

		g := New(transportFunc(func(context.Context, httpclient.Request) (*httpclient.Response, error) {
			return nil, &httpclient.StatusError{StatusCode: 401}
		}), session.NewMemoryStore("t"),
			WithLogger(discardLogger),
			WithNavigator(NavigatorFunc(func(context.Context, *event.Event) { panic("router not ready") })),
		)

		info, failed := g.Do(context.Background(), Descriptor{Path: "/api/x"}).Failure()
		if !failed || info.Code != 401 {
			t.Errorf("Failure() = (%+v, %v)", info, failed)
		}
	})

	t.Run("未認証の401ではトークンを破棄せず遷移だけを依頼すること", func(t *testing.T) {
		t.Parallel()

		store := &countingStore{MemoryStore: session.NewMemoryStore("")}
		nav := &recordingNavigator{}
		g := New(transportFunc(func(context.Context, httpclient.Request) (*httpclient.Response, error) {
			return nil, &httpclient.StatusError{StatusCode: 401}
		}), store, WithLogger(discardLogger), WithNavigator(nav))

		g.Do(context.Background(), Descriptor{Path: "/api/user/profile"})
		if store.clears.Load() != 0 {
			t.Errorf("破棄回数 = %d, want 0", store.clears.Load())
		}
		if nav.count() != 1 {
			t.Errorf("遷移回数 = %d, want 1", nav.count())
		}
	})

	t.Run("401の受信前に再ログインした場合は新しいトークンを破棄しないこと", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore("old-token")
		nav := &recordingNavigator{}
		g := New(transportFunc(func(ctx context.Context, _ httpclient.Request) (*httpclient.Response, error) {
			// 応答待ちの間に別の画面でログインし直したことを再現する
			_ = store.SetToken(ctx, "new-token")
			return nil, &httpclient.StatusError{StatusCode: 401}
		}), store, WithLogger(discardLogger), WithNavigator(nav))

		g.Do(context.Background(), Descriptor{Path: "/api/x"})
		if tok, _ := store.Token(context.Background()); tok != "new-token" {
			t.Errorf("Token() = %q, want %q", tok, "new-token")
		}
		if nav.count() != 0 {
			t.Errorf("遷移回数 = %d, want 0", nav.count())
		}
	})
}

// TestDo_Concurrent401 は並行した401に対する副作用が1回だけであることを検証する。
func TestDo_Concurrent401(t *testing.T) {
	t.Parallel()

	const n = 32
	release := make(chan struct{})
	var arrived sync.WaitGroup
	arrived.Add(n)

	store := &countingStore{MemoryStore: session.NewMemoryStore("shared-token")}
	nav := &recordingNavigator{}
	g := New(transportFunc(func(context.Context, httpclient.Request) (*httpclient.Response, error) {
		arrived.Done()
		<-release
		return nil, &httpclient.StatusError{StatusCode: 401, Body: []byte(`{"message":"expired"}`)}
	}), store, WithLogger(discardLogger), WithNavigator(nav))

	results := make([]Result[json.RawMessage], n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = g.Do(context.Background(), Descriptor{Path: "/api/collections"})
		}(i)
	}
	// 全リクエストが同じトークンで送信されてから一斉に401を返す
	arrived.Wait()
	close(release)
	wg.Wait()

	for i, r := range results {
		if info, failed := r.Failure(); !failed || info.Code != 401 {
			t.Errorf("results[%d] = %+v", i, info)
		}
	}
	if got := store.clears.Load(); got != 1 {
		t.Errorf("破棄回数 = %d, want 1", got)
	}
	if got := nav.count(); got != 1 {
		t.Errorf("遷移回数 = %d, want 1", got)
	}
}

// TestDo_Tracing はリクエストごとにスパンが記録されることを検証する。
func TestDo_Tracing(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	g := New(transportFunc(func(context.Context, httpclient.Request) (*httpclient.Response, error) {
		return &httpclient.Response{StatusCode: 200, Body: []byte(`{"code":404,"message":"景点不存在"}`)}, nil
	}), session.NewMemoryStore(""), WithLogger(discardLogger), WithTracer(tp.Tracer("test")))

	g.Do(context.Background(), Descriptor{Path: "/api/attractions/999"})

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("スパン数 = %d, want 1", len(spans))
	}
	if spans[0].Name() != "gateway GET" {
		t.Errorf("Name = %q, want %q", spans[0].Name(), "gateway GET")
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("Status = %v, want Error", spans[0].Status().Code)
	}
	if spans[0].Status().Description != "景点不存在" {
		t.Errorf("Description = %q", spans[0].Status().Description)
	}
}
