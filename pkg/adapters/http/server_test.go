package http

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/stepper"
	"github.com/aretw0/stepper/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const designDoc = `
tables:
  - steps:
      - append: [{path: a}, {path: b}, {path: c}]
`

type fixture struct {
	engine  *stepper.Engine
	streams *StreamManager
	handler http.Handler
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	streams := NewStreamManager()
	eng := stepper.New(stepper.WithLifecycleHooks(streams.Hooks()))
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithStreams(streams), WithLogger(quiet)}, opts...)
	return fixture{engine: eng, streams: streams, handler: NewHandler(eng, opts...)}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) stepper.View {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var v stepper.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealthAndInfo(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), stepper.Version)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodOptions, "/sequences/p01/next", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestDesignAndNavigation(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/sequences/p01/design", designDoc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var applied ApplyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &applied))
	require.Len(t, applied.Results, 1)
	assert.Equal(t, 3, applied.Results[0].Added)
	assert.Equal(t, "a", applied.Current.PathString)

	v := decodeView(t, f.do(t, http.MethodPost, "/sequences/p01/next", ""))
	assert.Equal(t, "b", v.PathString)
	assert.True(t, v.Moved)

	v = decodeView(t, f.do(t, http.MethodPost, "/sequences/p01/goto", `{"path":"c"}`))
	assert.Equal(t, "c", v.PathString)

	v = decodeView(t, f.do(t, http.MethodPost, "/sequences/p01/prev", ""))
	assert.Equal(t, "b", v.PathString)

	v = decodeView(t, f.do(t, http.MethodPost, "/sequences/p01/reset", ""))
	assert.Equal(t, "a", v.PathString)

	v = decodeView(t, f.do(t, http.MethodGet, "/sequences/p01", ""))
	assert.Equal(t, "a", v.PathString)
	assert.Equal(t, "p01", v.Sequence)

	w = f.do(t, http.MethodGet, "/sequences/p01/diagram", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SOS")
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))

	w = f.do(t, http.MethodPost, "/sequences/p01/design", designDoc)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &applied))
	assert.True(t, applied.Results[0].Skipped)

	w = f.do(t, http.MethodGet, "/sequences", "")
	assert.JSONEq(t, `["p01"]`, w.Body.String())

	w = f.do(t, http.MethodDelete, "/sequences/p01", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, http.MethodGet, "/sequences", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestErrors(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/sequences/p01/design", designDoc)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"missing sequence", http.MethodGet, "/sequences/ghost", "", http.StatusNotFound},
		{"missing diagram", http.MethodGet, "/sequences/ghost/diagram", "", http.StatusNotFound},
		{"unknown path", http.MethodPost, "/sequences/p01/goto", `{"path":"zz"}`, http.StatusBadRequest},
		{"bad goto body", http.MethodPost, "/sequences/p01/goto", `{`, http.StatusBadRequest},
		{"bad design", http.MethodPost, "/sequences/p01/design", "tables: [{steps: [{explode: 1}]}]", http.StatusBadRequest},
		{"capacity", http.MethodPost, "/sequences/p01/design",
			"max_rows: 2\ntables: [{steps: [{range: 5}]}]", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusOf(domain.ErrReadOnly))
	assert.Equal(t, http.StatusBadRequest, statusOf(domain.ErrDuplicateID))
	assert.Equal(t, http.StatusInternalServerError, statusOf(io.ErrUnexpectedEOF))
}

func TestMetricsMount(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "stepper_navigations_total 0\n")
	})
	f := newFixture(t, WithMetrics("/metrics", metrics))
	w := f.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stepper_navigations_total")
}

func TestStreamManager_Hooks(t *testing.T) {
	f := newFixture(t)
	ch, cancel := f.streams.Subscribe("p01")
	defer cancel()
	other, cancelOther := f.streams.Subscribe("p02")
	defer cancelOther()

	f.do(t, http.MethodPost, "/sequences/p01/design", designDoc)
	f.do(t, http.MethodPost, "/sequences/p01/next", "")

	var commit domain.CommitEvent
	require.NoError(t, json.Unmarshal([]byte(<-ch), &commit))
	assert.Equal(t, domain.EventCommit, commit.Type)
	assert.Equal(t, 3, commit.Rows)

	var nav domain.NavigationEvent
	require.NoError(t, json.Unmarshal([]byte(<-ch), &nav))
	assert.Equal(t, "next", nav.Action)
	assert.Equal(t, "a", nav.From)
	assert.Equal(t, "b", nav.To)

	assert.Empty(t, other, "events stay with their sequence")
}

func TestStreamManager_Unsubscribe(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe("p01")
	assert.Equal(t, 1, sm.Subscribers("p01"))
	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("p01"))
	_, open := <-ch
	assert.False(t, open)
	sm.Broadcast("p01", "nobody listens")
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager()
	sm.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	ch, cancel := sm.Subscribe("p01")
	defer cancel()
	for range 20 {
		sm.Broadcast("p01", "x")
	}
	assert.Len(t, ch, 10)
}

func TestSubscribeEvents(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sequences/p01/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewReader(resp.Body)
	readData := func() string {
		for {
			line, err := lines.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}
	assert.Equal(t, "connected", readData())

	post, err := http.Post(srv.URL+"/sequences/p01/design", "application/yaml", strings.NewReader(designDoc))
	require.NoError(t, err)
	post.Body.Close()

	var commit domain.CommitEvent
	require.NoError(t, json.Unmarshal([]byte(readData()), &commit))
	assert.Equal(t, "p01", commit.Sequence)
	assert.Equal(t, domain.EventCommit, commit.Type)
}
