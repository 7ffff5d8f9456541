package monitor

import (
	"bytes"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/njtc406/emberpool/engine/pkg/dto"
	"github.com/njtc406/emberpool/engine/pkg/objectpool"
	"github.com/njtc406/emberpool/engine/pkg/utils/log"
	"github.com/njtc406/emberpool/engine/pkg/utils/timer"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gem struct {
	objectpool.Object
}

type fixture struct {
	reg   *objectpool.Registry
	disp  *timer.Dispatcher
	now   time.Time
	proto *objectpool.Prototype
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)}
	logger := log.New(log.WithOut(io.Discard))
	f.disp = timer.NewDispatcher(timer.WithClock(func() time.Time { return f.now }), timer.WithLogger(logger))
	reg, err := objectpool.NewRegistry(f.disp, objectpool.WithLogger(logger))
	require.NoError(t, err)
	f.reg = reg

	f.proto = objectpool.NewPrototype("gem", func() objectpool.IInstance { return &gem{} })
	require.NoError(t, reg.RegisterExplicit(&objectpool.PoolConf{Prototype: f.proto, PreloadCount: 3}))
	_, err = reg.Instantiate(f.proto, dto.Vector3Zero, dto.QuaternionIdentity)
	require.NoError(t, err)
	return f
}

func TestCollector(t *testing.T) {
	f := newFixture(t)
	c := NewCollector("test", f.reg)

	assert.Equal(t, 9, testutil.CollectAndCount(c))
	expected := `
# HELP test_pool_free Instances waiting in the free set.
# TYPE test_pool_free gauge
test_pool_free{handle="1",pool="gem"} 2
# HELP test_pool_in_use Instances handed out and not yet released.
# TYPE test_pool_in_use gauge
test_pool_in_use{handle="1",pool="gem"} 1
# HELP test_pool_reuses_total Requests served from the free set.
# TYPE test_pool_reuses_total counter
test_pool_reuses_total{handle="1",pool="gem"} 1
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"test_pool_free", "test_pool_in_use", "test_pool_reuses_total"))
}

func TestCollectorSharedKeyword(t *testing.T) {
	f := newFixture(t)
	other := objectpool.NewPrototype("gem", func() objectpool.IInstance { return &gem{} })
	_, err := f.reg.Instantiate(other, dto.Vector3Zero, dto.QuaternionIdentity)
	require.NoError(t, err)

	c := NewCollector("test", f.reg)
	expected := `
# HELP test_pool_total Instances managed by the pool.
# TYPE test_pool_total gauge
test_pool_total{handle="1",pool="gem"} 3
test_pool_total{handle="2",pool="gem"} 1
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "test_pool_total"))

	s := NewServer(&Conf{}, f.reg, log.New(log.WithOut(io.Discard)), gin.TestMode)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `emberpool_pool_in_use{handle="2",pool="gem"} 1`)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestServerPoolSharedKeyword(t *testing.T) {
	s, f := newTestServer(t, &Conf{})
	other := objectpool.NewPrototype("gem", func() objectpool.IInstance { return &gem{} })
	_, err := f.reg.Instantiate(other, dto.Vector3Zero, dto.QuaternionIdentity)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pools/gem", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"handle":1`)
	assert.Contains(t, w.Body.String(), `"handle":2`)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pools/gem?handle=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var st objectpool.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, objectpool.PoolHandle(2), st.Handle)
	assert.EqualValues(t, 1, st.CountInUse)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pools/gem?handle=9", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func newTestServer(t *testing.T, conf *Conf) (*Server, *fixture) {
	f := newFixture(t)
	return NewServer(conf, f.reg, log.New(log.WithOut(io.Discard)), gin.TestMode), f
}

func TestServerPools(t *testing.T) {
	s, _ := newTestServer(t, &Conf{})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pools", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var stats []objectpool.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, "gem", stats[0].Keyword)
	assert.EqualValues(t, 1, stats[0].CountInUse)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pools/gem", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count_free":2`)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pools/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServerMetrics(t *testing.T) {
	s, _ := newTestServer(t, &Conf{Namespace: "game"})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `game_pool_total{handle="1",pool="gem"} 3`)
}

func TestServerBasicAuth(t *testing.T) {
	s, _ := newTestServer(t, &Conf{Accounts: map[string]string{"admin": "secret"}})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pools", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/pools", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:secret")))
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServerStartStop(t *testing.T) {
	s, _ := newTestServer(t, &Conf{Addr: "127.0.0.1:0"})
	require.NoError(t, s.Start())
	assert.Error(t, s.Start())

	resp, err := http.Get("http://" + s.Addr() + "/pools")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	s.Stop()
	s.Stop()
}

func TestReporter(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	r := NewReporter(f.reg, log.New(log.WithOut(&buf)))

	require.NoError(t, r.Start(f.disp, "@every 10s"))
	f.now = f.now.Add(10 * time.Second)
	f.disp.Tick()
	assert.Contains(t, buf.String(), "gem")
	assert.Contains(t, buf.String(), "process rss")

	r.Stop()
	buf.Reset()
	f.now = f.now.Add(10 * time.Second)
	f.disp.Tick()
	assert.Empty(t, buf.String())

	assert.NoError(t, r.Start(f.disp, ""))
	assert.Error(t, r.Start(f.disp, "every day"))
}
