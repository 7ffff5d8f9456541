package node

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/njtc406/emberpool/engine/pkg/config"
	"github.com/njtc406/emberpool/engine/pkg/dto"
	"github.com/njtc406/emberpool/engine/pkg/objectpool"
	"github.com/njtc406/emberpool/engine/pkg/utils/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orb struct {
	objectpool.Object
}

var orbProto = objectpool.NewPrototype("orb", func() objectpool.IInstance { return &orb{} })

func testConf() *config.Config {
	return &config.Config{
		NodeConf: &config.NodeConf{
			SystemStatus:      config.Release,
			PVPath:            os.TempDir(),
			TickInterval:      time.Millisecond,
			PostSize:          16,
			ActiveContainer:   "Active",
			InactiveContainer: "Inactive",
			WarnWindow:        time.Minute,
		},
		SystemLogger: &log.LoggerConf{},
		Pools: []*config.PoolEntry{
			{Prototype: "orb", PreloadCount: 2},
			{Prototype: "ghost", PreloadCount: 5},
		},
	}
}

func TestSetupRegistersConfiguredPools(t *testing.T) {
	var buf bytes.Buffer
	c, err := Setup(newParam([]StartOption{
		WithConf(testConf()),
		WithLogger(log.New(log.WithOut(&buf))),
		WithPrototypes(orbProto),
	}))
	require.NoError(t, err)

	p, ok := c.Registry.Lookup(orbProto)
	require.True(t, ok)
	assert.True(t, p.IsExplicit())
	assert.Equal(t, 2, p.CountFree())
	assert.Len(t, c.Registry.Pools(), 1)

	idle, ok := c.Inactive.Find("orb")
	require.True(t, ok)
	assert.Equal(t, 2, idle.Count())
	assert.Contains(t, buf.String(), "prototype not found")
}

func TestSetupLoadsConfPath(t *testing.T) {
	dir := t.TempDir()
	yaml := `
NodeConf:
  PVPath: ` + dir + `
Pools:
  - Prototype: orb
    PreloadCount: 4
    CullEnabled: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node.yaml"), []byte(yaml), 0644))

	c, err := Setup(newParam([]StartOption{
		WithConfPath(dir),
		WithLogger(log.New(log.WithOut(io.Discard))),
		WithPrototypes(orbProto),
	}))
	require.NoError(t, err)
	p, ok := c.Registry.LookupKeyword("orb")
	require.True(t, ok)
	assert.Equal(t, 4, p.CountFree())
	assert.True(t, p.Conf().CullEnabled)
}

func TestSetupBadConfPath(t *testing.T) {
	_, err := Setup(newParam([]StartOption{WithConfPath(filepath.Join(t.TempDir(), "nope"))}))
	assert.Error(t, err)
}

func TestRunReadyOnLoop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conf := testConf()
	conf.NodeConf.MonitorAddr = "127.0.0.1:0"
	conf.NodeConf.StatsReportSpec = "@every 1s"

	var (
		got     objectpool.IInstance
		readyOK bool
	)
	err := Run(ctx,
		WithConf(conf),
		WithLogger(log.New(log.WithOut(io.Discard))),
		WithPrototypes(orbProto),
		WithReady(func(c *Context) {
			readyOK = c.Registry != nil && c.Dispatcher != nil
			inst, err := c.Registry.Instantiate(orbProto, dto.Vector3{X: 1}, dto.QuaternionIdentity)
			if err == nil {
				got = inst
			}
			cancel()
		}),
	)
	require.NoError(t, err)
	assert.True(t, readyOK)
	require.NotNil(t, got)
	assert.Equal(t, dto.Vector3{X: 1}, got.(*orb).GetPosition())
	assert.Equal(t, context.Canceled, ctx.Err())
}

func TestStartOptions(t *testing.T) {
	var out bytes.Buffer
	p := newParam([]StartOption{
		WithName("demo"),
		WithVersion(""),
		WithOutput(&out),
		WithPrototypes(orbProto),
		WithReady(func(*Context) {}, func(*Context) {}),
	})
	assert.Equal(t, "demo", p.Name)
	assert.NotEmpty(t, p.Version)
	assert.Same(t, orbProto, p.Prototypes["orb"])
	assert.Len(t, p.Ready, 2)
	assert.True(t, strings.HasPrefix(p.Version, "0."))
}
