// Package main
// @Title  对象池演示
// @Description  周期性发射子弹并延迟回收,观察对象池的复用和回收
// @Author  yr  2024/12/4
// @Update  yr  2026/10/16
package main

import (
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/njtc406/emberpool/engine/pkg/dto"
	inf "github.com/njtc406/emberpool/engine/pkg/interfaces"
	"github.com/njtc406/emberpool/engine/pkg/node"
	"github.com/njtc406/emberpool/engine/pkg/objectpool"
	"github.com/njtc406/emberpool/engine/pkg/utils/log"
	"github.com/njtc406/emberpool/engine/pkg/utils/version"
	"github.com/spf13/cobra"
)

const demoVersion = "0.1.0"

type Bullet struct {
	objectpool.Object
	fired int
}

func (b *Bullet) InitFromPool() {
	b.fired++
}

func (b *Bullet) DeactivateBeforeRelease() {
	b.SetTransform(dto.Vector3Zero, dto.QuaternionIdentity)
}

// Spark 没有配置,第一次使用时自动创建对象池
type Spark struct {
	objectpool.Object
}

var (
	bulletProto = objectpool.NewPrototype("Bullet", func() objectpool.IInstance { return &Bullet{} })
	sparkProto  = objectpool.NewPrototype("Spark", func() objectpool.IInstance { return &Spark{} })
)

type flags struct {
	confPath string
	burst    int
	interval time.Duration
	lifetime time.Duration
}

func fire(c *node.Context, f *flags) {
	for i := 0; i < f.burst; i++ {
		pos := dto.Vector3{X: rand.Float32() * 10, Y: 1, Z: rand.Float32() * 10}
		b, err := objectpool.InstantiateAs[*Bullet](c.Registry, bulletProto, pos, dto.QuaternionIdentity)
		if err != nil {
			continue
		}
		if _, err = c.Registry.ReleaseDelayed(b, f.lifetime); err != nil {
			log.SysLogger.Warnf("delay release bullet failed: %v", err)
		}

		// 每颗子弹附带一个火花,下一帧回收
		spark, err := c.Registry.Instantiate(sparkProto, pos, dto.QuaternionIdentity)
		if err == nil {
			c.Dispatcher.AfterFunc(0, "spark.release", func(inf.ITimer) {
				_ = c.Registry.Release(spark)
			})
		}
	}
}

func main() {
	f := &flags{}
	root := &cobra.Command{
		Use:   "pool_demo",
		Short: "EmberPool demo node",
		Long:  `pool_demo registers the configured pools, fires bursts of pooled bullets and releases them after their lifetime.`,
		Run: func(cmd *cobra.Command, args []string) {
			node.Start(
				node.WithName("pool_demo"),
				node.WithVersion(demoVersion),
				node.WithConfPath(f.confPath),
				node.WithPrototypes(bulletProto, sparkProto),
				node.WithReady(func(c *node.Context) {
					c.Dispatcher.TickerFunc(f.interval, "demo.fire", func(inf.ITimer) {
						fire(c, f)
					})
				}),
			)
		},
	}
	root.Flags().StringVarP(&f.confPath, "conf", "c", "./configs/pool_demo", "config directory containing node.yaml")
	root.Flags().IntVar(&f.burst, "burst", 20, "bullets fired per interval")
	root.Flags().DurationVar(&f.interval, "interval", 200*time.Millisecond, "fire interval")
	root.Flags().DurationVar(&f.lifetime, "lifetime", 2*time.Second, "bullet lifetime before release")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pool_demo v%s (EmberPool v%s)\n", demoVersion, version.Version)
			fmt.Printf("Go version: %s\n", runtime.Version())
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
