package objectpool

import (
	"sync/atomic"

	"github.com/goccy/go-json"
)

// Stats 对象池统计快照
type Stats struct {
	Handle         PoolHandle `json:"handle"` // 同名对象池用handle区分
	Keyword        string     `json:"keyword"`
	Prototype      string     `json:"prototype"`
	Explicit       bool       `json:"explicit"` // 是否是配置创建的对象池
	CountFree      int64      `json:"count_free"`
	CountInUse     int64      `json:"count_in_use"`
	CountTotal     int64      `json:"count_total"`
	TotalCreated   int64      `json:"total_created"`
	TotalDestroyed int64      `json:"total_destroyed"`
	Requests       int64      `json:"requests"`
	Reuses         int64      `json:"reuses"` // 从空闲列表取出的次数
	Releases       int64      `json:"releases"`
	CullingActive  bool       `json:"culling_active"`
	ReclaimerState string     `json:"reclaimer_state"`
}

func (s *Stats) String() string {
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(data)
}

// statsRecorder 对象池计数的原子镜像,供其他goroutine读取
type statsRecorder struct {
	free      atomic.Int64
	inUse     atomic.Int64
	created   atomic.Int64
	destroyed atomic.Int64
	requests  atomic.Int64
	reuses    atomic.Int64
	releases  atomic.Int64
	culling   atomic.Bool
	state     atomic.Int32
}

func (s *statsRecorder) setCounts(free, inUse int) {
	s.free.Store(int64(free))
	s.inUse.Store(int64(inUse))
}

func (s *statsRecorder) snapshot() Stats {
	free := s.free.Load()
	inUse := s.inUse.Load()
	return Stats{
		CountFree:      free,
		CountInUse:     inUse,
		CountTotal:     free + inUse,
		TotalCreated:   s.created.Load(),
		TotalDestroyed: s.destroyed.Load(),
		Requests:       s.requests.Load(),
		Reuses:         s.reuses.Load(),
		Releases:       s.releases.Load(),
		CullingActive:  s.culling.Load(),
		ReclaimerState: ReclaimerState(s.state.Load()).String(),
	}
}
