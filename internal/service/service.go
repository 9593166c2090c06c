package service

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"Lifeline/internal/model"
	"Lifeline/internal/registry"
	"Lifeline/pkg/snowflake"
)

// Broadcaster 广播汇，内存状态变更提交后向外扇出。
// 投递语义（至少一次、乱序）是汇的事情；实现不许阻塞调用方，失败只记日志。
type Broadcaster interface {
	ParticipantUpdated(p model.Participant, now time.Time)
	DangerZonesUpdated(zones []model.DangerZone, newMissing []string, sweptAt time.Time)
	ChatPosted(msg model.ChatMessage)
	ThreatReported(t model.ThreatReport)
	SOSChanged(a model.SOSAlert)
}

// NopBroadcaster 空实现，测试用
type NopBroadcaster struct{}

func (NopBroadcaster) ParticipantUpdated(model.Participant, time.Time)             {}
func (NopBroadcaster) DangerZonesUpdated([]model.DangerZone, []string, time.Time)  {}
func (NopBroadcaster) ChatPosted(model.ChatMessage)                                {}
func (NopBroadcaster) ThreatReported(model.ThreatReport)                           {}
func (NopBroadcaster) SOSChanged(model.SOSAlert)                                   {}

var (
	defaultRegistry *registry.Registry
	registryOnce    sync.Once

	defaultBroadcaster Broadcaster = NopBroadcaster{}
)

// Registry 返回进程级参与者注册表单例。
func Registry() *registry.Registry {
	registryOnce.Do(func() {
		defaultRegistry = registry.New()
	})
	return defaultRegistry
}

// SetBroadcaster 注入生产环境的广播实现（server/worker 启动时调用一次）。
func SetBroadcaster(b Broadcaster) {
	if b != nil {
		defaultBroadcaster = b
	}
}

// nextID 生成带前缀的业务 ID。snowflake 未初始化时退回 uuid，该路径只在测试里出现。
func nextID(prefix string) string {
	if id, err := snowflake.NextID(); err == nil {
		return fmt.Sprintf("%s_%d", prefix, id)
	}
	return prefix + "_" + uuid.NewString()
}

// sanitizeLocation 校验坐标：两个分量都必须是有限数且在经纬度范围内，
// 否则按无效丢弃（不是错误）。
func sanitizeLocation(loc *model.Location) *model.Location {
	if loc == nil {
		return nil
	}
	if math.IsNaN(loc.Lat) || math.IsInf(loc.Lat, 0) ||
		math.IsNaN(loc.Lng) || math.IsInf(loc.Lng, 0) {
		return nil
	}
	if loc.Lat < -90 || loc.Lat > 90 || loc.Lng < -180 || loc.Lng > 180 {
		return nil
	}
	out := *loc
	return &out
}
