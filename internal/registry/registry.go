package registry

// 注册表持有进程内全部参与者状态，是单实例的事实来源。
// 打卡请求和失联巡检跑在不同的 goroutine 上，所有读改写都必须
// 在注册表的写锁内完成：巡检读到旧状态后，后续的打卡不会被它覆盖。

import (
	"strings"
	"sync"
	"unicode/utf8"

	"Lifeline/internal/model"
	pkgerrors "Lifeline/pkg/errors"
)

type Registry struct {
	mu           sync.RWMutex
	participants map[string]*model.Participant
	order        []string // 插入顺序，保证遍历结果可复现
}

func New() *Registry {
	return &Registry{
		participants: make(map[string]*model.Participant),
	}
}

// GetOrCreate 按 ID 查找参与者，不存在则惰性创建（status=unknown、零连签、空历史）。
// 传入非空 name 时更新显示名；不碰连签和状态，这只是读取或建档，不是打卡。
// ID 去空白后为空返回 InvalidParticipantID。返回深拷贝。
func (r *Registry) GetOrCreate(id, name string) (model.Participant, error) {
	return r.Mutate(id, name, nil)
}

// Mutate 在写锁内完成 get-or-create，然后对活体记录执行 fn（可为 nil）。
// 返回变更后的深拷贝。
func (r *Registry) Mutate(id, name string, fn func(p *model.Participant)) (model.Participant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Participant{}, pkgerrors.InvalidParticipantID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[id]
	if !ok {
		p = &model.Participant{
			ID:     id,
			Status: model.StatusUnknown,
		}
		r.participants[id] = p
		r.order = append(r.order, id)
	}

	if name = normalizeName(name); name != "" {
		p.Name = name
	}

	if fn != nil {
		fn(p)
	}

	return p.Clone(), nil
}

// Get 按 ID 查找，不创建。找不到时 ok 为 false。
func (r *Registry) Get(id string) (model.Participant, bool) {
	id = strings.TrimSpace(id)

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.participants[id]
	if !ok {
		return model.Participant{}, false
	}
	return p.Clone(), true
}

// Range 在写锁内按插入顺序遍历每个参与者恰好一次。
// 巡检的状态迁移在回调里完成，因而与并发打卡互斥。
func (r *Registry) Range(fn func(p *model.Participant)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		fn(r.participants[id])
	}
}

// Snapshot 返回全部参与者的深拷贝，按插入顺序。
func (r *Registry) Snapshot() []model.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.participants[id].Clone())
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.participants)
}

// Seed 用镜像库里的快照预热注册表（启动时一次），已存在的活体记录不覆盖。
func (r *Registry) Seed(ps []model.Participant) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	seeded := 0
	for i := range ps {
		id := strings.TrimSpace(ps[i].ID)
		if id == "" {
			continue
		}
		if _, ok := r.participants[id]; ok {
			continue
		}
		cp := ps[i].Clone()
		cp.ID = id
		r.participants[id] = &cp
		r.order = append(r.order, id)
		seeded++
	}
	return seeded
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > model.MaxNameLength {
		runes := []rune(name)
		name = string(runes[:model.MaxNameLength])
	}
	return name
}
