package Store

import (
	"sync"
)

// AddCall 记录一次 AddSteps 调用 (测试断言用)
type AddCall struct {
	Delta int
	Date  string
}

// MemoryStore 是 StepStore 的内存实现。
// 单元测试和 benchmark 用它断言 "同一笔增量绝不写两次"，
// 也可以注入错误模拟落库失败
type MemoryStore struct {
	mu     sync.Mutex
	totals map[string]int
	calls  []AddCall
	err    error
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		totals: make(map[string]int),
	}
}

// AddSteps 把增量计入指定日期
func (m *MemoryStore) AddSteps(delta int, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.totals[date] += delta
	m.calls = append(m.calls, AddCall{Delta: delta, Date: date})
	return nil
}

// SetError 注入错误：之后的 AddSteps 全部失败，传 nil 恢复
func (m *MemoryStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Total 返回某天的累计步数
func (m *MemoryStore) Total(date string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals[date]
}

// Calls 返回所有成功的 AddSteps 调用记录
func (m *MemoryStore) Calls() []AddCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AddCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount 返回成功调用次数
func (m *MemoryStore) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
