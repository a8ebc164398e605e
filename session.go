package stepcounter

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStatus 会话状态
type SessionStatus int

const (
	// Idle 尚未开始计步
	Idle SessionStatus = iota
	// Counting 计步中
	Counting
	// Stopped 已停止 (终态，直到下一次 Start)
	Stopped
)

func (s SessionStatus) String() string {
	switch s {
	case Counting:
		return "Counting"
	case Stopped:
		return "Stopped"
	default:
		return "Idle"
	}
}

// SessionAccountant 管理会话生命周期，把确认的步伐累积成会话增量，
// 并保证每笔增量 "至少送达一次存储、本地绝不重复计入"：
//
//   - flushed 标志位只在出现新增量时才复位，Stop 和检查点共用同一个
//     守卫，避免 "显式停止已落库之后组件销毁又落一次" 的重复保存。
//   - sessionStartCount 只有在存储确认成功后才前移，落库失败时
//     增量原样保留，下一个触发点重试同一笔。
//   - 落库期间到达的新步伐不会被这次落库吞掉：成功时按本次增量
//     前移起点，而不是直接对齐当前计数。
type SessionAccountant struct {
	cfg   *Config
	store StepStore

	mu sync.Mutex

	// Session 状态
	status            SessionStatus
	sessionID         uuid.UUID
	sessionStartCount int  // 上一次成功落库后的计数基线
	currentCount      int  // 当前累计计数
	flushed           bool // 当前增量是否已经成功落库

	// 落库串行锁：同一时刻最多一次落库在途。
	// Stop 的最终落库在这里等待进行中的检查点落库结束，
	// 那笔失败了就原地接着重试，"有人在落" 不等于 "已经落完"
	flushMu sync.Mutex

	lastCheckpoint time.Time

	// OnStep 每确认一步回调一次 (震动/界面提示)，即发即弃，失败忽略
	OnStep func()

	// 时钟注入点，测试时可替换
	now func() time.Time
}

// NewSessionAccountant 创建会话记账器
func NewSessionAccountant(cfg *Config, store StepStore) *SessionAccountant {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &SessionAccountant{
		cfg:   cfg,
		store: store,
		now:   time.Now,
	}
}

// Start 开始一个计步会话：Idle/Stopped -> Counting
// 捕获当前计数作为会话基线，复位落库标志
func (a *SessionAccountant) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status == Counting {
		return fmt.Errorf("session already counting")
	}

	a.status = Counting
	a.sessionID = uuid.New()
	a.sessionStartCount = a.currentCount
	a.flushed = false
	a.lastCheckpoint = a.now()

	fmt.Printf("[SESSION] started %s (base count: %d)\n", a.sessionID, a.sessionStartCount)
	return nil
}

// OnStepEvent 处理一次确认的步伐。只在 Counting 状态下生效。
// 增量跨过检查点步数倍数、或距上次检查点超过时间间隔时，
// 触发一次异步检查点落库 (已落库的增量不会重复触发)。
func (a *SessionAccountant) OnStepEvent() {
	a.mu.Lock()

	if a.status != Counting {
		a.mu.Unlock()
		return
	}

	a.currentCount++
	// 出现新增量，落库标志复位
	a.flushed = false

	delta := a.currentCount - a.sessionStartCount
	byCount := a.cfg.Session.CheckpointSteps > 0 && delta%a.cfg.Session.CheckpointSteps == 0
	byTime := a.cfg.Session.CheckpointInterval > 0 && a.now().Sub(a.lastCheckpoint) >= a.cfg.Session.CheckpointInterval

	notify := a.OnStep
	a.mu.Unlock()

	// 通知是即发即弃的副作用，放在锁外，回调崩溃也不影响计数
	if notify != nil {
		func() {
			defer func() { _ = recover() }()
			notify()
		}()
	}

	if byCount || byTime {
		go a.checkpoint()
	}
}

// checkpoint 检查点落库：和 Stop 的最终落库共用 flush，
// 已成功落库的增量在这里是空操作
func (a *SessionAccountant) checkpoint() {
	a.mu.Lock()
	a.lastCheckpoint = a.now()
	a.mu.Unlock()

	if err := a.Flush(); err != nil {
		// 软失败：增量保留，下一个检查点或 Stop 时重试
		log.Printf("[SESSION] checkpoint flush failed (will retry): %v", err)
	}
}

// Stop 停止会话：Counting -> Stopped，并做最终落库。
// 关键守卫：当前增量已经落过库 (flushed) 时不再重复调用存储。
func (a *SessionAccountant) Stop() error {
	a.mu.Lock()
	if a.status != Counting {
		a.mu.Unlock()
		return fmt.Errorf("session not counting (status: %s)", a.status)
	}
	a.status = Stopped
	id := a.sessionID
	a.mu.Unlock()

	fmt.Printf("[SESSION] stopped %s (count: %d)\n", id, a.CurrentCount())

	if err := a.Flush(); err != nil {
		log.Printf("[SESSION] final flush failed: %v", err)
		return err
	}
	return nil
}

// Flush 把当前增量写入存储。
//   - 增量为零或已落库：空操作
//   - 已有落库进行中：等它结束再重新判断 (绝不并发两次落库)，
//     那笔失败了就由本次接着落同一笔
//   - 成功：基线按本次增量前移，落库期间新到的步伐留作下一笔
//   - 失败：状态原样保留，下一个触发点重试同一笔 (at-least-once)
func (a *SessionAccountant) Flush() error {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	a.mu.Lock()
	delta := a.currentCount - a.sessionStartCount
	if delta <= 0 || a.flushed {
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()

	// 存储调用可能是网络 IO，放在状态锁外，不阻塞采样链路
	date := a.now().Format("2006-01-02")
	err := a.store.AddSteps(delta, date)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		return fmt.Errorf("addSteps(%d, %s) failed: %v", delta, date, err)
	}

	// 成功：只前移本次落库覆盖的增量
	a.sessionStartCount += delta
	a.flushed = a.currentCount == a.sessionStartCount
	fmt.Printf("[SESSION] flushed %d steps for %s\n", delta, date)
	return nil
}

// Reset 显式清零计数。
// 计步中禁止清零：未落库的增量会丢失，必须先 Stop
func (a *SessionAccountant) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status == Counting {
		return fmt.Errorf("cannot reset while counting")
	}
	if a.currentCount != a.sessionStartCount {
		return fmt.Errorf("cannot reset with %d unflushed steps", a.currentCount-a.sessionStartCount)
	}

	a.currentCount = 0
	a.sessionStartCount = 0
	a.flushed = false
	fmt.Println("[SESSION] counters reset")
	return nil
}

// Status 返回当前会话状态
func (a *SessionAccountant) Status() SessionStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// CurrentCount 返回当前累计计数
func (a *SessionAccountant) CurrentCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentCount
}

// PendingDelta 返回尚未落库的增量
func (a *SessionAccountant) PendingDelta() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentCount - a.sessionStartCount
}
