package stepcounter

// StepStore 定义持久化存储的最小契约：把一段增量步数计入某一天。
// 存储本身不去重，"同一笔增量绝不调用两次" 由 SessionAccountant 保证。
// 具体实现见 Store 子包 (MQTT 上云 / Postgres 日汇总 / 内存测试桩)。
type StepStore interface {
	AddSteps(delta int, date string) error
}
