package metrics

// Label 指标标签，为指标添加维度信息
//
// 标签值应保持低基数：例如 node id 来源（mac/ip/static/random）适合作为标签，
// 单个 ID 值则不适合。
type Label struct {
	Key   string
	Value string
}

// L 便捷构造函数，创建一个 Label 实例
//
//	counter.Inc(ctx, metrics.L("source", "mac"))
func L(key, value string) Label {
	return Label{
		Key:   key,
		Value: value,
	}
}
