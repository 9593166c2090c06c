package daykey

// 日键（day key）是连续打卡判定的最小单位：UTC 日历日，格式 2006-01-02。
// 全系统只有这一条陈旧判定规则，不允许各处自行比较日期。

import "time"

const layout = "2006-01-02"

// Key 返回时间戳对应的 UTC 日键，与本地时区无关。
func Key(t time.Time) string {
	return t.UTC().Format(layout)
}

// YesterdayKey 返回时间戳 UTC 日历日的前一天的日键。
func YesterdayKey(t time.Time) string {
	return t.UTC().AddDate(0, 0, -1).Format(layout)
}

// IsStale 判断上次打卡的日键相对 now 是否已经断签。
// lastKey 为空表示从未打过卡，无从判定，返回 false；
// 其余情况只有 {今天, 昨天} 两个值不算断签，比昨天更早或来自未来的日键都算。
func IsStale(lastKey string, now time.Time) bool {
	if lastKey == "" {
		return false
	}
	return lastKey != Key(now) && lastKey != YesterdayKey(now)
}
