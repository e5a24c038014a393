// Package scheduling 校园生活排程核心：民用日历时钟、课程时段冲突检测、
// 待办状态机与待办聚合。所有函数均为纯函数，不持有存储与定时器。
package scheduling

import "time"

// TaiwanLocation 固定民用时区（台湾，UTC+8）。
// 显式构造，不依赖宿主机的 tzdata 或本地时区设置。
var TaiwanLocation = time.FixedZone("Asia/Taipei", 8*60*60)

// CivilClock 锚定在单一固定时区的墙上时钟
type CivilClock struct {
	loc *time.Location
	now func() time.Time
}

// NewCivilClock 创建时钟；now 为 nil 时使用 time.Now
func NewCivilClock(loc *time.Location, now func() time.Time) *CivilClock {
	if loc == nil {
		loc = TaiwanLocation
	}
	if now == nil {
		now = time.Now
	}
	return &CivilClock{loc: loc, now: now}
}

// TaiwanClock 使用系统时钟与 UTC+8 的默认时钟
func TaiwanClock() *CivilClock {
	return NewCivilClock(TaiwanLocation, time.Now)
}

// FixedClock 返回始终停在 t 的时钟（测试与一次性计算使用）
func FixedClock(t time.Time) *CivilClock {
	return NewCivilClock(TaiwanLocation, func() time.Time { return t })
}

// Location 时钟所在时区
func (c *CivilClock) Location() *time.Location {
	return c.loc
}

// Now 当前时刻（以民用时区表示）
func (c *CivilClock) Now() time.Time {
	return c.now().In(c.loc)
}

// StartOfDay 返回 d 所在民用日的零点
func (c *CivilClock) StartOfDay(d time.Time) time.Time {
	y, m, day := d.In(c.loc).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, c.loc)
}

// IsSameCivilDay a 与 b 是否落在同一个民用日
func (c *CivilClock) IsSameCivilDay(a, b time.Time) bool {
	ay, am, ad := a.In(c.loc).Date()
	by, bm, bd := b.In(c.loc).Date()
	return ay == by && am == bm && ad == bd
}

// IsToday d 是否为今天
func (c *CivilClock) IsToday(d time.Time) bool {
	return c.IsSameCivilDay(d, c.Now())
}

// IsTomorrow d 是否为明天（按日历加一天，而非加 24 小时）
func (c *CivilClock) IsTomorrow(d time.Time) bool {
	return c.IsSameCivilDay(d, c.Now().AddDate(0, 0, 1))
}

// DaysDifference 从 from 所在民用日到 to 所在民用日跨越的日界数（有符号）。
//
// 按日期差计算，不是经过毫秒数除以 24 小时：
//   - 今天 23:59 → 明天 00:01 为 1 天
//   - 今天 00:01 → 今天 23:59 为 0 天
func (c *CivilClock) DaysDifference(from, to time.Time) int {
	fy, fm, fd := from.In(c.loc).Date()
	ty, tm, td := to.In(c.loc).Date()
	// 日期投影到 UTC 零点后相减，结果恒为 24h 的整数倍
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
