// Package timex 提供数据库与 JSON 友好的时间类型
package timex

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ISOLayout is the UTC millisecond layout produced by JavaScript's Date.toISOString.
// ISOLayout 与 JavaScript Date.toISOString 一致的 UTC 毫秒格式
const ISOLayout = "2006-01-02T15:04:05.000Z"

// Time 包装 time.Time，JSON 输出为 ISOLayout，零值输出 null
type Time time.Time

// Now 当前时间
func Now() Time {
	return Time(time.Now())
}

// ISO 以 ISOLayout 格式化
func (t Time) ISO() string {
	return time.Time(t).UTC().Format(ISOLayout)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if time.Time(t).IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.ISO() + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*t = Time{}
		return nil
	}
	if len(s) < 2 {
		return fmt.Errorf("timex: invalid time %q", s)
	}
	parsed, err := time.Parse(time.RFC3339Nano, s[1:len(s)-1])
	if err != nil {
		return err
	}
	*t = Time(parsed)
	return nil
}

// Value 实现 driver.Valuer
func (t Time) Value() (driver.Value, error) {
	tt := time.Time(t)
	if tt.IsZero() {
		return nil, nil
	}
	return tt, nil
}

// Scan 实现 sql.Scanner
func (t *Time) Scan(v any) error {
	switch val := v.(type) {
	case nil:
		*t = Time{}
	case time.Time:
		*t = Time(val)
	case string:
		return t.parseString(val)
	case []byte:
		return t.parseString(string(val))
	default:
		return fmt.Errorf("timex: cannot scan %T", v)
	}
	return nil
}

func (t *Time) parseString(s string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Time(parsed)
			return nil
		}
	}
	return fmt.Errorf("timex: cannot parse %q", s)
}

func (t Time) IsZero() bool    { return time.Time(t).IsZero() }
func (t Time) Unix() int64      { return time.Time(t).Unix() }
func (t Time) UnixMilli() int64 { return time.Time(t).UnixMilli() }
func (t Time) UnixMicro() int64 { return time.Time(t).UnixMicro() }
func (t Time) UnixNano() int64  { return time.Time(t).UnixNano() }
