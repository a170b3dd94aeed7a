package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount 金额封装，底层为任意精度十进制数。
// 所有入库金额均为十进制字符串，比较与求和禁止经过浮点数。
type Amount struct {
	d decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Zero 零金额
func Zero() Amount {
	return Amount{d: decimal.Zero}
}

// Parse 解析十进制字符串金额
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("无效的金额格式 %q: %w", s, err)
	}
	return Amount{d: d}, nil
}

// ParseNullable 解析可空金额，nil 或空字符串视为 0
func ParseNullable(s *string) (Amount, error) {
	if s == nil || *s == "" {
		return Zero(), nil
	}
	return Parse(*s)
}

// MustParse 解析金额，格式非法时 panic，仅用于常量与测试
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add 加法
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// Sub 减法
func (a Amount) Sub(b Amount) Amount {
	return Amount{d: a.d.Sub(b.d)}
}

// PercentOf 按百分比取值：a * p / 100
func (a Amount) PercentOf(p Amount) Amount {
	return Amount{d: a.d.Mul(p.d).Div(hundred)}
}

// Cmp 比较，返回 -1/0/1
func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(b.d)
}

// GreaterThan a > b
func (a Amount) GreaterThan(b Amount) bool {
	return a.d.GreaterThan(b.d)
}

// LessThan a < b
func (a Amount) LessThan(b Amount) bool {
	return a.d.LessThan(b.d)
}

// IsNegative a < 0
func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

// IsPositive a > 0
func (a Amount) IsPositive() bool {
	return a.d.IsPositive()
}

// IsZero a == 0
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// String 输出规范化十进制字符串
func (a Amount) String() string {
	return a.d.String()
}
