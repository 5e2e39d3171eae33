package util

import (
	"strconv"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// ParseIntDefault 解析整数，空串或非法值返回 def
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// ParseFloatDefault 解析浮点数，空串或非法值返回 def
func ParseFloatDefault(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// ParsePage 分页参数：page 从 1 开始，limit 缺省 20，上限 100
func ParsePage(pageStr, limitStr string) (int, int) {
	page := ParseIntDefault(pageStr, 1)
	if page < 1 {
		page = 1
	}
	limit := ParseIntDefault(limitStr, 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
