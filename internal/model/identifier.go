package model

import (
	"errors"
	"fmt"
	"strings"
)

// IdentifierType 参与者标识类型（封闭枚举）
// 所有归一化与账号解析都必须对三个取值穷举分支
type IdentifierType string

const (
	IdentifierEmail       IdentifierType = "email"
	IdentifierUsername    IdentifierType = "username"
	IdentifierStudentCode IdentifierType = "student_code"
)

// ErrInvalidIdentifierType 未知的标识类型
var ErrInvalidIdentifierType = errors.New("无效的标识类型")

// ParseIdentifierType 校验并返回标识类型
func ParseIdentifierType(s string) (IdentifierType, error) {
	switch IdentifierType(s) {
	case IdentifierEmail, IdentifierUsername, IdentifierStudentCode:
		return IdentifierType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifierType, s)
	}
}

// Normalize 按标识类型归一化取值
// 邮箱/用户名：去空白 + 小写；学号：去空白 + 大写
func (t IdentifierType) Normalize(value string) (string, error) {
	v := strings.TrimSpace(value)
	switch t {
	case IdentifierEmail, IdentifierUsername:
		return strings.ToLower(v), nil
	case IdentifierStudentCode:
		return strings.ToUpper(v), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifierType, string(t))
	}
}
