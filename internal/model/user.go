package model

// UserRole 角色由外部认证服务签发在 JWT 中，本服务只做校验
type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// IsStaff 教师与管理员可以查看完整题目与参考答案
func (r UserRole) IsStaff() bool {
	return r == Teacher || r == Admin
}
