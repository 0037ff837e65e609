package model

// User 用户表 — 对应 users
// 由身份服务维护，本服务只读（按标识解析注册账号）
type User struct {
	UserID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Username    string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"username"`
	Email       string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	StudentCode string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"student_code"`
	Role        string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
