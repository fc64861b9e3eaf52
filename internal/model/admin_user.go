package model

import (
	"golang.org/x/crypto/bcrypt"
)

// AdminUser 管理员账号 (服务启动时幂等初始化，接口层不提供增删)
type AdminUser struct {
	ID           uint   `gorm:"primarykey"`
	Username     string `gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

// SetPassword 加密并设置密码
func (u *AdminUser) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword 校验密码
func (u *AdminUser) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
