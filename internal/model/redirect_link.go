package model

// RedirectLink 分流链接模型
// ClickID 是对外暴露的 13 位数字令牌，由服务端生成，全局唯一
type RedirectLink struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	ClickID     int64  `gorm:"uniqueIndex;not null" json:"clickId"`
	RedirectURL string `gorm:"type:text;not null" json:"redirectUrl"`
	UserName    string `gorm:"size:100;not null;index" json:"userName"`
}

// TableName 指定表名
func (RedirectLink) TableName() string {
	return "redirect_links"
}
