package model

// APICallLog 公共 API 调用日志，只追加，不更新不删除
type APICallLog struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	Endpoint   string `gorm:"size:100;index" json:"endpoint"`
	IPAddress  string `gorm:"size:45;index" json:"ip_address"`
	StatusCode int    `gorm:"index" json:"status_code"`
	Timestamp  string `gorm:"size:19;index" json:"timestamp"`
}

func (APICallLog) TableName() string {
	return "api_call_logs"
}
