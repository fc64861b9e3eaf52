package calllog

import (
	"fmt"
	"time"

	"clicklink-admin/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LogsPerPage 管理后台日志列表的固定分页大小
const LogsPerPage = 16

const timestampLayout = "2006-01-02 15:04:05"

// Recorder 公共 API 调用日志的写入和分页查询
type Recorder struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewRecorder 创建 Recorder 实例
func NewRecorder(db *gorm.DB, logger *zap.SugaredLogger) *Recorder {
	return &Recorder{db: db, logger: logger}
}

// Record 追加一条调用日志
// 尽力而为：写入失败只记日志，绝不影响被记录请求本身的结果
func (r *Recorder) Record(endpoint, ipAddress string, statusCode int) {
	entry := model.APICallLog{
		Endpoint:   endpoint,
		IPAddress:  ipAddress,
		StatusCode: statusCode,
		Timestamp:  time.Now().Format(timestampLayout),
	}
	if err := r.db.Create(&entry).Error; err != nil {
		r.logger.Errorf("记录API调用日志失败: %v", err)
	}
}

// Page 按 endpoint 过滤并分页，时间倒序
// 页码钳制到 [1, totalPages]，totalPages = max(1, ceil(total/16))
func (r *Recorder) Page(endpoint string, page int) ([]model.APICallLog, int, int, error) {
	var total int64
	if err := r.db.Model(&model.APICallLog{}).Where("endpoint = ?", endpoint).Count(&total).Error; err != nil {
		return nil, 0, 0, fmt.Errorf("统计日志数量失败: %w", err)
	}

	totalPages := int((total + LogsPerPage - 1) / LogsPerPage)
	if totalPages < 1 {
		totalPages = 1
	}
	currentPage := page
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}

	var logs []model.APICallLog
	err := r.db.Where("endpoint = ?", endpoint).
		Order("timestamp DESC").
		Offset((currentPage - 1) * LogsPerPage).
		Limit(LogsPerPage).
		Find(&logs).Error
	if err != nil {
		return nil, 0, 0, fmt.Errorf("查询日志失败: %w", err)
	}

	return logs, currentPage, totalPages, nil
}

// FirstN 无过滤取前 n 条，用于管理后台出错时的兜底展示
func (r *Recorder) FirstN(n int) []model.APICallLog {
	var logs []model.APICallLog
	if err := r.db.Limit(n).Find(&logs).Error; err != nil {
		r.logger.Errorf("查询日志失败: %v", err)
		return nil
	}
	return logs
}
