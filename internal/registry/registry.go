package registry

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"clicklink-admin/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// clickId 的取值范围，13 位十进制数字
	tokenMin = 1_000_000_000_000
	tokenMax = 9_999_999_999_999
	// 生成唯一 clickId 的最大尝试次数，数据库唯一索引兜底
	maxTokenAttempts = 10
)

// ErrNotFound 指定的 clickId 不存在
var ErrNotFound = errors.New("指定的链接不存在")

// ValidationError 输入校验失败，消息直接展示给管理后台
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Registry 分流链接的增删改查，clickId 的唯一性由这里保证
type Registry struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewRegistry 创建 Registry 实例
func NewRegistry(db *gorm.DB, logger *zap.SugaredLogger) *Registry {
	return &Registry{db: db, logger: logger}
}

// ListAll 返回全部链接，按 id 倒序（最新的在前面）
func (r *Registry) ListAll() ([]model.RedirectLink, error) {
	var links []model.RedirectLink
	if err := r.db.Order("id DESC").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("查询链接失败: %w", err)
	}
	return links, nil
}

// Create 校验输入并创建链接，clickId 由服务端生成
func (r *Registry) Create(redirectURL, userName string) (*model.RedirectLink, error) {
	redirectURL = strings.TrimSpace(redirectURL)
	userName = strings.TrimSpace(userName)

	if !strings.HasPrefix(redirectURL, "http://") && !strings.HasPrefix(redirectURL, "https://") {
		return nil, &ValidationError{Message: "URL必须以http://或https://开头"}
	}
	if utf8.RuneCountInString(userName) < 2 {
		return nil, &ValidationError{Message: "用户名至少需要2个字符"}
	}

	clickID, err := r.generateClickID()
	if err != nil {
		return nil, err
	}

	link := model.RedirectLink{
		ClickID:     clickID,
		RedirectURL: redirectURL,
		UserName:    userName,
	}
	if err := r.db.Create(&link).Error; err != nil {
		return nil, fmt.Errorf("创建链接失败: %w", err)
	}

	r.logger.Infof("成功添加新链接: %s -> %s", userName, redirectURL)
	return &link, nil
}

// Update 按 clickId 更新目标 URL 和用户名，clickId 和 id 保持不变
func (r *Registry) Update(clickID int64, redirectURL, userName string) (*model.RedirectLink, error) {
	var link model.RedirectLink
	if err := r.db.Where("click_id = ?", clickID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询链接失败: %w", err)
	}

	link.RedirectURL = strings.TrimSpace(redirectURL)
	link.UserName = strings.TrimSpace(userName)
	if err := r.db.Save(&link).Error; err != nil {
		return nil, fmt.Errorf("更新链接失败: %w", err)
	}

	r.logger.Infof("已更新链接: %d", clickID)
	return &link, nil
}

// Delete 按 clickId 删除链接
func (r *Registry) Delete(clickID int64) error {
	result := r.db.Where("click_id = ?", clickID).Delete(&model.RedirectLink{})
	if result.Error != nil {
		return fmt.Errorf("删除链接失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	r.logger.Infof("已删除链接: %d", clickID)
	return nil
}

// FindByToken 按 clickId 查找链接
func (r *Registry) FindByToken(clickID int64) (*model.RedirectLink, error) {
	var link model.RedirectLink
	if err := r.db.Where("click_id = ?", clickID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询链接失败: %w", err)
	}
	return &link, nil
}

// PickRandom 在现有链接中均匀随机取一条，库为空时返回 ErrNotFound
func (r *Registry) PickRandom() (*model.RedirectLink, error) {
	var links []model.RedirectLink
	if err := r.db.Find(&links).Error; err != nil {
		return nil, fmt.Errorf("查询链接失败: %w", err)
	}
	if len(links) == 0 {
		return nil, ErrNotFound
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(links))))
	if err != nil {
		return nil, fmt.Errorf("生成随机数失败: %w", err)
	}
	return &links[n.Int64()], nil
}

// generateClickID 生成一个在数据库中唯一的 13 位 clickId
// 冲突概率可以忽略，但仍按有限次重试处理，用完次数后交给唯一索引兜底
func (r *Registry) generateClickID() (int64, error) {
	for i := 0; i < maxTokenAttempts; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(tokenMax-tokenMin+1))
		if err != nil {
			return 0, fmt.Errorf("生成随机数失败: %w", err)
		}
		clickID := tokenMin + n.Int64()

		exists, err := r.clickIDExists(clickID)
		if err != nil {
			return 0, err
		}
		if !exists {
			return clickID, nil
		}
		r.logger.Warnf("clickId 冲突，重新生成: %d", clickID)
	}
	return 0, fmt.Errorf("生成唯一clickId失败，已尝试 %d 次", maxTokenAttempts)
}

// clickIDExists 检查给定的 clickId 是否已存在
func (r *Registry) clickIDExists(clickID int64) (bool, error) {
	var count int64
	if err := r.db.Model(&model.RedirectLink{}).Where("click_id = ?", clickID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("查询数据库时出错: %w", err)
	}
	return count > 0, nil
}
