/**
 * 模型:住户
 * @author: sun977
 * @date: 2025.11.14
 * @description: 住户账号数据模型，监控引擎只读
 * @func: Resident结构体定义
 */
package platform

import (
	"time"

	model "neowatch/internal/model/basemodel"
)

// Resident 住户账号
// 平台侧负责写入，监控引擎仅做活跃度统计的只读查询
type Resident struct {
	model.BaseModel
	Username    string     `json:"username" gorm:"uniqueIndex;not null;size:50;comment:用户名"` // 用户名，唯一索引
	Email       string     `json:"email" gorm:"uniqueIndex;not null;size:100;comment:邮箱"`    // 邮箱地址，唯一索引
	Phone       string     `json:"phone" gorm:"size:20;comment:手机号"`                         // 手机号码
	UnitNumber  string     `json:"unit_number" gorm:"size:20;comment:房号"`                    // 房号
	Status      int        `json:"status" gorm:"default:1;comment:状态 1:启用 0:禁用"`             // 账号状态
	LastLoginAt *time.Time `json:"last_login_at" gorm:"comment:最后登录时间"`                      // 最后登录时间
}

// TableName 指定表名
func (Resident) TableName() string {
	return "residents"
}
