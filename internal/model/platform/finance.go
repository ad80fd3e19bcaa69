/**
 * 模型:财务记录
 * @author: sun977
 * @date: 2025.11.14
 * @description: 缴费与支出数据模型，监控引擎只读
 * @func: Payment/Expense结构体定义
 */
package platform

import (
	"time"

	model "neowatch/internal/model/basemodel"
)

// 缴费状态
const (
	PaymentStatusPending = "pending" // 待缴费
	PaymentStatusPaid    = "paid"    // 已缴费
	PaymentStatusOverdue = "overdue" // 逾期
)

// Payment 住户缴费记录
type Payment struct {
	model.BaseModel
	ResidentID uint64     `json:"resident_id" gorm:"index;comment:住户ID"`             // 住户ID
	Amount     float64    `json:"amount" gorm:"type:decimal(12,2);comment:金额"`       // 金额
	Status     string     `json:"status" gorm:"index;not null;size:20;comment:缴费状态"` // 缴费状态
	DueDate    time.Time  `json:"due_date" gorm:"index;comment:应缴日期"`                // 应缴日期
	PaidAt     *time.Time `json:"paid_at" gorm:"comment:实缴时间"`                       // 实缴时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}

// Expense 物业支出记录
type Expense struct {
	model.BaseModel
	Category   string    `json:"category" gorm:"index;size:50;comment:支出类别"`  // 支出类别
	Amount     float64   `json:"amount" gorm:"type:decimal(12,2);comment:金额"` // 金额
	IncurredAt time.Time `json:"incurred_at" gorm:"index;comment:发生日期"`       // 发生日期
	Remark     string    `json:"remark" gorm:"size:500;comment:备注"`           // 备注
}

// TableName 指定表名
func (Expense) TableName() string {
	return "expenses"
}
