package models

// OperationLog 变更类接口的操作记录
type OperationLog struct {
	ID         string `json:"id" gorm:"primaryKey;size:64"`
	UserName   string `json:"userName"`
	Role       string `json:"role"`
	IPAddress  string `json:"ipAddress"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	Body       string `json:"body" gorm:"type:text"`
	StatusCode int    `json:"statusCode"`
	RequestId  string `json:"requestId"`
	CreatedAt  int64  `json:"createdAt"`
}

func (OperationLog) TableName() string {
	return "w8t_ticket_operation_log"
}

type Page struct {
	Index int64 `json:"index" form:"index"`
	Size  int64 `json:"size" form:"size"`
	Total int64 `json:"total" form:"total"`
}
