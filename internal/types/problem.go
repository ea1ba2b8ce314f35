package types

import (
	"ticketPlatform/internal/models"
)

// RequestProblemList 问题列表的原始过滤条件, 未做任何归一化
type RequestProblemList struct {
	Show                  int          `json:"show"`
	ServerIds             []string     `json:"serverIds"`
	Name                  string       `json:"name"`
	Host                  string       `json:"host"`
	Severities            []int        `json:"severities"`
	AgeState              int          `json:"ageState"`
	Age                   *int         `json:"age"`
	AcknowledgementStatus int          `json:"acknowledgementStatus"`
	ShowSuppressed        int          `json:"showSuppressed"`
	EvalType              int          `json:"evalType"`
	Tags                  []RequestTag `json:"tags"`
	ShowTags              *int         `json:"showTags"`
	From                  string       `json:"from"`
	To                    string       `json:"to"`
	Sort                  string       `json:"sort"`
	SortOrder             string       `json:"sortOrder"`
	Page                  int          `json:"page"`
}

type RequestTag struct {
	Tag      string  `json:"tag"`
	Operator *int    `json:"operator"`
	Value    *string `json:"value"`
}

type ResponseProblemList struct {
	List    []models.NormalizedProblem `json:"list"`
	Total   int                        `json:"total"`
	Page    int                        `json:"page"`
	Errors  []models.ServerError       `json:"errors"`
	Servers []models.RemoteServer      `json:"servers"`
	Filter  models.CanonicalQuery      `json:"filter"`
	Debug   []string                   `json:"debug"`
}
