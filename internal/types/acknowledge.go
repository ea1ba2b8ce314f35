package types

type RequestAcknowledgeEdit struct {
	ServerId string   `form:"serverId"`
	EventIds []string `form:"eventIds"`
	Role     string   `form:"-"`
}

type RequestAcknowledgeCreate struct {
	ServerId string   `json:"serverId"`
	EventIds []string `json:"eventIds"`
	Message  string   `json:"message"`
	// Scope 0 仅选中事件, 1 同一触发器下的全部问题
	Scope                int    `json:"scope"`
	ChangeSeverity       bool   `json:"changeSeverity"`
	Severity             int    `json:"severity"`
	AcknowledgeProblem   bool   `json:"acknowledgeProblem"`
	UnacknowledgeProblem bool   `json:"unacknowledgeProblem"`
	CloseProblem         bool   `json:"closeProblem"`
	SuppressProblem      bool   `json:"suppressProblem"`
	SuppressTimeOption   int    `json:"suppressTimeOption"`
	SuppressUntilProblem string `json:"suppressUntilProblem"`
	UnsuppressProblem    bool   `json:"unsuppressProblem"`
	// ChangeRank 0 不变, 128 设为根因, 256 设为衍生
	ChangeRank   int    `json:"changeRank"`
	CauseEventId string `json:"causeEventId"`
	UserName     string `json:"-"`
	Role         string `json:"-"`
}

type ResponseAcknowledgeEdit struct {
	EventIds                    []string `json:"eventIds"`
	ServerId                    string   `json:"serverId"`
	ProblemName                 string   `json:"problemName"`
	RelatedProblemsCount        int      `json:"relatedProblemsCount"`
	ProblemCanBeClosed          bool     `json:"problemCanBeClosed"`
	ProblemCanBeSuppressed      bool     `json:"problemCanBeSuppressed"`
	ProblemCanBeUnsuppressed    bool     `json:"problemCanBeUnsuppressed"`
	ProblemSeverityCanBeChanged bool     `json:"problemSeverityCanBeChanged"`
	ProblemCanChangeRank        bool     `json:"problemCanChangeRank"`
	HasAckEvents                bool     `json:"hasAckEvents"`
	HasUnackEvents              bool     `json:"hasUnackEvents"`
	AllowedAcknowledge          bool     `json:"allowedAcknowledge"`
	AllowedClose                bool     `json:"allowedClose"`
	AllowedChangeSeverity       bool     `json:"allowedChangeSeverity"`
	AllowedAddComments          bool     `json:"allowedAddComments"`
	AllowedSuppress             bool     `json:"allowedSuppress"`
	AllowedChangeProblemRanking bool     `json:"allowedChangeProblemRanking"`
	SuppressUntilProblem        string   `json:"suppressUntilProblem"`
}
