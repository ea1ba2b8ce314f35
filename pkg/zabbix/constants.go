package zabbix

import "strings"

const (
	EventSourceTriggers = 0
	EventObjectTrigger  = 0

	TriggerValueFalse = 0
	TriggerValueTrue  = 1

	SortDown = "DESC"
	SortUp   = "ASC"

	EventAcknowledged = 1

	TriggerManualCloseNotAllowed = 0

	// SuppressTimeIndefinite 远端约定的"永久抑制"取值
	SuppressTimeIndefinite = 0

	AlertTypeMessage = 0

	AlertStatusNotSent = 0
	AlertStatusSent    = 1
	AlertStatusFailed  = 2
	AlertStatusNew     = 3

	ItemValueTypeBinary = 5

	TagOperatorLike = 0
)

// Action event.acknowledge 的 action 位
type Action uint16

const (
	ActionNone          Action = 0
	ActionClose         Action = 1
	ActionAcknowledge   Action = 2
	ActionMessage       Action = 4
	ActionSeverity      Action = 8
	ActionUnacknowledge Action = 16
	ActionSuppress      Action = 32
	ActionUnsuppress    Action = 64
	ActionRankToCause   Action = 128
	ActionRankToSymptom Action = 256
)

var actionNames = []struct {
	a    Action
	name string
}{
	{ActionClose, "close"},
	{ActionAcknowledge, "acknowledge"},
	{ActionMessage, "message"},
	{ActionSeverity, "severity"},
	{ActionUnacknowledge, "unacknowledge"},
	{ActionSuppress, "suppress"},
	{ActionUnsuppress, "unsuppress"},
	{ActionRankToCause, "rank_to_cause"},
	{ActionRankToSymptom, "rank_to_symptom"},
}

func (a Action) Has(flag Action) bool {
	return a&flag == flag && flag != ActionNone
}

func (a Action) With(flag Action) Action {
	return a | flag
}

func (a Action) String() string {
	if a == ActionNone {
		return "none"
	}

	var parts []string
	for _, n := range actionNames {
		if a.Has(n.a) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
