package cache

import (
	"encoding/hex"
	"sort"

	"ticketPlatform/internal/models"

	"github.com/cnf/structhash"
)

const fingerprintVersion = 1

type tagKey struct {
	Tag      string
	Operator int
	Value    string
}

// fingerprintKey 参与哈希的字段, 指针字段展开为 (是否存在, 值) 以保证 nil 与零值可区分
type fingerprintKey struct {
	Mode            int
	HasTimeFrom     bool
	TimeFrom        int64
	HasTimeTill     bool
	TimeTill        int64
	Severities      []int
	Name            string
	Host            string
	HasAcknowledged bool
	Acknowledged    bool
	ShowSuppressed  bool
	HasRecent       bool
	Recent          bool
	Tags            []tagKey
	EvalType        int
	Limit           int
	ShowTags        bool

	ServerID         string
	HostGroup        string
	IncludeSubgroups bool
	ApiVersion       string
}

// Fingerprint 查询与服务作用域的确定性哈希, severities 视为集合, 标签条件保持顺序
func Fingerprint(q models.CanonicalQuery, server models.RemoteServer) string {
	k := fingerprintKey{
		Mode:             int(q.Mode),
		Name:             q.Name,
		Host:             q.Host,
		ShowSuppressed:   q.ShowSuppressed,
		EvalType:         q.EvalType,
		Limit:            q.Limit,
		ShowTags:         q.ShowTags,
		ServerID:         server.ID,
		HostGroup:        server.HostGroup,
		IncludeSubgroups: server.GetIncludeSubgroups(),
		ApiVersion:       server.ApiVersion,
	}

	if q.TimeFrom != nil {
		k.HasTimeFrom, k.TimeFrom = true, *q.TimeFrom
	}
	if q.TimeTill != nil {
		k.HasTimeTill, k.TimeTill = true, *q.TimeTill
	}
	if q.Acknowledged != nil {
		k.HasAcknowledged, k.Acknowledged = true, *q.Acknowledged
	}
	if q.Recent != nil {
		k.HasRecent, k.Recent = true, *q.Recent
	}

	k.Severities = append([]int{}, q.Severities...)
	sort.Ints(k.Severities)

	k.Tags = make([]tagKey, 0, len(q.Tags))
	for _, t := range q.Tags {
		k.Tags = append(k.Tags, tagKey{Tag: t.Tag, Operator: t.Operator, Value: t.Value})
	}

	return hex.EncodeToString(structhash.Sha1(k, fingerprintVersion))
}
