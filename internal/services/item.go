package services

import (
	"context"
	"strings"

	"ticketPlatform/internal/ctx"
	"ticketPlatform/internal/types"
)

type itemService struct {
	ctx *ctx.Context
}

type InterItemService interface {
	Popup(reqCtx context.Context, req interface{}) (interface{}, interface{})
}

func newInterItemService(ctx *ctx.Context) InterItemService {
	return &itemService{
		ctx: ctx,
	}
}

// Popup 监控项完整配置, 本机端点同样支持
func (is itemService) Popup(reqCtx context.Context, req interface{}) (interface{}, interface{}) {
	r := req.(*types.RequestItemPopup)
	title := "Cannot load item details"

	server, ok, err := findServer(is.ctx, r.ServerId, true)
	if err != nil {
		return nil, err
	}
	if !ok || r.ItemId == "" {
		return nil, validationError(title, "No remote server or item specified.")
	}

	var items []map[string]interface{}
	err = callServer(reqCtx, is.ctx, server, "item.get", map[string]interface{}{
		"output":              "extend",
		"itemids":             []string{r.ItemId},
		"selectHosts":         []string{"hostid", "name", "host"},
		"selectTags":          []string{"tag", "value"},
		"selectValueMap":      []string{"valuemapid", "name"},
		"selectPreprocessing": []string{"type", "params", "error_handler", "error_handler_params"},
	}, &items)
	if err != nil {
		return nil, remoteError(title, err)
	}
	if len(items) == 0 {
		return nil, notFoundError(title, "No permissions to referred object or it does not exist!")
	}

	item := items[0]
	SplitPreprocessingParams(item)

	return types.ResponseItemPopup{
		Server: server.Redacted(),
		Item:   item,
	}, nil
}

// SplitPreprocessingParams 预处理参数以换行分隔, 拆分为列表; 空字符串得到 [""]
func SplitPreprocessingParams(item map[string]interface{}) {
	steps, ok := item["preprocessing"].([]interface{})
	if !ok {
		return
	}

	for _, step := range steps {
		m, ok := step.(map[string]interface{})
		if !ok {
			continue
		}
		if params, ok := m["params"].(string); ok {
			m["params"] = strings.Split(params, "\n")
		}
	}
}
