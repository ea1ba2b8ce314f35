package services

import (
	"context"
	"testing"

	"ticketPlatform/internal/types"

	"github.com/google/go-cmp/cmp"
)

func TestSplitPreprocessingParams(t *testing.T) {
	item := map[string]interface{}{
		"preprocessing": []interface{}{
			map[string]interface{}{"type": "5", "params": "^(\\d+)\n\\1"},
			map[string]interface{}{"type": "10", "params": ""},
		},
	}
	SplitPreprocessingParams(item)

	steps := item["preprocessing"].([]interface{})
	if diff := cmp.Diff([]string{"^(\\d+)", "\\1"}, steps[0].(map[string]interface{})["params"]); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{""}, steps[1].(map[string]interface{})["params"]); diff != "" {
		t.Errorf("empty params mismatch (-want +got):\n%s", diff)
	}
}

func TestItemPopup(t *testing.T) {
	c := newTestContext(t)
	remote := newFakeRemote(t)
	remote.reply("item.get", []map[string]interface{}{
		{"itemid": "42", "name": "CPU load", "preprocessing": []map[string]interface{}{{"type": "1", "params": "0.01"}}},
	})
	addServer(t, c, "a", "Alpha", remote.url(), 1)

	is := newInterItemService(c)
	data, err := is.Popup(context.Background(), &types.RequestItemPopup{ServerId: "a", ItemId: "42"})
	if err != nil {
		t.Fatalf("Popup() error = %v", err)
	}
	resp := data.(types.ResponseItemPopup)
	if resp.Item["name"] != "CPU load" {
		t.Errorf("item = %v", resp.Item)
	}

	_, err = is.Popup(context.Background(), &types.RequestItemPopup{ServerId: "a"})
	title, messages, ok := ErrorBlock(err.(error))
	if !ok || title != "Cannot load item details" || messages[0] != "No remote server or item specified." {
		t.Errorf("missing item id: %q %v", title, messages)
	}
}
