package services

import (
	"context"
	"testing"

	"ticketPlatform/internal/models"
	"ticketPlatform/internal/types"

	"github.com/google/go-cmp/cmp"
)

func eventIdsOf(problems []models.NormalizedProblem) []string {
	ids := make([]string, 0, len(problems))
	for _, p := range problems {
		ids = append(ids, p.EventID)
	}
	return ids
}

func TestSortProblems(t *testing.T) {
	base := []models.NormalizedProblem{
		{EventID: "1", Clock: 300, Severity: 2, Name: "beta", ServerName: "B", Hosts: []models.ProblemHost{{Name: "web"}}},
		{EventID: "2", Clock: 100, Severity: 5, Name: "alpha", ServerName: "A", Hosts: []models.ProblemHost{{Name: "db"}}},
		{EventID: "3", Clock: 200, Severity: 2, Name: "gamma", ServerName: "A"},
	}

	tests := []struct {
		field, order string
		want         []string
	}{
		{"", "", []string{"1", "3", "2"}},
		{"clock", "ASC", []string{"2", "3", "1"}},
		{"severity", "DESC", []string{"2", "1", "3"}},
		{"severity", "ASC", []string{"1", "3", "2"}},
		{"name", "ASC", []string{"2", "1", "3"}},
		{"host", "ASC", []string{"3", "2", "1"}},
		{"server", "DESC", []string{"1", "3", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.field+"_"+tt.order, func(t *testing.T) {
			problems := append([]models.NormalizedProblem(nil), base...)
			SortProblems(problems, tt.field, tt.order)
			if diff := cmp.Diff(tt.want, eventIdsOf(problems)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProblemListMergesServersAndPages(t *testing.T) {
	c := newTestContext(t)
	primary := newFakeRemote(t)
	primary.reply("problem.get", problemRows("1", "2", "3"))
	other := newFakeRemote(t)
	other.reply("problem.get", problemRows("4"))
	failing := newFakeRemote(t)
	failing.fail("problem.get", "Session terminated, re-login, please.")

	addServer(t, c, "a", "Alpha", primary.url(), 1)
	addServer(t, c, "b", "Bravo", other.url(), 2)
	addServer(t, c, "c", "Charlie", failing.url(), 3)

	ps := newInterProblemService(c)

	data, err := ps.List(context.Background(), &types.RequestProblemList{Show: 1, Page: 1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	resp := data.(types.ResponseProblemList)

	if resp.Total != 4 || len(resp.List) != 4 {
		t.Errorf("Total = %d, len(List) = %d, want 4/4", resp.Total, len(resp.List))
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Server != "Charlie" {
		t.Errorf("Errors = %v, want one error for Charlie", resp.Errors)
	}
	for _, s := range resp.Servers {
		if s.ApiToken != "" || !s.HasToken {
			t.Errorf("server %s token not redacted", s.ID)
		}
	}
	if len(resp.Debug) == 0 {
		t.Errorf("Debug trail is empty after a remote failure")
	}

	data, err = ps.List(context.Background(), &types.RequestProblemList{Show: 1, ServerIds: []string{"b"}})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	resp = data.(types.ResponseProblemList)
	if resp.Total != 1 || resp.List[0].ServerID != "b" || len(resp.Errors) != 0 {
		t.Errorf("server subset: Total = %d, Errors = %v", resp.Total, resp.Errors)
	}
}
