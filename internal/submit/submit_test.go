package submit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/skoglund/timegrid/internal/api"
	"github.com/skoglund/timegrid/internal/catalog"
	"github.com/skoglund/timegrid/internal/date"
	"github.com/skoglund/timegrid/internal/grid"
)

type fakeClient struct {
	creates   []api.EntryRequest
	updates   []string
	patches   []api.EntryPatch
	failDates map[date.Date]bool
	nextID    int
}

func (f *fakeClient) CreateEntry(ctx context.Context, req api.EntryRequest) (*api.TimeEntry, error) {
	if f.failDates[req.Date] {
		return nil, errors.New("boom")
	}
	f.creates = append(f.creates, req)
	f.nextID++
	return &api.TimeEntry{ID: fmt.Sprintf("e%d", f.nextID), Date: req.Date, Hours: req.Hours}, nil
}

func (f *fakeClient) UpdateEntry(ctx context.Context, id string, patch api.EntryPatch) (*api.TimeEntry, error) {
	f.updates = append(f.updates, id)
	f.patches = append(f.patches, patch)
	return &api.TimeEntry{ID: id, Hours: *patch.Hours}, nil
}

func createOp(d date.Date, hours float64) grid.Op {
	return grid.Op{
		Kind:  grid.OpCreate,
		Entry: api.EntryRequest{Date: d, ClientID: "c1", ProjectID: "p1", Task: "Support", Hours: hours},
	}
}

func TestSubmitDispatchesInOrder(t *testing.T) {
	client := &fakeClient{}
	s := New(client, nil, nil)

	d1 := date.New(2024, time.March, 11)
	d2 := date.New(2024, time.March, 12)
	updateOp := grid.Op{
		Kind:    grid.OpUpdate,
		EntryID: "e99",
		Entry:   api.EntryRequest{Date: d2, Hours: 4},
	}

	results := s.Submit(context.Background(), []grid.Op{createOp(d1, 2), updateOp})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if len(client.creates) != 1 || client.creates[0].Date != d1 {
		t.Errorf("unexpected creates: %+v", client.creates)
	}
	if len(client.updates) != 1 || client.updates[0] != "e99" {
		t.Errorf("unexpected updates: %+v", client.updates)
	}
	if results[0].Err != nil || results[0].RemoteID == "" {
		t.Errorf("create result wrong: %+v", results[0])
	}
	if results[1].RemoteID != "e99" {
		t.Errorf("update result wrong: %+v", results[1])
	}
}

func TestUpdateCarriesRowIdentity(t *testing.T) {
	cat := catalog.New(&api.Catalog{
		Clients: []api.Client{
			{ID: "c1", Name: "Acme"},
			{ID: "c2", Name: "Globex"},
		},
		Projects: []api.Project{
			{ID: "p1", Name: "Website", ClientID: "c1"},
			{ID: "p2", Name: "Migration", ClientID: "c2"},
		},
		Tasks: []api.Task{
			{ID: "t1", Name: "Support", ProjectID: "p1"},
			{ID: "t2", Name: "Planning", ProjectID: "p2"},
		},
	})

	week := date.Week(date.New(2024, time.March, 13), date.StartMonday)
	state := grid.BuildWeek(week, []api.TimeEntry{
		{ID: "e1", Date: week[0], ClientID: "c1", ProjectID: "p1", Task: "Support", Hours: 2},
	})

	// Re-point the whole row at another client; the persisted cell must
	// follow, not just its hours.
	state = grid.Apply(state, grid.SetRowField{Row: 0, Field: grid.FieldClient, Value: "c2"}, cat)

	ops := grid.Partition(state)
	if len(ops) != 1 || ops[0].Kind != grid.OpUpdate {
		t.Fatalf("got ops %+v, want one update", ops)
	}

	client := &fakeClient{}
	s := New(client, nil, nil)
	results := s.Submit(context.Background(), ops)

	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("unexpected results: %+v", results)
	}
	if len(client.patches) != 1 {
		t.Fatalf("got %d patches, want 1", len(client.patches))
	}

	p := client.patches[0]
	if p.ClientID == nil || *p.ClientID != "c2" {
		t.Errorf("patch client = %v, want c2", p.ClientID)
	}
	if p.ProjectID == nil || *p.ProjectID != "p2" {
		t.Errorf("patch project = %v, want p2", p.ProjectID)
	}
	if p.Task == nil || *p.Task != "Planning" {
		t.Errorf("patch task = %v, want Planning", p.Task)
	}
	if p.Hours == nil || *p.Hours != 2 {
		t.Errorf("patch hours = %v, want 2", p.Hours)
	}
}

func TestSubmitContinuesPastFailures(t *testing.T) {
	d1 := date.New(2024, time.March, 11)
	d2 := date.New(2024, time.March, 12)
	d3 := date.New(2024, time.March, 13)
	client := &fakeClient{failDates: map[date.Date]bool{d2: true}}
	s := New(client, nil, nil)

	results := s.Submit(context.Background(), []grid.Op{createOp(d1, 1), createOp(d2, 2), createOp(d3, 3)})

	if Failed(results) != 1 {
		t.Fatalf("Failed = %d, want 1", Failed(results))
	}
	if results[1].Err == nil {
		t.Error("middle op should have failed")
	}
	// The op after the failure was still dispatched.
	if len(client.creates) != 2 || client.creates[1].Date != d3 {
		t.Errorf("dispatch stopped at failure: %+v", client.creates)
	}
}
