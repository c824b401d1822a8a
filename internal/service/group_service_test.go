package service

import (
	"context"
	"errors"
	"testing"

	"progress-service/internal/models"
)

func TestAddMemberAsLeader(t *testing.T) {
	env := newTestEnv()
	groupID := env.store.addGroup(&models.Group{
		Name:    "Acme Corp",
		Leaders: []string{"leader-1"},
	})

	group, err := env.groups.AddMember(context.Background(), "leader-1", groupID, "user-2", "", false)
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if !group.IsMember("user-2") {
		t.Error("user-2 not in group")
	}
	if group.IsLeader("user-2") {
		t.Error("default role should be student")
	}
	if got := env.eventTypes(); len(got) != 1 || got[0] != models.EventTypeGroupMemberAdded {
		t.Errorf("expected one member event, got %v", got)
	}
}

func TestAddMemberAsAdminWithoutLeadership(t *testing.T) {
	env := newTestEnv()
	groupID := env.store.addGroup(&models.Group{
		Name:    "Acme Corp",
		Leaders: []string{"leader-1"},
	})

	group, err := env.groups.AddMember(context.Background(), "admin-1", groupID, "user-2", models.GroupRoleLeader, true)
	if err != nil {
		t.Fatalf("admin AddMember failed: %v", err)
	}
	if !group.IsLeader("user-2") {
		t.Error("leader role not applied")
	}
}

func TestAddMemberRejections(t *testing.T) {
	env := newTestEnv()
	groupID := env.store.addGroup(&models.Group{
		Name:     "Acme Corp",
		Leaders:  []string{"leader-1"},
		Students: []string{"user-2"},
	})

	tests := []struct {
		name   string
		caller string
		group  string
		user   string
		role   string
		admin  bool
		want   error
	}{
		{"no caller", "", groupID, "user-3", "", false, models.ErrUnauthenticated},
		{"missing user", "leader-1", groupID, "", "", false, models.ErrInvalidArgument},
		{"unknown role", "leader-1", groupID, "user-3", "owner", false, models.ErrInvalidArgument},
		{"unknown group", "leader-1", "64d26b4f8f1b2c0001000000", "user-3", "", false, models.ErrNotFound},
		{"not a leader", "user-2", groupID, "user-3", "", false, models.ErrForbidden},
		{"already a member", "leader-1", groupID, "user-2", "", false, models.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.groups.AddMember(context.Background(), tt.caller, tt.group, tt.user, tt.role, tt.admin)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestListLedGroups(t *testing.T) {
	env := newTestEnv()
	env.store.addGroup(&models.Group{Name: "Acme Corp", Leaders: []string{"leader-1"}})
	env.store.addGroup(&models.Group{Name: "Globex", Students: []string{"leader-1"}})

	groups, err := env.groups.ListLedGroups(context.Background(), "leader-1")
	if err != nil {
		t.Fatalf("ListLedGroups failed: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "Acme Corp" {
		t.Errorf("got %+v, want only the led group", groups)
	}

	none, err := env.groups.ListLedGroups(context.Background(), "user-9")
	if err != nil {
		t.Fatalf("ListLedGroups failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", none)
	}
}
