package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/gana36/billbeam/internal/models"
	"github.com/gana36/billbeam/internal/storage"
	"github.com/gana36/billbeam/pkg/api"
	"github.com/gana36/billbeam/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

var (
	errEmptyGroupName = errors.New("group name is required")
	errEmptyGroup     = errors.New("group needs at least one person")
)

// GroupService implements the Connect GroupService
type GroupService struct {
	store storage.GroupStore
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.GroupStore) *GroupService {
	return &GroupService{store: store}
}

// normalizeGroup trims names, drops blank people, and fills in missing IDs and colours.
// A repeated ID gets a fresh one so every person stays distinct.
func normalizeGroup(name string, people []api.Person) (string, []models.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, connect.NewError(connect.CodeInvalidArgument, errEmptyGroupName)
	}

	var out []models.Person
	seen := make(map[string]bool, len(people))
	for _, p := range fromAPIPeople(people) {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			continue
		}
		if p.ID == "" || seen[p.ID] {
			p.ID = uuid.New().String()
		}
		seen[p.ID] = true
		if p.Color == "" {
			p.Color = models.ColorFor(len(out))
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return "", nil, connect.NewError(connect.CodeInvalidArgument, errEmptyGroup)
	}
	return name, out, nil
}

// Create saves a new group.
func (s *GroupService) Create(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"people_count", len(req.Msg.People),
	)

	name, people, err := normalizeGroup(req.Msg.Name, req.Msg.People)
	if err != nil {
		return nil, err
	}
	group := &models.Group{
		UserID: userID,
		Name:   name,
		People: people,
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.GroupResponse{Group: toAPIGroup(group)}), nil
}

// List returns the caller's groups and default group.
func (s *GroupService) List(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroups(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}
	prefs, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		slog.Error("GetPreferences failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.Group, len(groups))
	for i, g := range groups {
		out[i] = *toAPIGroup(g)
	}

	slog.Info("ListGroups successful", "count", len(out))
	return connect.NewResponse(&api.ListGroupsResponse{
		Groups:         out,
		DefaultGroupID: prefs.DefaultGroupID,
	}), nil
}

// Update replaces a group's name and people.
func (s *GroupService) Update(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateGroup request received",
		"group_id", req.Msg.GroupID,
		"name", req.Msg.Name,
		"people_count", len(req.Msg.People),
	)

	name, people, err := normalizeGroup(req.Msg.Name, req.Msg.People)
	if err != nil {
		return nil, err
	}
	group := &models.Group{
		ID:     req.Msg.GroupID,
		UserID: userID,
		Name:   name,
		People: people,
	}
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		slog.Error("UpdateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	// Fetch updated group to get CreatedAt
	updated, err := s.store.GetGroup(ctx, userID, group.ID)
	if err != nil {
		slog.Error("Failed to fetch updated group", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group updated", "group_id", group.ID)
	return connect.NewResponse(&api.GroupResponse{Group: toAPIGroup(updated)}), nil
}

// Delete removes a group. If it was the default, the default is cleared.
func (s *GroupService) Delete(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if err := s.store.DeleteGroup(ctx, userID, req.Msg.GroupID); err != nil {
		slog.Error("DeleteGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// SetDefault chooses the group preloaded into new sessions. An empty ID clears it.
func (s *GroupService) SetDefault(ctx context.Context, req *connect.Request[api.SetDefaultGroupRequest]) (*connect.Response[api.PreferencesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	groupID := req.Msg.GroupID
	if err := s.store.SetDefaultGroup(ctx, userID, groupID); err != nil {
		slog.Error("SetDefaultGroup failed", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Default group set", "user_id", userID, "group_id", groupID)
	return connect.NewResponse(&api.PreferencesResponse{DefaultGroupID: groupID}), nil
}

// GetPreferences returns the caller's default group.
func (s *GroupService) GetPreferences(ctx context.Context, req *connect.Request[api.GetPreferencesRequest]) (*connect.Response[api.PreferencesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	prefs, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		slog.Error("GetPreferences failed", "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.PreferencesResponse{DefaultGroupID: prefs.DefaultGroupID}), nil
}
