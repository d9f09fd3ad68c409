package api

// CreateGroupRequest saves a roster. People without an ID get a fresh one,
// and people without a colour get one from the palette.
type CreateGroupRequest struct {
	Name   string   `json:"name"`
	People []Person `json:"people"`
}

type GroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups         []Group `json:"groups"`
	DefaultGroupID string  `json:"defaultGroupId,omitempty"`
}

type UpdateGroupRequest struct {
	GroupID string   `json:"groupId"`
	Name    string   `json:"name"`
	People  []Person `json:"people"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

// SetDefaultGroupRequest sets the group preloaded into new sessions; empty clears it.
type SetDefaultGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetPreferencesRequest struct{}

type PreferencesResponse struct {
	DefaultGroupID string `json:"defaultGroupId,omitempty"`
}
