package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/gana36/billbeam/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService service.
const GroupServiceName = "billbeam.v1.GroupService"

// Procedure paths, used for routing and in interceptors via Spec().Procedure.
const (
	GroupServiceCreateProcedure         = "/billbeam.v1.GroupService/Create"
	GroupServiceListProcedure           = "/billbeam.v1.GroupService/List"
	GroupServiceUpdateProcedure         = "/billbeam.v1.GroupService/Update"
	GroupServiceDeleteProcedure         = "/billbeam.v1.GroupService/Delete"
	GroupServiceSetDefaultProcedure     = "/billbeam.v1.GroupService/SetDefault"
	GroupServiceGetPreferencesProcedure = "/billbeam.v1.GroupService/GetPreferences"
)

// GroupServiceHandler is implemented by the server.
type GroupServiceHandler interface {
	Create(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error)
	List(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	Update(context.Context, *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.GroupResponse], error)
	Delete(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	SetDefault(context.Context, *connect.Request[api.SetDefaultGroupRequest]) (*connect.Response[api.PreferencesResponse], error)
	GetPreferences(context.Context, *connect.Request[api.GetPreferencesRequest]) (*connect.Response[api.PreferencesResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateProcedure, connect.NewUnaryHandler(GroupServiceCreateProcedure, svc.Create, opts...))
	mux.Handle(GroupServiceListProcedure, connect.NewUnaryHandler(GroupServiceListProcedure, svc.List, opts...))
	mux.Handle(GroupServiceUpdateProcedure, connect.NewUnaryHandler(GroupServiceUpdateProcedure, svc.Update, opts...))
	mux.Handle(GroupServiceDeleteProcedure, connect.NewUnaryHandler(GroupServiceDeleteProcedure, svc.Delete, opts...))
	mux.Handle(GroupServiceSetDefaultProcedure, connect.NewUnaryHandler(GroupServiceSetDefaultProcedure, svc.SetDefault, opts...))
	mux.Handle(GroupServiceGetPreferencesProcedure, connect.NewUnaryHandler(GroupServiceGetPreferencesProcedure, svc.GetPreferences, opts...))
	return "/" + GroupServiceName + "/", mux
}

// GroupServiceClient is a client for the GroupService service.
type GroupServiceClient interface {
	Create(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error)
	List(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	Update(context.Context, *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.GroupResponse], error)
	Delete(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	SetDefault(context.Context, *connect.Request[api.SetDefaultGroupRequest]) (*connect.Response[api.PreferencesResponse], error)
	GetPreferences(context.Context, *connect.Request[api.GetPreferencesRequest]) (*connect.Response[api.PreferencesResponse], error)
}

// NewGroupServiceClient constructs a client for the GroupService service. baseURL is the
// server root, e.g. "http://localhost:8080".
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientWithJSON(opts)
	return &groupServiceClient{
		create: connect.NewClient[api.CreateGroupRequest, api.GroupResponse](httpClient, baseURL+GroupServiceCreateProcedure, opts...),
		list: connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListProcedure, opts...),
		update: connect.NewClient[api.UpdateGroupRequest, api.GroupResponse](httpClient, baseURL+GroupServiceUpdateProcedure, opts...),
		delete: connect.NewClient[api.DeleteGroupRequest, api.DeleteGroupResponse](httpClient, baseURL+GroupServiceDeleteProcedure, opts...),
		setDefault: connect.NewClient[api.SetDefaultGroupRequest, api.PreferencesResponse](httpClient, baseURL+GroupServiceSetDefaultProcedure, opts...),
		getPreferences: connect.NewClient[api.GetPreferencesRequest, api.PreferencesResponse](httpClient, baseURL+GroupServiceGetPreferencesProcedure, opts...),
	}
}

type groupServiceClient struct {
	create         *connect.Client[api.CreateGroupRequest, api.GroupResponse]
	list           *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	update         *connect.Client[api.UpdateGroupRequest, api.GroupResponse]
	delete         *connect.Client[api.DeleteGroupRequest, api.DeleteGroupResponse]
	setDefault     *connect.Client[api.SetDefaultGroupRequest, api.PreferencesResponse]
	getPreferences *connect.Client[api.GetPreferencesRequest, api.PreferencesResponse]
}

func (c *groupServiceClient) Create(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	return c.create.CallUnary(ctx, req)
}

func (c *groupServiceClient) List(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.list.CallUnary(ctx, req)
}

func (c *groupServiceClient) Update(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	return c.update.CallUnary(ctx, req)
}

func (c *groupServiceClient) Delete(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return c.delete.CallUnary(ctx, req)
}

func (c *groupServiceClient) SetDefault(ctx context.Context, req *connect.Request[api.SetDefaultGroupRequest]) (*connect.Response[api.PreferencesResponse], error) {
	return c.setDefault.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetPreferences(ctx context.Context, req *connect.Request[api.GetPreferencesRequest]) (*connect.Response[api.PreferencesResponse], error) {
	return c.getPreferences.CallUnary(ctx, req)
}
