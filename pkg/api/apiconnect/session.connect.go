package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/gana36/billbeam/pkg/api"
)

// SessionServiceName is the fully-qualified name of the SessionService service.
const SessionServiceName = "billbeam.v1.SessionService"

// Procedure paths, used for routing and in interceptors via Spec().Procedure.
const (
	SessionServiceStartProcedure            = "/billbeam.v1.SessionService/Start"
	SessionServiceGetProcedure              = "/billbeam.v1.SessionService/Get"
	SessionServiceCaptureProcedure          = "/billbeam.v1.SessionService/Capture"
	SessionServiceSetReceiptProcedure       = "/billbeam.v1.SessionService/SetReceipt"
	SessionServiceAddPersonProcedure        = "/billbeam.v1.SessionService/AddPerson"
	SessionServiceRemovePersonProcedure     = "/billbeam.v1.SessionService/RemovePerson"
	SessionServiceToggleAssignmentProcedure = "/billbeam.v1.SessionService/ToggleAssignment"
	SessionServiceSetSplitModeProcedure     = "/billbeam.v1.SessionService/SetSplitMode"
	SessionServiceUpdateItemProcedure       = "/billbeam.v1.SessionService/UpdateItem"
	SessionServiceUpdateTotalsProcedure     = "/billbeam.v1.SessionService/UpdateTotals"
	SessionServiceSetPhaseProcedure         = "/billbeam.v1.SessionService/SetPhase"
	SessionServiceResetProcedure            = "/billbeam.v1.SessionService/Reset"
	SessionServiceSettleProcedure           = "/billbeam.v1.SessionService/Settle"
	SessionServiceShareProcedure            = "/billbeam.v1.SessionService/Share"
	SessionServiceLoadGroupProcedure        = "/billbeam.v1.SessionService/LoadGroup"
	SessionServiceLoadReceiptProcedure      = "/billbeam.v1.SessionService/LoadReceipt"
	SessionServiceSaveProcedure             = "/billbeam.v1.SessionService/Save"
)

// SessionServiceHandler is implemented by the server.
type SessionServiceHandler interface {
	// Start creates a new session, preloading the default group for signed-in users.
	Start(context.Context, *connect.Request[api.StartSessionRequest]) (*connect.Response[api.SessionResponse], error)
	Get(context.Context, *connect.Request[api.GetSessionRequest]) (*connect.Response[api.SessionResponse], error)
	// Capture extracts a receipt from a photo and moves the session to assignment.
	Capture(context.Context, *connect.Request[api.CaptureRequest]) (*connect.Response[api.CaptureResponse], error)
	SetReceipt(context.Context, *connect.Request[api.SetReceiptRequest]) (*connect.Response[api.SessionResponse], error)
	AddPerson(context.Context, *connect.Request[api.AddPersonRequest]) (*connect.Response[api.AddPersonResponse], error)
	RemovePerson(context.Context, *connect.Request[api.RemovePersonRequest]) (*connect.Response[api.SessionResponse], error)
	ToggleAssignment(context.Context, *connect.Request[api.ToggleAssignmentRequest]) (*connect.Response[api.SessionResponse], error)
	SetSplitMode(context.Context, *connect.Request[api.SetSplitModeRequest]) (*connect.Response[api.SessionResponse], error)
	UpdateItem(context.Context, *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.SessionResponse], error)
	UpdateTotals(context.Context, *connect.Request[api.UpdateTotalsRequest]) (*connect.Response[api.SessionResponse], error)
	SetPhase(context.Context, *connect.Request[api.SetPhaseRequest]) (*connect.Response[api.SessionResponse], error)
	Reset(context.Context, *connect.Request[api.ResetRequest]) (*connect.Response[api.SessionResponse], error)
	// Settle computes what each person owes.
	Settle(context.Context, *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error)
	Share(context.Context, *connect.Request[api.ShareRequest]) (*connect.Response[api.ShareResponse], error)
	LoadGroup(context.Context, *connect.Request[api.LoadGroupRequest]) (*connect.Response[api.SessionResponse], error)
	LoadReceipt(context.Context, *connect.Request[api.LoadReceiptRequest]) (*connect.Response[api.SessionResponse], error)
	Save(context.Context, *connect.Request[api.SaveRequest]) (*connect.Response[api.SaveResponse], error)
}

// NewSessionServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSessionServiceHandler(svc SessionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	mux := http.NewServeMux()
	mux.Handle(SessionServiceStartProcedure, connect.NewUnaryHandler(SessionServiceStartProcedure, svc.Start, opts...))
	mux.Handle(SessionServiceGetProcedure, connect.NewUnaryHandler(SessionServiceGetProcedure, svc.Get, opts...))
	mux.Handle(SessionServiceCaptureProcedure, connect.NewUnaryHandler(SessionServiceCaptureProcedure, svc.Capture, opts...))
	mux.Handle(SessionServiceSetReceiptProcedure, connect.NewUnaryHandler(SessionServiceSetReceiptProcedure, svc.SetReceipt, opts...))
	mux.Handle(SessionServiceAddPersonProcedure, connect.NewUnaryHandler(SessionServiceAddPersonProcedure, svc.AddPerson, opts...))
	mux.Handle(SessionServiceRemovePersonProcedure, connect.NewUnaryHandler(SessionServiceRemovePersonProcedure, svc.RemovePerson, opts...))
	mux.Handle(SessionServiceToggleAssignmentProcedure, connect.NewUnaryHandler(SessionServiceToggleAssignmentProcedure, svc.ToggleAssignment, opts...))
	mux.Handle(SessionServiceSetSplitModeProcedure, connect.NewUnaryHandler(SessionServiceSetSplitModeProcedure, svc.SetSplitMode, opts...))
	mux.Handle(SessionServiceUpdateItemProcedure, connect.NewUnaryHandler(SessionServiceUpdateItemProcedure, svc.UpdateItem, opts...))
	mux.Handle(SessionServiceUpdateTotalsProcedure, connect.NewUnaryHandler(SessionServiceUpdateTotalsProcedure, svc.UpdateTotals, opts...))
	mux.Handle(SessionServiceSetPhaseProcedure, connect.NewUnaryHandler(SessionServiceSetPhaseProcedure, svc.SetPhase, opts...))
	mux.Handle(SessionServiceResetProcedure, connect.NewUnaryHandler(SessionServiceResetProcedure, svc.Reset, opts...))
	mux.Handle(SessionServiceSettleProcedure, connect.NewUnaryHandler(SessionServiceSettleProcedure, svc.Settle, opts...))
	mux.Handle(SessionServiceShareProcedure, connect.NewUnaryHandler(SessionServiceShareProcedure, svc.Share, opts...))
	mux.Handle(SessionServiceLoadGroupProcedure, connect.NewUnaryHandler(SessionServiceLoadGroupProcedure, svc.LoadGroup, opts...))
	mux.Handle(SessionServiceLoadReceiptProcedure, connect.NewUnaryHandler(SessionServiceLoadReceiptProcedure, svc.LoadReceipt, opts...))
	mux.Handle(SessionServiceSaveProcedure, connect.NewUnaryHandler(SessionServiceSaveProcedure, svc.Save, opts...))
	return "/" + SessionServiceName + "/", mux
}

// SessionServiceClient is a client for the SessionService service.
type SessionServiceClient interface {
	Start(context.Context, *connect.Request[api.StartSessionRequest]) (*connect.Response[api.SessionResponse], error)
	Get(context.Context, *connect.Request[api.GetSessionRequest]) (*connect.Response[api.SessionResponse], error)
	Capture(context.Context, *connect.Request[api.CaptureRequest]) (*connect.Response[api.CaptureResponse], error)
	SetReceipt(context.Context, *connect.Request[api.SetReceiptRequest]) (*connect.Response[api.SessionResponse], error)
	AddPerson(context.Context, *connect.Request[api.AddPersonRequest]) (*connect.Response[api.AddPersonResponse], error)
	RemovePerson(context.Context, *connect.Request[api.RemovePersonRequest]) (*connect.Response[api.SessionResponse], error)
	ToggleAssignment(context.Context, *connect.Request[api.ToggleAssignmentRequest]) (*connect.Response[api.SessionResponse], error)
	SetSplitMode(context.Context, *connect.Request[api.SetSplitModeRequest]) (*connect.Response[api.SessionResponse], error)
	UpdateItem(context.Context, *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.SessionResponse], error)
	UpdateTotals(context.Context, *connect.Request[api.UpdateTotalsRequest]) (*connect.Response[api.SessionResponse], error)
	SetPhase(context.Context, *connect.Request[api.SetPhaseRequest]) (*connect.Response[api.SessionResponse], error)
	Reset(context.Context, *connect.Request[api.ResetRequest]) (*connect.Response[api.SessionResponse], error)
	Settle(context.Context, *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error)
	Share(context.Context, *connect.Request[api.ShareRequest]) (*connect.Response[api.ShareResponse], error)
	LoadGroup(context.Context, *connect.Request[api.LoadGroupRequest]) (*connect.Response[api.SessionResponse], error)
	LoadReceipt(context.Context, *connect.Request[api.LoadReceiptRequest]) (*connect.Response[api.SessionResponse], error)
	Save(context.Context, *connect.Request[api.SaveRequest]) (*connect.Response[api.SaveResponse], error)
}

// NewSessionServiceClient constructs a client for the SessionService service. baseURL is the
// server root, e.g. "http://localhost:8080".
func NewSessionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SessionServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientWithJSON(opts)
	return &sessionServiceClient{
		start: connect.NewClient[api.StartSessionRequest, api.SessionResponse](httpClient, baseURL+SessionServiceStartProcedure, opts...),
		get: connect.NewClient[api.GetSessionRequest, api.SessionResponse](httpClient, baseURL+SessionServiceGetProcedure, opts...),
		capture: connect.NewClient[api.CaptureRequest, api.CaptureResponse](httpClient, baseURL+SessionServiceCaptureProcedure, opts...),
		setReceipt: connect.NewClient[api.SetReceiptRequest, api.SessionResponse](httpClient, baseURL+SessionServiceSetReceiptProcedure, opts...),
		addPerson: connect.NewClient[api.AddPersonRequest, api.AddPersonResponse](httpClient, baseURL+SessionServiceAddPersonProcedure, opts...),
		removePerson: connect.NewClient[api.RemovePersonRequest, api.SessionResponse](httpClient, baseURL+SessionServiceRemovePersonProcedure, opts...),
		toggleAssignment: connect.NewClient[api.ToggleAssignmentRequest, api.SessionResponse](httpClient, baseURL+SessionServiceToggleAssignmentProcedure, opts...),
		setSplitMode: connect.NewClient[api.SetSplitModeRequest, api.SessionResponse](httpClient, baseURL+SessionServiceSetSplitModeProcedure, opts...),
		updateItem: connect.NewClient[api.UpdateItemRequest, api.SessionResponse](httpClient, baseURL+SessionServiceUpdateItemProcedure, opts...),
		updateTotals: connect.NewClient[api.UpdateTotalsRequest, api.SessionResponse](httpClient, baseURL+SessionServiceUpdateTotalsProcedure, opts...),
		setPhase: connect.NewClient[api.SetPhaseRequest, api.SessionResponse](httpClient, baseURL+SessionServiceSetPhaseProcedure, opts...),
		reset: connect.NewClient[api.ResetRequest, api.SessionResponse](httpClient, baseURL+SessionServiceResetProcedure, opts...),
		settle: connect.NewClient[api.SettleRequest, api.SettleResponse](httpClient, baseURL+SessionServiceSettleProcedure, opts...),
		share: connect.NewClient[api.ShareRequest, api.ShareResponse](httpClient, baseURL+SessionServiceShareProcedure, opts...),
		loadGroup: connect.NewClient[api.LoadGroupRequest, api.SessionResponse](httpClient, baseURL+SessionServiceLoadGroupProcedure, opts...),
		loadReceipt: connect.NewClient[api.LoadReceiptRequest, api.SessionResponse](httpClient, baseURL+SessionServiceLoadReceiptProcedure, opts...),
		save: connect.NewClient[api.SaveRequest, api.SaveResponse](httpClient, baseURL+SessionServiceSaveProcedure, opts...),
	}
}

type sessionServiceClient struct {
	start            *connect.Client[api.StartSessionRequest, api.SessionResponse]
	get              *connect.Client[api.GetSessionRequest, api.SessionResponse]
	capture          *connect.Client[api.CaptureRequest, api.CaptureResponse]
	setReceipt       *connect.Client[api.SetReceiptRequest, api.SessionResponse]
	addPerson        *connect.Client[api.AddPersonRequest, api.AddPersonResponse]
	removePerson     *connect.Client[api.RemovePersonRequest, api.SessionResponse]
	toggleAssignment *connect.Client[api.ToggleAssignmentRequest, api.SessionResponse]
	setSplitMode     *connect.Client[api.SetSplitModeRequest, api.SessionResponse]
	updateItem       *connect.Client[api.UpdateItemRequest, api.SessionResponse]
	updateTotals     *connect.Client[api.UpdateTotalsRequest, api.SessionResponse]
	setPhase         *connect.Client[api.SetPhaseRequest, api.SessionResponse]
	reset            *connect.Client[api.ResetRequest, api.SessionResponse]
	settle           *connect.Client[api.SettleRequest, api.SettleResponse]
	share            *connect.Client[api.ShareRequest, api.ShareResponse]
	loadGroup        *connect.Client[api.LoadGroupRequest, api.SessionResponse]
	loadReceipt      *connect.Client[api.LoadReceiptRequest, api.SessionResponse]
	save             *connect.Client[api.SaveRequest, api.SaveResponse]
}

func (c *sessionServiceClient) Start(ctx context.Context, req *connect.Request[api.StartSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.start.CallUnary(ctx, req)
}

func (c *sessionServiceClient) Get(ctx context.Context, req *connect.Request[api.GetSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.get.CallUnary(ctx, req)
}

func (c *sessionServiceClient) Capture(ctx context.Context, req *connect.Request[api.CaptureRequest]) (*connect.Response[api.CaptureResponse], error) {
	return c.capture.CallUnary(ctx, req)
}

func (c *sessionServiceClient) SetReceipt(ctx context.Context, req *connect.Request[api.SetReceiptRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.setReceipt.CallUnary(ctx, req)
}

func (c *sessionServiceClient) AddPerson(ctx context.Context, req *connect.Request[api.AddPersonRequest]) (*connect.Response[api.AddPersonResponse], error) {
	return c.addPerson.CallUnary(ctx, req)
}

func (c *sessionServiceClient) RemovePerson(ctx context.Context, req *connect.Request[api.RemovePersonRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.removePerson.CallUnary(ctx, req)
}

func (c *sessionServiceClient) ToggleAssignment(ctx context.Context, req *connect.Request[api.ToggleAssignmentRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.toggleAssignment.CallUnary(ctx, req)
}

func (c *sessionServiceClient) SetSplitMode(ctx context.Context, req *connect.Request[api.SetSplitModeRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.setSplitMode.CallUnary(ctx, req)
}

func (c *sessionServiceClient) UpdateItem(ctx context.Context, req *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.updateItem.CallUnary(ctx, req)
}

func (c *sessionServiceClient) UpdateTotals(ctx context.Context, req *connect.Request[api.UpdateTotalsRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.updateTotals.CallUnary(ctx, req)
}

func (c *sessionServiceClient) SetPhase(ctx context.Context, req *connect.Request[api.SetPhaseRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.setPhase.CallUnary(ctx, req)
}

func (c *sessionServiceClient) Reset(ctx context.Context, req *connect.Request[api.ResetRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.reset.CallUnary(ctx, req)
}

func (c *sessionServiceClient) Settle(ctx context.Context, req *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error) {
	return c.settle.CallUnary(ctx, req)
}

func (c *sessionServiceClient) Share(ctx context.Context, req *connect.Request[api.ShareRequest]) (*connect.Response[api.ShareResponse], error) {
	return c.share.CallUnary(ctx, req)
}

func (c *sessionServiceClient) LoadGroup(ctx context.Context, req *connect.Request[api.LoadGroupRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.loadGroup.CallUnary(ctx, req)
}

func (c *sessionServiceClient) LoadReceipt(ctx context.Context, req *connect.Request[api.LoadReceiptRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.loadReceipt.CallUnary(ctx, req)
}

func (c *sessionServiceClient) Save(ctx context.Context, req *connect.Request[api.SaveRequest]) (*connect.Response[api.SaveResponse], error) {
	return c.save.CallUnary(ctx, req)
}
