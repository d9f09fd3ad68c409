package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/gana36/billbeam/pkg/api"
)

// ReceiptServiceName is the fully-qualified name of the ReceiptService service.
const ReceiptServiceName = "billbeam.v1.ReceiptService"

// Procedure paths, used for routing and in interceptors via Spec().Procedure.
const (
	ReceiptServiceListProcedure   = "/billbeam.v1.ReceiptService/List"
	ReceiptServiceGetProcedure    = "/billbeam.v1.ReceiptService/Get"
	ReceiptServiceDeleteProcedure = "/billbeam.v1.ReceiptService/Delete"
)

// ReceiptServiceHandler is implemented by the server.
type ReceiptServiceHandler interface {
	List(context.Context, *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error)
	Get(context.Context, *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error)
	Delete(context.Context, *connect.Request[api.DeleteReceiptRequest]) (*connect.Response[api.DeleteReceiptResponse], error)
}

// NewReceiptServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewReceiptServiceHandler(svc ReceiptServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	mux := http.NewServeMux()
	mux.Handle(ReceiptServiceListProcedure, connect.NewUnaryHandler(ReceiptServiceListProcedure, svc.List, opts...))
	mux.Handle(ReceiptServiceGetProcedure, connect.NewUnaryHandler(ReceiptServiceGetProcedure, svc.Get, opts...))
	mux.Handle(ReceiptServiceDeleteProcedure, connect.NewUnaryHandler(ReceiptServiceDeleteProcedure, svc.Delete, opts...))
	return "/" + ReceiptServiceName + "/", mux
}

// ReceiptServiceClient is a client for the ReceiptService service.
type ReceiptServiceClient interface {
	List(context.Context, *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error)
	Get(context.Context, *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error)
	Delete(context.Context, *connect.Request[api.DeleteReceiptRequest]) (*connect.Response[api.DeleteReceiptResponse], error)
}

// NewReceiptServiceClient constructs a client for the ReceiptService service. baseURL is the
// server root, e.g. "http://localhost:8080".
func NewReceiptServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ReceiptServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientWithJSON(opts)
	return &receiptServiceClient{
		list: connect.NewClient[api.ListReceiptsRequest, api.ListReceiptsResponse](httpClient, baseURL+ReceiptServiceListProcedure, opts...),
		get: connect.NewClient[api.GetReceiptRequest, api.GetReceiptResponse](httpClient, baseURL+ReceiptServiceGetProcedure, opts...),
		delete: connect.NewClient[api.DeleteReceiptRequest, api.DeleteReceiptResponse](httpClient, baseURL+ReceiptServiceDeleteProcedure, opts...),
	}
}

type receiptServiceClient struct {
	list   *connect.Client[api.ListReceiptsRequest, api.ListReceiptsResponse]
	get    *connect.Client[api.GetReceiptRequest, api.GetReceiptResponse]
	delete *connect.Client[api.DeleteReceiptRequest, api.DeleteReceiptResponse]
}

func (c *receiptServiceClient) List(ctx context.Context, req *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error) {
	return c.list.CallUnary(ctx, req)
}

func (c *receiptServiceClient) Get(ctx context.Context, req *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error) {
	return c.get.CallUnary(ctx, req)
}

func (c *receiptServiceClient) Delete(ctx context.Context, req *connect.Request[api.DeleteReceiptRequest]) (*connect.Response[api.DeleteReceiptResponse], error) {
	return c.delete.CallUnary(ctx, req)
}
