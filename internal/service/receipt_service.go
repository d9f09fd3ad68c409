package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/gana36/billbeam/internal/storage"
	"github.com/gana36/billbeam/pkg/api"
	"github.com/gana36/billbeam/pkg/api/apiconnect"
)

var _ apiconnect.ReceiptServiceHandler = (*ReceiptService)(nil)

// ReceiptService implements the Connect ReceiptService over a user's saved history.
type ReceiptService struct {
	store storage.ReceiptStore
}

// NewReceiptService creates a new ReceiptService with the given storage backend.
func NewReceiptService(store storage.ReceiptStore) *ReceiptService {
	return &ReceiptService{store: store}
}

// List returns the caller's saved receipts, most recent first.
func (s *ReceiptService) List(ctx context.Context, req *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.ListReceipts(ctx, userID)
	if err != nil {
		slog.Error("ListReceipts failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	receipts := make([]api.SavedReceipt, len(saved))
	for i, r := range saved {
		receipts[i] = *toAPISaved(r)
	}

	slog.Info("ListReceipts successful", "user_id", userID, "count", len(receipts))
	return connect.NewResponse(&api.ListReceiptsResponse{Receipts: receipts}), nil
}

// Get returns one saved receipt.
func (s *ReceiptService) Get(ctx context.Context, req *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.GetReceipt(ctx, userID, req.Msg.ReceiptID)
	if err != nil {
		slog.Error("GetReceipt failed", "receipt_id", req.Msg.ReceiptID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetReceiptResponse{Receipt: toAPISaved(saved)}), nil
}

// Delete removes a saved receipt from the caller's history.
func (s *ReceiptService) Delete(ctx context.Context, req *connect.Request[api.DeleteReceiptRequest]) (*connect.Response[api.DeleteReceiptResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteReceipt(ctx, userID, req.Msg.ReceiptID); err != nil {
		slog.Error("DeleteReceipt failed", "receipt_id", req.Msg.ReceiptID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Receipt deleted", "receipt_id", req.Msg.ReceiptID)
	return connect.NewResponse(&api.DeleteReceiptResponse{}), nil
}
