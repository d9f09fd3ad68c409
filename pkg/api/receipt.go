package api

type ListReceiptsRequest struct{}

type ListReceiptsResponse struct {
	Receipts []SavedReceipt `json:"receipts"`
}

type GetReceiptRequest struct {
	ReceiptID string `json:"receiptId"`
}

type GetReceiptResponse struct {
	Receipt *SavedReceipt `json:"receipt"`
}

type DeleteReceiptRequest struct {
	ReceiptID string `json:"receiptId"`
}

type DeleteReceiptResponse struct{}
