package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"atm-ledger/internal/domain"
	"atm-ledger/internal/errors"
	"atm-ledger/internal/service"
)

type TransactionHandler struct {
	directory          *service.Directory
	transactionService *service.TransactionService
}

func NewTransactionHandler(directory *service.Directory, transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		directory:          directory,
		transactionService: transactionService,
	}
}

type TransferRequest struct {
	DestinationUserID string `json:"destination_user_id"`
	Amount            string `json:"amount"`
	IdempotencyKey    string `json:"idempotency_key,omitempty"`
}

type TransferResponse struct {
	TransactionID        string    `json:"transaction_id"`
	Status               string    `json:"status"`
	SourceAccountID      string    `json:"source_account_id"`
	DestinationAccountID string    `json:"destination_account_id"`
	Amount               string    `json:"amount"`
	IdempotencyKey       *string   `json:"idempotency_key,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

func transferResponse(tx *domain.Transaction) TransferResponse {
	response := TransferResponse{
		TransactionID:        tx.ID.String(),
		Status:               string(tx.Status),
		SourceAccountID:      tx.SourceAccountID.String(),
		DestinationAccountID: tx.DestinationAccountID.String(),
		Amount:               tx.Amount.StringFixed(2),
		CreatedAt:            tx.CreatedAt,
	}
	if tx.IdempotencyKey != nil {
		keyStr := tx.IdempotencyKey.String()
		response.IdempotencyKey = &keyStr
	}
	return response
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req TransferRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	amount, appErr := parseAmount(req.Amount)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	// Parse optional idempotency key
	var idempotencyKey *uuid.UUID
	if req.IdempotencyKey != "" {
		key, err := uuid.Parse(req.IdempotencyKey)
		if err != nil {
			writeError(w, errors.NewAppError(errors.InvalidInput, "invalid idempotency_key format").WithDetails(err.Error()))
			return
		}
		idempotencyKey = &key
	}

	recipient, err := h.directory.Lookup(req.DestinationUserID)
	if err != nil {
		handleError(w, err)
		return
	}

	transaction, err := h.transactionService.Transfer(r.Context(), &service.TransferRequest{
		SourceAccountID:      user.Account().ID(),
		DestinationAccountID: recipient.Account().ID(),
		Amount:               amount,
		IdempotencyKey:       idempotencyKey,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, transferResponse(transaction))
}

// GetTransaction answers only to a party of the transfer; anyone else gets
// the same 404 as for an unknown ID.
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["transaction_id"])
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid transaction id"))
		return
	}

	transaction, err := h.transactionService.GetTransaction(id)
	if err != nil {
		handleError(w, err)
		return
	}
	if !transaction.Involves(user.Account().ID()) {
		writeError(w, errors.ErrTransactionNotFound)
		return
	}

	writeJSON(w, http.StatusOK, transferResponse(transaction))
}
