package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"atm-ledger/internal/domain"
	"atm-ledger/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

type AmountRequest struct {
	Amount string `json:"amount"`
}

type AccountResponse struct {
	AccountID string `json:"account_id"`
	UserID    string `json:"user_id"`
	Balance   string `json:"balance"`
}

type EntryResponse struct {
	Kind         string    `json:"kind"`
	Amount       string    `json:"amount"`
	Timestamp    time.Time `json:"timestamp"`
	Counterparty string    `json:"counterparty,omitempty"`
}

func accountResponse(user *domain.User, balance decimal.Decimal) AccountResponse {
	return AccountResponse{
		AccountID: user.Account().ID().String(),
		UserID:    user.ID(),
		Balance:   balance.StringFixed(2),
	}
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	account, err := h.accountService.GetAccount(user.Account().ID())
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accountResponse(user, account.Balance()))
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.accountService.Deposit)
}

func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.accountService.Withdraw)
}

func (h *AccountHandler) mutate(w http.ResponseWriter, r *http.Request, op func(uuid.UUID, decimal.Decimal) (decimal.Decimal, error)) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req AmountRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}
	amount, appErr := parseAmount(req.Amount)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	balance, err := op(user.Account().ID(), amount)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accountResponse(user, balance))
}

func (h *AccountHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	entries, err := h.accountService.History(user.Account().ID())
	if err != nil {
		handleError(w, err)
		return
	}

	response := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		item := EntryResponse{
			Kind:      string(e.Kind),
			Amount:    e.Amount.StringFixed(2),
			Timestamp: e.Timestamp,
		}
		if e.Counterparty.Valid {
			item.Counterparty = e.Counterparty.UUID.String()
		}
		response = append(response, item)
	}

	writeJSON(w, http.StatusOK, response)
}
