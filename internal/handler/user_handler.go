package handler

import (
	"net/http"

	"atm-ledger/internal/service"
)

type UserHandler struct {
	directory *service.Directory
}

func NewUserHandler(directory *service.Directory) *UserHandler {
	return &UserHandler{
		directory: directory,
	}
}

type RegisterRequest struct {
	UserID         string `json:"user_id"`
	Credential     string `json:"credential"`
	InitialBalance string `json:"initial_balance"`
}

type RegisterResponse struct {
	UserID    string `json:"user_id"`
	AccountID string `json:"account_id"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	if req.InitialBalance == "" {
		req.InitialBalance = "0"
	}
	initialBalance, appErr := parseAmount(req.InitialBalance)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	accountID, err := h.directory.Register(req.UserID, req.Credential, initialBalance)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		UserID:    req.UserID,
		AccountID: accountID.String(),
	})
}
