package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"atm-ledger/internal/service"
)

// Register mounts the ledger API on router.
func Register(router *mux.Router, directory *service.Directory, accounts *service.AccountService, transactions *service.TransactionService) {
	userHandler := NewUserHandler(directory)
	accountHandler := NewAccountHandler(accounts)
	transactionHandler := NewTransactionHandler(directory, transactions)

	router.HandleFunc("/users", userHandler.Register).Methods(http.MethodPost)

	authed := router.NewRoute().Subrouter()
	authed.Use(RequireUser(directory))

	// Account routes
	authed.HandleFunc("/account", accountHandler.GetAccount).Methods(http.MethodGet)
	authed.HandleFunc("/account/deposit", accountHandler.Deposit).Methods(http.MethodPost)
	authed.HandleFunc("/account/withdraw", accountHandler.Withdraw).Methods(http.MethodPost)
	authed.HandleFunc("/account/history", accountHandler.History).Methods(http.MethodGet)

	// Transaction routes
	authed.HandleFunc("/transfers", transactionHandler.Transfer).Methods(http.MethodPost)
	authed.HandleFunc("/transfers/{transaction_id}", transactionHandler.GetTransaction).Methods(http.MethodGet)
}
