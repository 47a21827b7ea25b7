package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atm-ledger/internal/config"
	"atm-ledger/internal/events"
	"atm-ledger/internal/repository"
	"atm-ledger/internal/service"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *Error          `json:"error"`
}

func newTestRouter(t *testing.T, limits config.LedgerConfig) *mux.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewStore(logger)

	router := mux.NewRouter()
	Register(router,
		service.NewDirectory(store, limits, logger),
		service.NewAccountService(store, logger),
		service.NewTransactionService(store, &events.RecordingPublisher{}, logger),
	)
	return router
}

func do(t *testing.T, router http.Handler, method, path, user, credential string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.SetBasicAuth(user, credential)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func register(t *testing.T, router http.Handler, user, credential, balance string) RegisterResponse {
	t.Helper()
	rec, env := do(t, router, http.MethodPost, "/users", "", "", RegisterRequest{
		UserID:         user,
		Credential:     credential,
		InitialBalance: balance,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp RegisterResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	return resp
}

func TestRegister(t *testing.T) {
	router := newTestRouter(t, config.LedgerConfig{})

	resp := register(t, router, "alice", "1234", "100")
	assert.Equal(t, "alice", resp.UserID)
	assert.NotEmpty(t, resp.AccountID)

	rec, env := do(t, router, http.MethodPost, "/users", "", "", RegisterRequest{UserID: "alice", Credential: "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_user", env.Error.Code)

	rec, env = do(t, router, http.MethodPost, "/users", "", "", RegisterRequest{UserID: "bob", Credential: "x", InitialBalance: "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_amount", env.Error.Code)

	rec, _ = do(t, router, http.MethodPost, "/users", "", "", map[string]string{"user_id": "bob", "pin": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDefaultsToZeroBalance(t *testing.T) {
	router := newTestRouter(t, config.LedgerConfig{})
	register(t, router, "carol", "pw", "")

	rec, env := do(t, router, http.MethodGet, "/account", "carol", "pw", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var acct AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &acct))
	assert.Equal(t, "0.00", acct.Balance)
}

func TestAuthentication(t *testing.T) {
	router := newTestRouter(t, config.LedgerConfig{})
	register(t, router, "alice", "1234", "100")

	tests := []struct {
		name       string
		user       string
		credential string
	}{
		{"missing credentials", "", ""},
		{"wrong credential", "alice", "0000"},
		{"unknown user", "mallory", "1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, router, http.MethodGet, "/account", tt.user, tt.credential, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "authentication_failed", env.Error.Code)
			assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestDepositWithdrawAndHistory(t *testing.T) {
	router := newTestRouter(t, config.LedgerConfig{})
	register(t, router, "alice", "1234", "100")

	rec, env := do(t, router, http.MethodPost, "/account/deposit", "alice", "1234", AmountRequest{Amount: "50"})
	require.Equal(t, http.StatusOK, rec.Code)
	var acct AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &acct))
	assert.Equal(t, "150.00", acct.Balance)

	rec, env = do(t, router, http.MethodPost, "/account/withdraw", "alice", "1234", AmountRequest{Amount: "200"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "insufficient_funds", env.Error.Code)

	rec, env = do(t, router, http.MethodPost, "/account/withdraw", "alice", "1234", AmountRequest{Amount: "30"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &acct))
	assert.Equal(t, "120.00", acct.Balance)

	rec, env = do(t, router, http.MethodPost, "/account/deposit", "alice", "1234", AmountRequest{Amount: "-5"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_amount", env.Error.Code)

	rec, env = do(t, router, http.MethodGet, "/account/history", "alice", "1234", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []EntryResponse
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "deposit", entries[0].Kind)
	assert.Equal(t, "50.00", entries[0].Amount)
	assert.Equal(t, "withdrawal", entries[1].Kind)
	assert.Equal(t, "30.00", entries[1].Amount)
}

func TestTransfer(t *testing.T) {
	router := newTestRouter(t, config.LedgerConfig{})
	alice := register(t, router, "alice", "1234", "500")
	bob := register(t, router, "bob", "5678", "100")

	rec, env := do(t, router, http.MethodPost, "/transfers", "alice", "1234", TransferRequest{
		DestinationUserID: "bob",
		Amount:            "200",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var receipt TransferResponse
	require.NoError(t, json.Unmarshal(env.Data, &receipt))
	assert.Equal(t, "completed", receipt.Status)
	assert.Equal(t, alice.AccountID, receipt.SourceAccountID)
	assert.Equal(t, bob.AccountID, receipt.DestinationAccountID)
	assert.Equal(t, "200.00", receipt.Amount)
	assert.Nil(t, receipt.IdempotencyKey)

	rec, env = do(t, router, http.MethodGet, "/account/history", "bob", "5678", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []EntryResponse
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "deposit", entries[0].Kind)
	assert.Empty(t, entries[0].Counterparty)
	assert.Equal(t, "transfer_in", entries[1].Kind)
	assert.Equal(t, alice.AccountID, entries[1].Counterparty)

	// Both parties can read the receipt.
	for _, party := range [][2]string{{"alice", "1234"}, {"bob", "5678"}} {
		rec, _ = do(t, router, http.MethodGet, "/transfers/"+receipt.TransactionID, party[0], party[1], nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestTransferErrors(t *testing.T) {
	router := newTestRouter(t, config.LedgerConfig{})
	register(t, router, "alice", "1234", "100")
	register(t, router, "bob", "5678", "0")

	tests := []struct {
		name       string
		req        TransferRequest
		wantStatus int
		wantCode   string
	}{
		{"self transfer", TransferRequest{DestinationUserID: "alice", Amount: "10"}, http.StatusBadRequest, "self_transfer"},
		{"unknown recipient", TransferRequest{DestinationUserID: "nobody", Amount: "10"}, http.StatusNotFound, "account_not_found"},
		{"zero amount", TransferRequest{DestinationUserID: "bob", Amount: "0"}, http.StatusBadRequest, "invalid_amount"},
		{"malformed amount", TransferRequest{DestinationUserID: "bob", Amount: "ten"}, http.StatusBadRequest, "invalid_amount"},
		{"insufficient funds", TransferRequest{DestinationUserID: "bob", Amount: "100.01"}, http.StatusUnprocessableEntity, "insufficient_funds"},
		{"bad idempotency key", TransferRequest{DestinationUserID: "bob", Amount: "1", IdempotencyKey: "not-a-uuid"}, http.StatusBadRequest, "invalid_input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, router, http.MethodPost, "/transfers", "alice", "1234", tt.req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestTransferReversedWhenRecipientLedgerFull(t *testing.T) {
	// A transfer needs two free slots on each side.
	router := newTestRouter(t, config.LedgerConfig{MaxEntries: 2})
	register(t, router, "alice", "1234", "100")
	register(t, router, "bob", "5678", "0")

	// Leave bob one slot short.
	rec, _ := do(t, router, http.MethodPost, "/account/deposit", "bob", "5678", AmountRequest{Amount: "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := do(t, router, http.MethodPost, "/transfers", "alice", "1234", TransferRequest{DestinationUserID: "bob", Amount: "40"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "transfer_failed", env.Error.Code)

	rec, env = do(t, router, http.MethodGet, "/account", "alice", "1234", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var acct AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &acct))
	assert.Equal(t, "100.00", acct.Balance)
}

func TestIdempotentTransfer(t *testing.T) {
	router := newTestRouter(t, config.LedgerConfig{})
	register(t, router, "alice", "1234", "100")
	register(t, router, "bob", "5678", "0")

	req := TransferRequest{
		DestinationUserID: "bob",
		Amount:            "25",
		IdempotencyKey:    "6f1c1a52-8f55-4b6e-9d43-2b1f0b9f3e11",
	}
	rec, env := do(t, router, http.MethodPost, "/transfers", "alice", "1234", req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var first TransferResponse
	require.NoError(t, json.Unmarshal(env.Data, &first))
	require.NotNil(t, first.IdempotencyKey)
	assert.Equal(t, req.IdempotencyKey, *first.IdempotencyKey)

	rec, env = do(t, router, http.MethodPost, "/transfers", "alice", "1234", req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var second TransferResponse
	require.NoError(t, json.Unmarshal(env.Data, &second))
	assert.Equal(t, first.TransactionID, second.TransactionID)

	rec, env = do(t, router, http.MethodGet, "/account", "alice", "1234", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var acct AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &acct))
	assert.Equal(t, "75.00", acct.Balance)
}

func TestGetTransactionHiddenFromOutsiders(t *testing.T) {
	router := newTestRouter(t, config.LedgerConfig{})
	register(t, router, "alice", "1234", "100")
	register(t, router, "bob", "5678", "0")
	register(t, router, "eve", "0000", "0")

	rec, env := do(t, router, http.MethodPost, "/transfers", "alice", "1234", TransferRequest{DestinationUserID: "bob", Amount: "10"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var receipt TransferResponse
	require.NoError(t, json.Unmarshal(env.Data, &receipt))

	rec, env = do(t, router, http.MethodGet, "/transfers/"+receipt.TransactionID, "eve", "0000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "transaction_not_found", env.Error.Code)

	rec, _ = do(t, router, http.MethodGet, "/transfers/not-a-uuid", "alice", "1234", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdempotencyKeyNotSharedBetweenUsers(t *testing.T) {
	router := newTestRouter(t, config.LedgerConfig{})
	alice := register(t, router, "alice", "1234", "500")
	register(t, router, "bob", "5678", "0")
	carol := register(t, router, "carol", "9999", "0")

	key := "0b6a3f7e-2c1d-4e5f-8a9b-1c2d3e4f5a6b"
	rec, _ := do(t, router, http.MethodPost, "/transfers", "alice", "1234", TransferRequest{
		DestinationUserID: "bob", Amount: "200", IdempotencyKey: key,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := do(t, router, http.MethodPost, "/transfers", "carol", "9999", TransferRequest{
		DestinationUserID: "bob", Amount: "0.01", IdempotencyKey: key,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "insufficient_funds", env.Error.Code)
	assert.NotContains(t, rec.Body.String(), alice.AccountID)

	rec, _ = do(t, router, http.MethodPost, "/account/deposit", "carol", "9999", AmountRequest{Amount: "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, router, http.MethodPost, "/transfers", "carol", "9999", TransferRequest{
		DestinationUserID: "bob", Amount: "0.01", IdempotencyKey: key,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var receipt TransferResponse
	require.NoError(t, json.Unmarshal(env.Data, &receipt))
	assert.Equal(t, carol.AccountID, receipt.SourceAccountID)
	assert.Equal(t, "0.01", receipt.Amount)

	rec, _ = do(t, router, http.MethodGet, "/transfers/"+receipt.TransactionID, "carol", "9999", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIdempotencyKeyReusedWithDifferentAmount(t *testing.T) {
	router := newTestRouter(t, config.LedgerConfig{})
	register(t, router, "alice", "1234", "100")
	register(t, router, "bob", "5678", "0")

	key := "7d0e9c1b-5a4f-4b3e-9c2d-8e7f6a5b4c3d"
	rec, _ := do(t, router, http.MethodPost, "/transfers", "alice", "1234", TransferRequest{
		DestinationUserID: "bob", Amount: "25", IdempotencyKey: key,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := do(t, router, http.MethodPost, "/transfers", "alice", "1234", TransferRequest{
		DestinationUserID: "bob", Amount: "30", IdempotencyKey: key,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "duplicate_transaction", env.Error.Code)

	rec, env = do(t, router, http.MethodGet, "/account", "alice", "1234", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var acct AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &acct))
	assert.Equal(t, "75.00", acct.Balance)
}
