package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"
	drophttp "mintworks/contexts/issuance/drop-service/transport/http"
)

const (
	callerHeader     = "X-Caller-Address"
	maxDropBodyBytes = 1 << 20
)

func writeDropError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, drophttp.ErrorResponse{Code: code, Message: message})
}

func writeDropDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrUnauthorized):
		writeDropError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domainerrors.ErrMintPaused):
		writeDropError(w, http.StatusConflict, "mint_paused", err.Error())
	case errors.Is(err, domainerrors.ErrClaimPaused):
		writeDropError(w, http.StatusConflict, "claim_paused", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidQuantity):
		writeDropError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, domainerrors.ErrExceedsPerTxCap):
		writeDropError(w, http.StatusBadRequest, "exceeds_per_transaction_cap", err.Error())
	case errors.Is(err, domainerrors.ErrExceedsSupply):
		writeDropError(w, http.StatusConflict, "exceeds_supply", err.Error())
	case errors.Is(err, domainerrors.ErrInsufficientPayment):
		writeDropError(w, http.StatusPaymentRequired, "insufficient_payment", err.Error())
	case errors.Is(err, domainerrors.ErrNothingToClaim):
		writeDropError(w, http.StatusConflict, "nothing_to_claim", err.Error())
	case errors.Is(err, domainerrors.ErrNothingOwed):
		writeDropError(w, http.StatusConflict, "nothing_owed", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidAddress):
		writeDropError(w, http.StatusBadRequest, "invalid_address", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidAmount):
		writeDropError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidInput):
		writeDropError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domainerrors.ErrCollectionNotFound):
		writeDropError(w, http.StatusNotFound, "collection_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrAlreadyInitialized):
		writeDropError(w, http.StatusConflict, "already_initialized", err.Error())
	case errors.Is(err, domainerrors.ErrIdempotencyKeyConflict):
		writeDropError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	default:
		writeDropError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireDropCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := strings.TrimSpace(r.Header.Get(callerHeader))
	if caller == "" {
		writeDropError(w, http.StatusUnauthorized, "missing_caller", callerHeader+" header is required")
		return "", false
	}
	return caller, true
}

func decodeDropBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxDropBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeDropError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func (s *Server) logDropFailure(r *http.Request, err error) {
	s.logger.Warn("drop request failed",
		"event", "drop_http_request_failed",
		"module", "internal/platform/httpserver",
		"layer", "transport",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err.Error(),
	)
}

func (s *Server) handleDropCollection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.drop.Handler.GetCollectionHandler(r.Context())
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDropMintCost(w http.ResponseWriter, r *http.Request) {
	resp, err := s.drop.Handler.MintCostHandler(r.Context(), r.PathValue("address"))
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDropIsMember(w http.ResponseWriter, r *http.Request) {
	resp, err := s.drop.Handler.IsMemberHandler(r.Context(), r.PathValue("address"))
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDropWallet(w http.ResponseWriter, r *http.Request) {
	resp, err := s.drop.Handler.WalletOfOwnerHandler(r.Context(), r.PathValue("address"))
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDropPending(w http.ResponseWriter, r *http.Request) {
	resp, err := s.drop.Handler.PendingBalanceHandler(r.Context(), r.PathValue("address"))
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDropBuyerAccount(w http.ResponseWriter, r *http.Request) {
	resp, err := s.drop.Handler.BuyerAccountHandler(r.Context(), r.PathValue("address"))
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDropMint(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireDropCaller(w, r)
	if !ok {
		return
	}
	var req drophttp.MintRequest
	if !decodeDropBody(w, r, &req) {
		return
	}
	resp, err := s.drop.Handler.MintHandler(r.Context(), caller, r.Header.Get("Idempotency-Key"), req)
	if err != nil {
		s.logDropFailure(r, err)
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDropClaim(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireDropCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.drop.Handler.ClaimHandler(r.Context(), caller)
	if err != nil {
		s.logDropFailure(r, err)
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDropWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireDropCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.drop.Handler.WithdrawHandler(r.Context(), caller)
	if err != nil {
		s.logDropFailure(r, err)
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDropWithdrawPayments(w http.ResponseWriter, r *http.Request) {
	var req drophttp.WithdrawPaymentsRequest
	if !decodeDropBody(w, r, &req) {
		return
	}
	resp, err := s.drop.Handler.WithdrawPaymentsHandler(r.Context(), req)
	if err != nil {
		s.logDropFailure(r, err)
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDropReserveMint(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireDropCaller(w, r)
	if !ok {
		return
	}
	var req drophttp.ReserveMintRequest
	if !decodeDropBody(w, r, &req) {
		return
	}
	resp, err := s.drop.Handler.ReserveMintHandler(r.Context(), caller, req)
	if err != nil {
		s.logDropFailure(r, err)
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDropUpdateSettings(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireDropCaller(w, r)
	if !ok {
		return
	}
	var req drophttp.UpdateSettingsRequest
	if !decodeDropBody(w, r, &req) {
		return
	}
	resp, err := s.drop.Handler.UpdateSettingsHandler(r.Context(), caller, req)
	if err != nil {
		s.logDropFailure(r, err)
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDropUpdateWhitelist(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireDropCaller(w, r)
	if !ok {
		return
	}
	var req drophttp.UpdateWhitelistRequest
	if !decodeDropBody(w, r, &req) {
		return
	}
	resp, err := s.drop.Handler.UpdateWhitelistHandler(r.Context(), caller, req)
	if err != nil {
		s.logDropFailure(r, err)
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDropTransferOwnership(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireDropCaller(w, r)
	if !ok {
		return
	}
	var req drophttp.TransferOwnershipRequest
	if !decodeDropBody(w, r, &req) {
		return
	}
	resp, err := s.drop.Handler.TransferOwnershipHandler(r.Context(), caller, req)
	if err != nil {
		s.logDropFailure(r, err)
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDropRaiseMaxSupply(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireDropCaller(w, r)
	if !ok {
		return
	}
	var req drophttp.RaiseMaxSupplyRequest
	if !decodeDropBody(w, r, &req) {
		return
	}
	resp, err := s.drop.Handler.RaiseMaxSupplyHandler(r.Context(), caller, req)
	if err != nil {
		s.logDropFailure(r, err)
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
