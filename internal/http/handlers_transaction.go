package http

import (
	"net/http"

	"debiti/internal/core"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, r, err)
		return
	}

	txn := core.LoanTransaction{
		BankID:      req.BankID,
		Date:        date,
		Description: req.Description,
		Amount:      amount,
		Installment: req.Installment,
	}
	created, err := s.debts.CreateTransaction(r.Context(), txn)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	bankID, err := queryInt64(r, "bank_id")
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	txns, err := s.debts.ListTransactions(r.Context(), bankID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResponse(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	txn, err := s.debts.GetTransaction(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponse(txn))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	var req updateTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	patch := core.TransactionPatch{
		Description: req.Description,
		Installment: req.Installment,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			respondBadRequest(w, err.Error())
			return
		}
		patch.Date = &date
	}
	if req.Amount != nil {
		amount, err := core.ParseAmount(*req.Amount)
		if err != nil {
			respondError(w, r, err)
			return
		}
		patch.Amount = &amount
	}

	updated, err := s.debts.UpdateTransaction(r.Context(), id, patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	if err := s.debts.DeleteTransaction(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
