package http

import (
	"net/http"

	"debiti/internal/core"
)

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
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

	pay := core.Payment{
		BankID:        req.BankID,
		TransactionID: req.TransactionID,
		Date:          date,
		Amount:        amount,
	}
	created, err := s.debts.CreatePayment(r.Context(), pay)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toPaymentResponse(created))
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	bankID, err := queryInt64(r, "bank_id")
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	transactionID, err := queryInt64(r, "transaction_id")
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	pays, err := s.debts.ListPayments(r.Context(), bankID, transactionID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]paymentResponse, 0, len(pays))
	for _, p := range pays {
		out = append(out, toPaymentResponse(p))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	pay, err := s.debts.GetPayment(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPaymentResponse(pay))
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	var req updatePaymentRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	patch := core.PaymentPatch{
		BankID:        req.BankID,
		TransactionID: req.TransactionID,
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

	updated, err := s.debts.UpdatePayment(r.Context(), id, patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPaymentResponse(updated))
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	if err := s.debts.DeletePayment(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
