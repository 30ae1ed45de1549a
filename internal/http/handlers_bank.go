package http

import (
	"net/http"

	"debiti/internal/core"
)

func (s *Server) handleCreateBank(w http.ResponseWriter, r *http.Request) {
	var req createBankRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	limit, err := core.ParseAmount(req.CreditLimit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		respondError(w, r, err)
		return
	}

	bank := core.Bank{
		Name:        req.Name,
		CreditLimit: limit,
		Category:    category,
		BillingDay:  req.BillingDay,
		DueDay:      req.DueDay,
	}
	created, err := s.debts.CreateBank(r.Context(), bank)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toBankResponse(created))
}

func (s *Server) handleListBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := s.debts.ListBanks(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]bankResponse, 0, len(banks))
	for _, b := range banks {
		out = append(out, toBankResponse(b))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBank(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	bank, err := s.debts.GetBank(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toBankResponse(bank))
}

func (s *Server) handleUpdateBank(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	var req updateBankRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	patch := core.BankPatch{
		Name:       req.Name,
		BillingDay: req.BillingDay,
		DueDay:     req.DueDay,
	}
	if req.CreditLimit != nil {
		limit, err := core.ParseAmount(*req.CreditLimit)
		if err != nil {
			respondError(w, r, err)
			return
		}
		patch.CreditLimit = &limit
	}
	if req.Category != nil {
		category, err := core.ParseCategory(*req.Category)
		if err != nil {
			respondError(w, r, err)
			return
		}
		patch.Category = &category
	}

	updated, err := s.debts.UpdateBank(r.Context(), id, patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toBankResponse(updated))
}

func (s *Server) handleDeleteBank(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	if err := s.debts.DeleteBank(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
