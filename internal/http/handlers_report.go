package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"debiti/internal/core"
)

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	report, err := s.debts.MonthlyReport(r.Context(), year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toMonthlyReportResponse(report))
}

func (s *Server) handleAllCategoryReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.debts.AllCategoryReports(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]categoryReportResponse, 0, len(reports))
	for _, rep := range reports {
		out = append(out, toCategoryReportResponse(rep))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	category, err := core.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	report, err := s.debts.CategoryReport(r.Context(), category)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCategoryReportResponse(report))
}

func (s *Server) handleDueDateReport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.debts.DueDateReport(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDueDateRowResponses(rows))
}

func (s *Server) handleUpcomingDueDates(w http.ResponseWriter, r *http.Request) {
	windowDays := 0
	if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 1 || d > 365 {
			respondBadRequest(w, "invalid days parameter")
			return
		}
		windowDays = d
	}
	rows, err := s.debts.UpcomingDueDates(r.Context(), windowDays)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDueDateRowResponses(rows))
}

func (s *Server) handleOverdueDueDates(w http.ResponseWriter, r *http.Request) {
	rows, err := s.debts.OverdueDueDates(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDueDateRowResponses(rows))
}
