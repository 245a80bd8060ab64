package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"financeiro/internal/core"
)

type summaryResponse struct {
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	TotalIncome  string `json:"total_income"`
	TotalExpense string `json:"total_expense"`
	Balance      string `json:"balance"`
}

func toSummaryResponse(s core.Summary) summaryResponse {
	return summaryResponse{
		Year:         s.Year,
		Month:        s.Month,
		TotalIncome:  s.TotalIncome.FormatDecimal(),
		TotalExpense: s.TotalExpense.FormatDecimal(),
		Balance:      s.Balance.FormatDecimal(),
	}
}

// handleSummary serves aggregated totals for one month, defaulting to the
// current one.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r, s.now())
	if month < 1 || month > 12 || year < 1 {
		writeValidationError(w, r, fmt.Errorf("invalid period %04d-%02d", year, month))
		return
	}

	key := s.summaryCacheKey(year, month)
	if cached, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit", "year", year, "month", month)
		writeJSON(w, http.StatusOK, toSummaryResponse(cached))
		return
	}

	sum, err := s.summary.ReadSummary(r.Context(), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.summaryCache.Set(key, sum)
	writeJSON(w, http.StatusOK, toSummaryResponse(sum))
}
