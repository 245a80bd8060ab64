package http

import (
	"fmt"
	"net/http"
	"strings"

	"financeiro/internal/core"
	"financeiro/internal/services"
)

type entryResponse struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	Amount      string  `json:"amount"`
	DueDate     string  `json:"due_date"`
	PaidDate    *string `json:"paid_date,omitempty"`
	PaidAmount  *string `json:"paid_amount,omitempty"`
}

func toEntryResponse(e core.LedgerEntry) entryResponse {
	resp := entryResponse{
		ID:          e.ID,
		Type:        string(e.Type),
		Status:      string(e.Status),
		Description: e.Description,
		Category:    e.Category,
		Notes:       e.Notes,
		Amount:      e.Amount.FormatDecimal(),
		DueDate:     e.DueDate.String(),
	}
	if e.PaidDate != nil {
		v := e.PaidDate.String()
		resp.PaidDate = &v
	}
	if e.PaidAmount != nil {
		v := e.PaidAmount.FormatDecimal()
		resp.PaidAmount = &v
	}
	return resp
}

type createEntryRequest struct {
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Notes       string  `json:"notes"`
	Amount      string  `json:"amount"`
	DueDate     string  `json:"due_date"`
	PaidDate    *string `json:"paid_date"`
	PaidAmount  *string `json:"paid_amount"`
}

type settleEntryRequest struct {
	Status     string  `json:"status"`
	PaidDate   *string `json:"paid_date"`
	PaidAmount *string `json:"paid_amount"`
}

// entryFilter parses the type and status query parameters. Both present
// means both must match.
func entryFilter(r *http.Request) (core.EntryFilter, error) {
	var f core.EntryFilter

	if v := strings.TrimSpace(r.URL.Query().Get("type")); v != "" {
		t := core.EntryType(v)
		if !t.Valid() {
			return f, fmt.Errorf("type: %w", core.ErrInvalidType)
		}
		f.Type = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		st := core.EntryStatus(v)
		if !st.Valid() {
			return f, fmt.Errorf("status: %w", core.ErrInvalidStatus)
		}
		f.Status = &st
	}

	return f, nil
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	f, err := entryFilter(r)
	if err != nil {
		writeValidationError(w, r, err)
		return
	}

	items, err := s.ledger.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]entryResponse, 0, len(items))
	for _, e := range items {
		out = append(out, toEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeValidationError(w, r, fmt.Errorf("amount: %w", err))
		return
	}
	dueDate, err := core.ParseDate(req.DueDate)
	if err != nil {
		writeValidationError(w, r, fmt.Errorf("due_date: %w", err))
		return
	}

	p := services.CreateEntryParams{
		Type:        core.EntryType(req.Type),
		Status:      core.EntryStatus(req.Status),
		Description: sanitizeInput(req.Description),
		Category:    sanitizeInput(req.Category),
		Notes:       sanitizeInput(req.Notes),
		Amount:      core.Money{Cents: cents},
		DueDate:     dueDate,
	}
	if req.PaidDate != nil {
		d, err := core.ParseDate(*req.PaidDate)
		if err != nil {
			writeValidationError(w, r, fmt.Errorf("paid_date: %w", err))
			return
		}
		p.PaidDate = &d
	}
	if req.PaidAmount != nil {
		paidCents, err := core.ParseDecimalToCents(*req.PaidAmount)
		if err != nil {
			writeValidationError(w, r, fmt.Errorf("paid_amount: %w", err))
			return
		}
		p.PaidAmount = &core.Money{Cents: paidCents}
	}

	e, err := s.ledger.Create(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, toEntryResponse(e))
}

func (s *Server) handleSettleEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidationError(w, r, err)
		return
	}

	var req settleEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	p := services.SettleEntryParams{
		Status: core.EntryStatus(req.Status),
	}
	if req.PaidDate != nil {
		d, err := core.ParseDate(*req.PaidDate)
		if err != nil {
			writeValidationError(w, r, fmt.Errorf("paid_date: %w", err))
			return
		}
		p.PaidDate = &d
	}
	if req.PaidAmount != nil {
		cents, err := core.ParseDecimalToCents(*req.PaidAmount)
		if err != nil {
			writeValidationError(w, r, fmt.Errorf("paid_amount: %w", err))
			return
		}
		p.PaidAmount = &core.Money{Cents: cents}
	}

	e, err := s.ledger.Settle(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, toEntryResponse(e))
}
