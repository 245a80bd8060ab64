package http

import (
	"fmt"
	"net/http"

	"financeiro/internal/core"
	"financeiro/internal/services"
)

// recurringResponse is the wire shape of a recurring obligation. Amounts
// travel as decimal strings, dates as YYYY-MM-DD.
type recurringResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount"`
	Frequency   string `json:"frequency"`
	DueDay      *int   `json:"due_day,omitempty"`
	Category    string `json:"category,omitempty"`
	NextDueDate string `json:"next_due_date"`
	Active      bool   `json:"active"`
}

func toRecurringResponse(re core.RecurringExpense) recurringResponse {
	return recurringResponse{
		ID:          re.ID,
		Name:        re.Name,
		Description: re.Description,
		Amount:      re.Amount.FormatDecimal(),
		Frequency:   string(re.Frequency),
		DueDay:      re.DueDay,
		Category:    re.Category,
		NextDueDate: re.NextDueDate.String(),
		Active:      re.Active,
	}
}

type createRecurringRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Frequency   string `json:"frequency"`
	DueDay      *int   `json:"due_day"`
	Category    string `json:"category"`
}

type updateRecurringRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Amount      *string `json:"amount"`
	Frequency   *string `json:"frequency"`
	DueDay      *int    `json:"due_day"`
	Category    *string `json:"category"`
	Active      *bool   `json:"active"`
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	items, err := s.registry.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]recurringResponse, 0, len(items))
	for _, re := range items {
		out = append(out, toRecurringResponse(re))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req createRecurringRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeValidationError(w, r, fmt.Errorf("amount: %w", err))
		return
	}

	re, err := s.registry.Create(r.Context(), services.CreateExpenseParams{
		Name:        sanitizeInput(req.Name),
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
		Frequency:   core.Frequency(req.Frequency),
		DueDay:      req.DueDay,
		Category:    sanitizeInput(req.Category),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRecurringResponse(re))
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidationError(w, r, err)
		return
	}

	var req updateRecurringRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	p := services.UpdateExpenseParams{
		DueDay: req.DueDay,
		Active: req.Active,
	}
	if req.Name != nil {
		name := sanitizeInput(*req.Name)
		p.Name = &name
	}
	if req.Description != nil {
		desc := sanitizeInput(*req.Description)
		p.Description = &desc
	}
	if req.Category != nil {
		cat := sanitizeInput(*req.Category)
		p.Category = &cat
	}
	if req.Frequency != nil {
		freq := core.Frequency(*req.Frequency)
		p.Frequency = &freq
	}
	if req.Amount != nil {
		cents, err := core.ParseDecimalToCents(*req.Amount)
		if err != nil {
			writeValidationError(w, r, fmt.Errorf("amount: %w", err))
			return
		}
		p.Amount = &core.Money{Cents: cents}
	}

	re, err := s.registry.Update(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecurringResponse(re))
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidationError(w, r, err)
		return
	}

	if err := s.registry.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Conta removida com sucesso"})
}
