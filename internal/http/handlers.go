package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"flussi/internal/core"
)

type flowJSON struct {
	ID           int64  `json:"id"`
	Amount       string `json:"amount"`
	AmountCents  int64  `json:"amount_cents"`
	Category     string `json:"category"`
	ExecutedAt   string `json:"executed_at"`
	EveryDays    int    `json:"every_days"`
	Note         string `json:"note,omitempty"`
	State        string `json:"state"`
	CommitmentID int64  `json:"commitment_id,omitempty"`
}

func toFlowJSON(f core.Flow) flowJSON {
	return flowJSON{
		ID:           f.ID,
		Amount:       f.Amount.Format(),
		AmountCents:  f.Amount.Cents,
		Category:     f.Category,
		ExecutedAt:   f.ExecutedAt.Format(time.RFC3339),
		EveryDays:    f.EveryDays,
		Note:         f.Note,
		State:        string(f.State),
		CommitmentID: f.CommitmentID,
	}
}

func toFlowListJSON(flows []core.Flow) []flowJSON {
	out := make([]flowJSON, 0, len(flows))
	for _, f := range flows {
		out = append(out, toFlowJSON(f))
	}
	return out
}

type monthBalanceJSON struct {
	Month        string `json:"month"`
	Balance      string `json:"balance"`
	BalanceCents int64  `json:"balance_cents"`
}

func toSeriesJSON(series []core.MonthBalance) []monthBalanceJSON {
	out := make([]monthBalanceJSON, 0, len(series))
	for _, mb := range series {
		out = append(out, monthBalanceJSON{
			Month:        mb.Month,
			Balance:      mb.Balance.Format(),
			BalanceCents: mb.Balance.Cents,
		})
	}
	return out
}

type createFlowRequest struct {
	Amount    string `json:"amount"`
	Category  string `json:"category"`
	Date      string `json:"date"` // YYYY-MM-DD
	EveryDays int    `json:"every_days"`
	Note      string `json:"note"`
	Projected bool   `json:"projected"`
}

func (s *Server) handleCreateFlow(w http.ResponseWriter, r *http.Request) {
	var req createFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cents, err := core.ParseSignedCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount: "+req.Amount)
		return
	}

	at, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date: want YYYY-MM-DD")
		return
	}

	f, err := s.ledgers.AddFlow(r.Context(),
		core.Money{Cents: cents},
		sanitizeInput(req.Category),
		at,
		req.EveryDays,
		sanitizeInput(req.Note),
		req.Projected)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidCategory),
			errors.Is(err, core.ErrInvalidRecurrence),
			errors.Is(err, core.ErrZeroTime):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Create flow failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save flow")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toFlowJSON(f))
}

func (s *Server) handleListFlows(w http.ResponseWriter, r *http.Request) {
	var flows []core.Flow
	switch state := r.URL.Query().Get("state"); state {
	case "projected":
		flows = s.ledgers.Projected()
	case "executed":
		flows = s.ledgers.Executed()
	case "":
		flows = append(s.ledgers.Executed(), s.ledgers.Projected()...)
	default:
		writeError(w, http.StatusBadRequest, "invalid state: want projected or executed")
		return
	}
	writeJSON(w, http.StatusOK, toFlowListJSON(flows))
}

type executeFlowRequest struct {
	Amount string `json:"amount"`
	Date   string `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
}

func (s *Server) handleExecuteFlow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid flow id")
		return
	}

	var req executeFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cents, err := core.ParseSignedCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount: "+req.Amount)
		return
	}

	executedAt := time.Now()
	if req.Date != "" {
		executedAt, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date: want YYYY-MM-DD")
			return
		}
	}

	realization, err := s.ledgers.ExecuteFlow(r.Context(), id, core.Money{Cents: cents}, executedAt)
	if err != nil {
		if errors.Is(err, core.ErrFlowNotFound) {
			writeError(w, http.StatusNotFound, "no projected flow with id "+strconv.FormatInt(id, 10))
			return
		}
		slog.ErrorContext(r.Context(), "Execute flow failed", "flow_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to execute flow")
		return
	}

	writeJSON(w, http.StatusOK, toFlowJSON(realization))
}

func (s *Server) handleRemoveFlow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid flow id")
		return
	}

	removed, err := s.ledgers.RemoveProjected(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Remove flow failed", "flow_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove flow")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "no projected flow with id "+strconv.FormatInt(id, 10))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDueFlows(w http.ResponseWriter, r *http.Request) {
	ref, err := parseDateParam(r, "date", time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toFlowListJSON(s.ledgers.DueFlows(ref)))
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance := s.ledgers.Balance()
	writeJSON(w, http.StatusOK, map[string]any{
		"account":       s.ledgers.AccountName(),
		"balance":       balance.Format(),
		"balance_cents": balance.Cents,
		"trend":         s.ledgers.Trend(),
	})
}

func (s *Server) handleProjectedBalance(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseDateParam(r, "until", time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	balance := s.ledgers.ProjectedBalance(asOf)
	writeJSON(w, http.StatusOK, map[string]any{
		"account":       s.ledgers.AccountName(),
		"as_of":         asOf.Format("2006-01-02"),
		"balance":       balance.Format(),
		"balance_cents": balance.Cents,
	})
}

func (s *Server) handleForwardSeries(w http.ResponseWriter, r *http.Request) {
	end, err := parseDateParam(r, "until", time.Time{})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if end.IsZero() {
		writeError(w, http.StatusBadRequest, "missing until parameter")
		return
	}
	writeJSON(w, http.StatusOK, toSeriesJSON(s.ledgers.ForwardSeries(end)))
}

func (s *Server) handleBackwardSeries(w http.ResponseWriter, r *http.Request) {
	end, err := parseDateParam(r, "until", time.Time{})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if end.IsZero() {
		writeError(w, http.StatusBadRequest, "missing until parameter")
		return
	}
	writeJSON(w, http.StatusOK, toSeriesJSON(s.ledgers.BackwardSeries(end)))
}
