package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iudanet/rentkeeper/internal/metrics"
	"github.com/iudanet/rentkeeper/internal/server/storage"
	"github.com/iudanet/rentkeeper/pkg/api"
)

// MaxBodyBytes limits the size of an upsert request body.
const MaxBodyBytes = 16 << 20

// Колонки, которыми владеет сервер
const (
	columnRemoteID  = "remote_id"
	columnUserID    = "user_id"
	columnUpdatedAt = "updated_at"
)

// RowsHandler serves /rest/v1/{table}
type RowsHandler struct {
	logger  *slog.Logger
	storage storage.RowStorage
	metrics *metrics.ServerMetrics
}

// NewRowsHandler creates a new rows handler
func NewRowsHandler(logger *slog.Logger, storage storage.RowStorage, m *metrics.ServerMetrics) *RowsHandler {
	return &RowsHandler{
		logger:  logger,
		storage: storage,
		metrics: m,
	}
}

// requestScope validates the table and the caller. The user_id query parameter,
// when present, must match the authenticated user.
func (h *RowsHandler) requestScope(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.logger.Error("User ID not found in context")
		WriteError(h.logger, w, http.StatusUnauthorized, "missing user")
		return "", "", false
	}

	table := mux.Vars(r)["table"]
	if !api.IsKnownTable(table) {
		WriteError(h.logger, w, http.StatusNotFound, fmt.Sprintf("%s: %q", storage.ErrUnknownTable, table))
		return "", "", false
	}

	if owner := r.URL.Query().Get(api.ParamUserID); owner != "" && owner != userID {
		h.logger.Warn("user_id mismatch", "expected", userID, "got", owner, "table", table)
		WriteError(h.logger, w, http.StatusForbidden, "user_id does not match token")
		return "", "", false
	}

	return table, userID, true
}

// Select обрабатывает GET /rest/v1/{table}
func (h *RowsHandler) Select(w http.ResponseWriter, r *http.Request) {
	table, userID, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	limit, offset, err := parseWindow(query.Get(api.ParamLimit), query.Get(api.ParamOffset))
	if err != nil {
		WriteError(h.logger, w, http.StatusBadRequest, err.Error())
		return
	}

	switch sel := query.Get(api.ParamSelect); sel {
	case "", "*":
	case api.SelectRemoteID:
		h.selectRemoteIDs(w, r, table, userID, offset, limit)
		return
	default:
		WriteError(h.logger, w, http.StatusBadRequest, fmt.Sprintf("unsupported select %q", sel))
		return
	}

	var since int64
	if s := query.Get(api.ParamSince); s != "" {
		since, err = api.ParseTimestamp(s)
		if err != nil {
			h.logger.Warn("Invalid since parameter", "since", s, "error", err)
			WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}
	}

	rows, err := h.storage.SelectRows(r.Context(), storage.RowQuery{
		Table:  table,
		UserID: userID,
		Since:  since,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.logger.Error("Failed to select rows", "error", err, "table", table, "user_id", userID)
		WriteError(h.logger, w, http.StatusInternalServerError, "failed to select rows")
		return
	}

	out, err := renderRows(rows)
	if err != nil {
		h.logger.Error("Failed to render rows", "error", err, "table", table)
		WriteError(h.logger, w, http.StatusInternalServerError, "failed to render rows")
		return
	}

	h.logger.Debug("Rows selected", "table", table, "user_id", userID, "since", since, "count", len(out))
	WriteJSON(h.logger, w, http.StatusOK, out)
}

func (h *RowsHandler) selectRemoteIDs(w http.ResponseWriter, r *http.Request, table, userID string, offset, limit int) {
	ids, err := h.storage.SelectRemoteIDs(r.Context(), table, userID, offset, limit)
	if err != nil {
		h.logger.Error("Failed to select remote ids", "error", err, "table", table, "user_id", userID)
		WriteError(h.logger, w, http.StatusInternalServerError, "failed to select remote ids")
		return
	}

	out := make([]api.RemoteIDRow, len(ids))
	for i, id := range ids {
		out[i] = api.RemoteIDRow{RemoteID: id}
	}
	WriteJSON(h.logger, w, http.StatusOK, out)
}

// Upsert обрабатывает POST /rest/v1/{table}?on_conflict=remote_id
func (h *RowsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	table, userID, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	if c := r.URL.Query().Get(api.ParamOnConflict); c != "" && c != columnRemoteID {
		WriteError(h.logger, w, http.StatusBadRequest, fmt.Sprintf("unsupported on_conflict %q", c))
		return
	}

	var payload []map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes)).Decode(&payload); err != nil {
		h.logger.Warn("Failed to decode rows", "error", err, "table", table)
		WriteError(h.logger, w, http.StatusBadRequest, "invalid request body")
		return
	}

	rows := make([]*storage.Row, 0, len(payload))
	for i, fields := range payload {
		row, err := storedRow(fields, userID)
		if errors.Is(err, storage.ErrForbidden) {
			WriteError(h.logger, w, http.StatusForbidden, fmt.Sprintf("row %d: %v", i, err))
			return
		}
		if err != nil {
			WriteError(h.logger, w, http.StatusBadRequest, fmt.Sprintf("row %d: %v", i, err))
			return
		}
		rows = append(rows, row)
	}

	saved, err := h.storage.UpsertRows(r.Context(), table, userID, rows)
	switch {
	case errors.Is(err, storage.ErrForbidden):
		h.logger.Warn("Upsert of foreign row rejected", "error", err, "user_id", userID)
		WriteError(h.logger, w, http.StatusForbidden, err.Error())
		return
	case errors.Is(err, storage.ErrInvalidRow):
		WriteError(h.logger, w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("Failed to upsert rows", "error", err, "table", table, "user_id", userID)
		WriteError(h.logger, w, http.StatusInternalServerError, "failed to upsert rows")
		return
	}

	h.metrics.RowsWritten.WithLabelValues(table).Add(float64(len(saved)))

	out, err := renderRows(saved)
	if err != nil {
		h.logger.Error("Failed to render rows", "error", err, "table", table)
		WriteError(h.logger, w, http.StatusInternalServerError, "failed to render rows")
		return
	}

	h.logger.Info("Rows upserted", "table", table, "user_id", userID, "count", len(saved))
	WriteJSON(h.logger, w, http.StatusCreated, out)
}

// Delete обрабатывает DELETE /rest/v1/{table}?remote_id=<id>
func (h *RowsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	table, userID, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	remoteID := r.URL.Query().Get(api.ParamRemoteID)
	if remoteID == "" {
		WriteError(h.logger, w, http.StatusBadRequest, "remote_id is required")
		return
	}

	deleted, err := h.storage.DeleteRow(r.Context(), table, userID, remoteID)
	if err != nil {
		h.logger.Error("Failed to delete row", "error", err, "table", table, "remote_id", remoteID)
		WriteError(h.logger, w, http.StatusInternalServerError, "failed to delete row")
		return
	}

	if deleted {
		h.metrics.RowsDeleted.WithLabelValues(table).Inc()
	}
	h.logger.Info("Row deleted", "table", table, "user_id", userID, "remote_id", remoteID, "existed", deleted)
	w.WriteHeader(http.StatusNoContent)
}

// storedRow strips the server-owned columns from fields.
func storedRow(fields map[string]json.RawMessage, userID string) (*storage.Row, error) {
	var remoteID string
	if raw, ok := fields[columnRemoteID]; ok {
		if err := json.Unmarshal(raw, &remoteID); err != nil {
			return nil, fmt.Errorf("%w: remote_id must be a string", storage.ErrInvalidRow)
		}
	}
	if remoteID == "" {
		return nil, fmt.Errorf("%w: remote_id is required", storage.ErrInvalidRow)
	}

	if raw, ok := fields[columnUserID]; ok {
		var owner string
		if err := json.Unmarshal(raw, &owner); err != nil {
			return nil, fmt.Errorf("%w: user_id must be a string", storage.ErrInvalidRow)
		}
		if owner != "" && owner != userID {
			return nil, fmt.Errorf("%s: %w", remoteID, storage.ErrForbidden)
		}
	}

	delete(fields, columnUserID)
	delete(fields, columnUpdatedAt)

	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode row: %w", err)
	}

	return &storage.Row{RemoteID: remoteID, UserID: userID, Body: b}, nil
}

// renderRows injects the server-owned columns back into each body.
func renderRows(rows []*storage.Row) ([]map[string]json.RawMessage, error) {
	out := make([]map[string]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		fields := map[string]json.RawMessage{}
		if len(row.Body) > 0 {
			if err := json.Unmarshal(row.Body, &fields); err != nil {
				return nil, fmt.Errorf("row %s: %w", row.RemoteID, err)
			}
			if fields == nil {
				fields = map[string]json.RawMessage{}
			}
		}

		var err error
		if fields[columnRemoteID], err = json.Marshal(row.RemoteID); err != nil {
			return nil, err
		}
		if fields[columnUserID], err = json.Marshal(row.UserID); err != nil {
			return nil, err
		}
		if fields[columnUpdatedAt], err = json.Marshal(api.FormatTimestamp(row.UpdatedAt)); err != nil {
			return nil, err
		}
		out = append(out, fields)
	}
	return out, nil
}

// parseWindow applies api.DefaultLimit and caps the limit at api.MaxLimit.
func parseWindow(limitStr, offsetStr string) (int, int, error) {
	limit := api.DefaultLimit
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 {
			return 0, 0, fmt.Errorf("invalid limit %q", limitStr)
		}
		limit = min(n, api.MaxLimit)
	}

	offset := 0
	if offsetStr != "" {
		n, err := strconv.Atoi(offsetStr)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("invalid offset %q", offsetStr)
		}
		offset = n
	}

	return limit, offset, nil
}
