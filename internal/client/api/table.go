package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iudanet/rentkeeper/pkg/api"
)

// Table is one rows endpoint of the REST API.
type Table[R api.Row] struct {
	client *Client
	name   string
}

// NewTable returns the remote table name served by client.
func NewTable[R api.Row](client *Client, name string) *Table[R] {
	return &Table[R]{client: client, name: name}
}

// Name returns the table name.
func (t *Table[R]) Name() string {
	return t.name
}

func (t *Table[R]) path() string {
	return api.RowsPathPrefix + t.name
}

// Select загружает страницу строк с updated_at >= q.Since
func (t *Table[R]) Select(ctx context.Context, q api.SelectQuery) ([]R, error) {
	query := url.Values{}
	query.Set(api.ParamUserID, q.OwnerID)
	if q.Since != nil {
		query.Set(api.ParamSince, api.FormatTime(*q.Since))
	}
	if q.Limit > 0 {
		query.Set(api.ParamLimit, strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		query.Set(api.ParamOffset, strconv.Itoa(q.Offset))
	}

	var rows []R
	if err := t.client.doRequest(ctx, http.MethodGet, t.path(), query, nil, &rows); err != nil {
		return nil, fmt.Errorf("select %s failed: %w", t.name, err)
	}
	return rows, nil
}

// SelectRemoteIDs загружает окно remote id владельца
func (t *Table[R]) SelectRemoteIDs(ctx context.Context, ownerID string, offset, limit int) ([]string, error) {
	query := url.Values{}
	query.Set(api.ParamUserID, ownerID)
	query.Set(api.ParamSelect, api.SelectRemoteID)
	query.Set(api.ParamLimit, strconv.Itoa(limit))
	query.Set(api.ParamOffset, strconv.Itoa(offset))

	var rows []api.RemoteIDRow
	if err := t.client.doRequest(ctx, http.MethodGet, t.path(), query, nil, &rows); err != nil {
		return nil, fmt.Errorf("select %s remote ids failed: %w", t.name, err)
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.RemoteID
	}
	return ids, nil
}

// Upsert отправляет строки, конфликт разрешается по remote_id
func (t *Table[R]) Upsert(ctx context.Context, ownerID string, rows []R) error {
	if len(rows) == 0 {
		return nil
	}

	query := url.Values{}
	query.Set(api.ParamUserID, ownerID)
	query.Set(api.ParamOnConflict, api.ParamRemoteID)

	if err := t.client.doRequest(ctx, http.MethodPost, t.path(), query, rows, nil); err != nil {
		return fmt.Errorf("upsert %d %s failed: %w", len(rows), t.name, err)
	}
	return nil
}

// Delete удаляет строку владельца
func (t *Table[R]) Delete(ctx context.Context, ownerID, remoteID string) error {
	query := url.Values{}
	query.Set(api.ParamUserID, ownerID)
	query.Set(api.ParamRemoteID, remoteID)

	if err := t.client.doRequest(ctx, http.MethodDelete, t.path(), query, nil, nil); err != nil {
		return fmt.Errorf("delete %s %s failed: %w", t.name, remoteID, err)
	}
	return nil
}
