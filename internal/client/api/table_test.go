package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/rentkeeper/pkg/api"
)

func TestTable_Select(t *testing.T) {
	since := time.Date(2025, 3, 1, 10, 0, 0, 123_000_000, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/tenants", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "user-1", q.Get(api.ParamUserID))
		assert.Equal(t, "2025-03-01T10:00:00.123Z", q.Get(api.ParamSince))
		assert.Equal(t, "1000", q.Get(api.ParamLimit))
		assert.Equal(t, "2000", q.Get(api.ParamOffset))

		_ = json.NewEncoder(w).Encode([]api.TenantRow{
			{RowMeta: api.RowMeta{RemoteID: "t-1", UserID: "user-1", UpdatedAt: "2025-03-01T10:00:00.123Z"}, FirstName: "Ada"},
			{RowMeta: api.RowMeta{RemoteID: "t-2", UserID: "user-1", UpdatedAt: "2025-03-01T10:00:01.000Z"}, FirstName: "Grace"},
		})
	}))
	defer server.Close()

	table := NewTable[api.TenantRow](NewClient(server.URL, "tok"), api.TableTenants)
	rows, err := table.Select(context.Background(), api.SelectQuery{
		OwnerID: "user-1",
		Since:   &since,
		Limit:   1000,
		Offset:  2000,
	})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "t-1", rows[0].RemoteID)
	assert.Equal(t, "Grace", rows[1].FirstName)
	assert.Equal(t, api.TableTenants, table.Name())
}

func TestTable_SelectWithoutSince(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has(api.ParamSince))
		assert.False(t, q.Has(api.ParamOffset))
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	rows, err := NewTable[api.KeyRow](NewClient(server.URL, ""), api.TableKeys).
		Select(context.Background(), api.SelectQuery{OwnerID: "u", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTable_SelectRemoteIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/rest/v1/leases", r.URL.Path)
		assert.Equal(t, api.SelectRemoteID, q.Get(api.ParamSelect))
		assert.Equal(t, "1000", q.Get(api.ParamOffset))
		assert.Equal(t, "1000", q.Get(api.ParamLimit))
		_, _ = w.Write([]byte(`[{"remote_id":"l-1"},{"remote_id":"l-2"}]`))
	}))
	defer server.Close()

	ids, err := NewTable[api.LeaseRow](NewClient(server.URL, ""), api.TableLeases).
		SelectRemoteIDs(context.Background(), "u", 1000, 1000)
	require.NoError(t, err)
	assert.Equal(t, []string{"l-1", "l-2"}, ids)
}

func TestTable_Upsert(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, api.ParamRemoteID, r.URL.Query().Get(api.ParamOnConflict))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var rows []api.HousingRow
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "h-1", rows[0].RemoteID)
		assert.Equal(t, int64(95000), rows[0].RentCents)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(rows)
	}))
	defer server.Close()

	table := NewTable[api.HousingRow](NewClient(server.URL, ""), api.TableHousings)
	err := table.Upsert(context.Background(), "u", []api.HousingRow{
		{RowMeta: api.RowMeta{RemoteID: "h-1", UserID: "u"}, Label: "Studio", RentCents: 95000},
	})
	require.NoError(t, err)

	// Пустой пакет не отправляется
	require.NoError(t, table.Upsert(context.Background(), "u", nil))
	assert.Equal(t, 1, calls)
}

func TestTable_Delete(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "deleted", status: http.StatusNoContent},
		{name: "server down", status: http.StatusServiceUnavailable, wantErr: true},
		{name: "forbidden", status: http.StatusForbidden, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/rest/v1/indexation_events", r.URL.Path)
				assert.Equal(t, "e-1", r.URL.Query().Get(api.ParamRemoteID))
				assert.Equal(t, "u", r.URL.Query().Get(api.ParamUserID))
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			err := NewTable[api.IndexationEventRow](NewClient(server.URL, ""), api.TableIndexationEvents).
				Delete(context.Background(), "u", "e-1")
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.status, statusErr.StatusCode)
		})
	}
}
