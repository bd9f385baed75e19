package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/rentkeeper/internal/models"
)

func TestResolvePrefix(t *testing.T) {
	known := map[string]bool{"h1": true, "h2": true}
	mapFn := func(_ context.Context, parent string) (string, error) {
		if !known[parent] {
			return "", &MissingParentError{
				Entity:  models.KindLease,
				Missing: []MissingRef{{Field: "housing_remote_id", Parent: models.KindHousing, RemoteID: parent}},
			}
		}
		return "lease-of-" + parent, nil
	}

	tests := []struct {
		name    string
		rows    []string
		want    []string
		wantGap bool
	}{
		{name: "all resolvable", rows: []string{"h1", "h2"}, want: []string{"lease-of-h1", "lease-of-h2"}},
		{name: "gap in the middle stops there", rows: []string{"h1", "hx", "h2"}, want: []string{"lease-of-h1"}, wantGap: true},
		{name: "gap first", rows: []string{"hx", "h1"}, want: []string{}, wantGap: true},
		{name: "empty page", rows: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ResolvePrefix(context.Background(), tt.rows, mapFn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Mapped)
			assert.Equal(t, tt.wantGap, res.StoppedOnGap)
			if tt.wantGap {
				require.NotNil(t, res.Gap)
				assert.Equal(t, "hx", res.Gap.Missing[0].RemoteID)
			}
		})
	}
}

func TestResolvePrefix_PropagatesOtherErrors(t *testing.T) {
	boom := errors.New("disk failure")
	_, err := ResolvePrefix(context.Background(), []int{1, 2}, func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestMissingParentError_Message(t *testing.T) {
	err := &MissingParentError{
		Entity:   models.KindLease,
		RemoteID: "lease-1",
		Missing: []MissingRef{
			{Field: "housing_remote_id", Parent: models.KindHousing, RemoteID: "h-9"},
			{Field: "tenant_remote_id", Parent: models.KindTenant, RemoteID: "t-9"},
		},
	}
	assert.Equal(t, "lease lease-1: missing parents [housing_remote_id=h-9, tenant_remote_id=t-9]", err.Error())
}
