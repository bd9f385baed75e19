package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/rentkeeper/pkg/api"
)

func TestPageWindow(t *testing.T) {
	from, to := PageWindow(0, 1000)
	assert.Equal(t, 0, from)
	assert.Equal(t, 999, to)

	from, to = PageWindow(1, 1000)
	assert.Equal(t, 1000, from)
	assert.Equal(t, 1999, to)
}

func TestListAll_TwoPages(t *testing.T) {
	ids := make([]string, 1500)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%04d", i)
	}

	var windows [][2]int
	got, err := ListAll(context.Background(), 1000, func(_ context.Context, offset, limit int) ([]string, error) {
		windows = append(windows, [2]int{offset, offset + limit - 1})
		if offset >= len(ids) {
			return nil, nil
		}
		return ids[offset:min(offset+limit, len(ids))], nil
	})
	require.NoError(t, err)

	assert.Len(t, got, 1500)
	assert.Equal(t, [][2]int{{0, 999}, {1000, 1999}}, windows)
}

func TestListAll_ExactMultipleNeedsTrailingEmptyPage(t *testing.T) {
	calls := 0
	got, err := ListAll(context.Background(), 2, func(_ context.Context, offset, limit int) ([]int, error) {
		calls++
		all := []int{1, 2, 3, 4}
		if offset >= len(all) {
			return nil, nil
		}
		return all[offset:min(offset+limit, len(all))], nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, got)
	assert.Equal(t, 3, calls)
}

func TestListAll_Errors(t *testing.T) {
	_, err := ListAll(context.Background(), 0, func(context.Context, int, int) ([]int, error) { return nil, nil })
	assert.Error(t, err)

	_, err = ListAll(context.Background(), 10, func(context.Context, int, int) ([]int, error) { return nil, errRemoteDown })
	assert.ErrorIs(t, err, errRemoteDown)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ListAll(ctx, 10, func(context.Context, int, int) ([]int, error) { return nil, nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func row(id string, ms int64) api.TenantRow {
	return api.TenantRow{RowMeta: api.RowMeta{RemoteID: id, UpdatedAt: api.FormatTimestamp(ms)}}
}

// streamFetch serves rows sorted the way the server sorts them, honoring inclusive since and offset.
func streamFetch(rows []api.TenantRow) func(context.Context, *time.Time, int, int) ([]api.TenantRow, error) {
	return func(_ context.Context, since *time.Time, offset, limit int) ([]api.TenantRow, error) {
		var out []api.TenantRow
		for _, r := range rows {
			ms, err := api.ParseTimestamp(r.UpdatedAt)
			if err == nil && since != nil && ms < since.UnixMilli() {
				continue
			}
			if offset > 0 {
				offset--
				continue
			}
			out = append(out, r)
			if len(out) == limit {
				break
			}
		}
		return out, nil
	}
}

func collect(consumed *[]string) PageProcessor[api.TenantRow] {
	return func(_ context.Context, rows []api.TenantRow) (int, bool, error) {
		for _, r := range rows {
			*consumed = append(*consumed, r.RemoteID)
		}
		return len(rows), false, nil
	}
}

func TestPuller_WalksAllPages(t *testing.T) {
	rows := []api.TenantRow{row("a", 10), row("b", 20), row("c", 30), row("d", 40), row("e", 50)}

	var commits []Position
	p := &Puller[api.TenantRow]{
		PageSize: 2,
		Fetch:    streamFetch(rows),
		Commit: func(_ context.Context, pos Position) error {
			commits = append(commits, pos)
			return nil
		},
	}

	var consumed []string
	final, stats, err := p.Pull(context.Background(), nil, collect(&consumed))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, consumed)
	require.NotNil(t, final)
	assert.Equal(t, Position{UpdatedAtMillis: 50, RemoteID: "e"}, *final)

	// Курсор только растёт
	for i := 1; i < len(commits); i++ {
		assert.True(t, commits[i].After(commits[i-1]))
	}
	assert.Equal(t, 5, stats.Consumed)
}

func TestPuller_SkipsRowsAtOrBeforeCursor(t *testing.T) {
	rows := []api.TenantRow{row("a", 10), row("b", 10), row("c", 10), row("d", 11)}
	start := &Position{UpdatedAtMillis: 10, RemoteID: "b"}

	p := &Puller[api.TenantRow]{
		PageSize: 10,
		Fetch:    streamFetch(rows),
		Commit:   func(context.Context, Position) error { return nil },
	}

	var consumed []string
	final, _, err := p.Pull(context.Background(), start, collect(&consumed))
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, consumed)
	assert.Equal(t, Position{UpdatedAtMillis: 11, RemoteID: "d"}, *final)
}

func TestPuller_TieBreakIndependentOfFetchOrder(t *testing.T) {
	forward := []api.TenantRow{row("r-1", 100), row("r-2", 100), row("r-3", 100)}
	reversed := []api.TenantRow{row("r-3", 100), row("r-2", 100), row("r-1", 100)}

	for _, page := range [][]api.TenantRow{forward, reversed} {
		p := &Puller[api.TenantRow]{
			PageSize: 10,
			Fetch: func(context.Context, *time.Time, int, int) ([]api.TenantRow, error) {
				return page, nil
			},
			Commit: func(context.Context, Position) error { return nil },
		}

		var consumed []string
		_, _, err := p.Pull(context.Background(), nil, collect(&consumed))
		require.NoError(t, err)
		assert.Equal(t, []string{"r-1", "r-2", "r-3"}, consumed)
	}
}

func TestPuller_StopsAtGapWithoutPassingIt(t *testing.T) {
	rows := []api.TenantRow{row("a", 10), row("b", 20), row("c", 30)}

	var commits []Position
	p := &Puller[api.TenantRow]{
		PageSize: 10,
		Fetch:    streamFetch(rows),
		Commit: func(_ context.Context, pos Position) error {
			commits = append(commits, pos)
			return nil
		},
	}

	final, stats, err := p.Pull(context.Background(), nil, func(_ context.Context, rows []api.TenantRow) (int, bool, error) {
		// "b" ждёт родителя: применён только "a"
		return 1, true, nil
	})
	require.NoError(t, err)

	assert.True(t, stats.StoppedOnGap)
	assert.Equal(t, []Position{{UpdatedAtMillis: 10, RemoteID: "a"}}, commits)
	assert.Equal(t, Position{UpdatedAtMillis: 10, RemoteID: "a"}, *final)
}

func TestPuller_GapOnFirstRowKeepsCursor(t *testing.T) {
	start := &Position{UpdatedAtMillis: 5, RemoteID: "z"}
	p := &Puller[api.TenantRow]{
		PageSize: 10,
		Fetch:    streamFetch([]api.TenantRow{row("a", 10)}),
		Commit: func(context.Context, Position) error {
			t.Fatal("cursor must not move")
			return nil
		},
	}

	final, stats, err := p.Pull(context.Background(), start, func(context.Context, []api.TenantRow) (int, bool, error) {
		return 0, true, nil
	})
	require.NoError(t, err)
	assert.True(t, stats.StoppedOnGap)
	assert.Equal(t, start, final)
}

func TestPuller_SharedTimestampLargerThanPage(t *testing.T) {
	// Одна пачка upsert: все строки с одним updated_at
	rows := []api.TenantRow{row("a", 10), row("b", 10), row("c", 10), row("d", 10), row("e", 10), row("f", 11)}

	var offsets []int
	fetch := streamFetch(rows)
	p := &Puller[api.TenantRow]{
		PageSize: 2,
		Fetch: func(ctx context.Context, since *time.Time, offset, limit int) ([]api.TenantRow, error) {
			offsets = append(offsets, offset)
			return fetch(ctx, since, offset, limit)
		},
		Commit: func(context.Context, Position) error { return nil },
	}

	var consumed []string
	final, stats, err := p.Pull(context.Background(), nil, collect(&consumed))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, consumed)
	assert.Equal(t, Position{UpdatedAtMillis: 11, RemoteID: "f"}, *final)
	assert.Equal(t, []int{0, 2, 4, 1}, offsets)
	assert.Equal(t, 6, stats.Consumed)
}

func TestPuller_ResumesInsideTimestampFromCursor(t *testing.T) {
	rows := []api.TenantRow{row("a", 10), row("b", 10), row("c", 10), row("d", 10), row("e", 10)}
	start := &Position{UpdatedAtMillis: 10, RemoteID: "d"}

	p := &Puller[api.TenantRow]{
		PageSize: 2,
		Fetch:    streamFetch(rows),
		Commit:   func(context.Context, Position) error { return nil },
	}

	var consumed []string
	final, _, err := p.Pull(context.Background(), start, collect(&consumed))
	require.NoError(t, err)

	// Первые две страницы целиком на курсоре или до него
	assert.Equal(t, []string{"e"}, consumed)
	assert.Equal(t, Position{UpdatedAtMillis: 10, RemoteID: "e"}, *final)
}

func TestPuller_FullPageOfInvalidTimestampsStops(t *testing.T) {
	page := []api.TenantRow{
		{RowMeta: api.RowMeta{RemoteID: "x", UpdatedAt: "bad"}},
		{RowMeta: api.RowMeta{RemoteID: "y", UpdatedAt: "bad"}},
	}

	calls := 0
	p := &Puller[api.TenantRow]{
		PageSize: 2,
		Fetch: func(context.Context, *time.Time, int, int) ([]api.TenantRow, error) {
			calls++
			return page, nil
		},
		Commit: func(context.Context, Position) error {
			t.Fatal("invalid rows must not move the cursor")
			return nil
		},
	}

	var consumed []string
	final, stats, err := p.Pull(context.Background(), nil, collect(&consumed))
	require.NoError(t, err)
	assert.Nil(t, final)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"x", "y"}, consumed)
	assert.Equal(t, 2, stats.InvalidTimestamps)
}

func TestPuller_InvalidTimestampAppliedOncePerPull(t *testing.T) {
	bad := api.TenantRow{RowMeta: api.RowMeta{RemoteID: "bad", UpdatedAt: "yesterday"}}
	pages := [][]api.TenantRow{
		{row("a", 10), bad},
		{row("b", 20), bad},
		{bad},
	}

	calls := 0
	p := &Puller[api.TenantRow]{
		PageSize: 2,
		Fetch: func(context.Context, *time.Time, int, int) ([]api.TenantRow, error) {
			page := pages[min(calls, len(pages)-1)]
			calls++
			return page, nil
		},
		Commit: func(context.Context, Position) error { return nil },
	}

	var consumed []string
	_, _, err := p.Pull(context.Background(), nil, collect(&consumed))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "bad", "b"}, consumed)
	assert.Equal(t, 3, calls)
}

func TestPuller_InvalidTimestampsAppliedLastWithoutCursor(t *testing.T) {
	bad := api.TenantRow{RowMeta: api.RowMeta{RemoteID: "bad", UpdatedAt: "yesterday"}}
	page := []api.TenantRow{bad, row("b", 20), row("a", 10)}

	var invalid []string
	var commits []Position
	p := &Puller[api.TenantRow]{
		PageSize: 10,
		Fetch: func(context.Context, *time.Time, int, int) ([]api.TenantRow, error) {
			return page, nil
		},
		Commit: func(_ context.Context, pos Position) error {
			commits = append(commits, pos)
			return nil
		},
		OnInvalidTimestamp: func(r api.TenantRow, err error) {
			invalid = append(invalid, r.RemoteID)
		},
	}

	var consumed []string
	final, stats, err := p.Pull(context.Background(), nil, collect(&consumed))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "bad"}, consumed)
	assert.Equal(t, []string{"bad"}, invalid)
	assert.Equal(t, 1, stats.InvalidTimestamps)
	assert.Equal(t, Position{UpdatedAtMillis: 20, RemoteID: "b"}, *final)
	assert.Len(t, commits, 1)
}

func TestPuller_Errors(t *testing.T) {
	failing := &Puller[api.TenantRow]{
		PageSize: 10,
		Fetch: func(context.Context, *time.Time, int, int) ([]api.TenantRow, error) {
			return nil, errRemoteDown
		},
		Commit: func(context.Context, Position) error { return nil },
	}
	_, _, err := failing.Pull(context.Background(), nil, collect(new([]string)))
	assert.ErrorIs(t, err, errRemoteDown)

	commitErr := errors.New("disk full")
	committing := &Puller[api.TenantRow]{
		PageSize: 10,
		Fetch:    streamFetch([]api.TenantRow{row("a", 1)}),
		Commit:   func(context.Context, Position) error { return commitErr },
	}
	final, _, err := committing.Pull(context.Background(), nil, collect(new([]string)))
	assert.ErrorIs(t, err, commitErr)
	assert.Nil(t, final)

	invalid := &Puller[api.TenantRow]{}
	_, _, err = invalid.Pull(context.Background(), nil, collect(new([]string)))
	assert.Error(t, err)
}
