package sync

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/iudanet/rentkeeper/pkg/api"
)

// DefaultPageSize is the page size of pulls and remote id listings.
const DefaultPageSize = 1000

// PageWindow returns the inclusive row range [from, to] of page i.
func PageWindow(page, size int) (from, to int) {
	from = page * size
	return from, from + size - 1
}

// ListAll fetches a whole remote collection window by window until a page comes back short.
func ListAll[T any](ctx context.Context, pageSize int, fetch func(ctx context.Context, offset, limit int) ([]T, error)) ([]T, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("invalid page size %d", pageSize)
	}

	var all []T
	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		from, to := PageWindow(page, pageSize)
		items, err := fetch(ctx, from, to-from+1)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}
		all = append(all, items...)

		if len(items) < pageSize {
			return all, nil
		}
	}
}

// PageProcessor consumes an ordered page of new rows. It returns how many rows
// from the front of the page were applied and whether it stopped on a dependency gap.
type PageProcessor[R api.Row] func(ctx context.Context, rows []R) (consumed int, stoppedOnGap bool, err error)

// PullStats summarizes one incremental pull.
type PullStats struct {
	Pages             int
	Fetched           int
	Consumed          int
	InvalidTimestamps int
	StoppedOnGap      bool
}

// Puller walks a remote stream ordered by (updated_at, remote_id) from a cursor.
type Puller[R api.Row] struct {
	// Fetch returns up to limit rows with updated_at >= since after skipping offset
	// of them, nil since meaning all rows.
	Fetch func(ctx context.Context, since *time.Time, offset, limit int) ([]R, error)

	// Commit persists an advanced cursor. Called after each page that moved it.
	Commit func(ctx context.Context, pos Position) error

	// OnInvalidTimestamp is called for each fetched row whose updated_at does not parse.
	OnInvalidTimestamp func(row R, err error)

	PageSize int
}

type orderedRow[R api.Row] struct {
	row    R
	pos    Position
	parsed bool
}

// Pull fetches pages after start and feeds new rows to process.
// It returns the last committed position, or start if nothing advanced.
//
// The since filter is inclusive, so rows at exactly the cursor timestamp are
// refetched and dropped client-side unless they sort after the cursor. While the
// cursor stays on one timestamp the next fetch skips the rows already seen there,
// so any number of rows sharing a timestamp is walked page by page.
func (p *Puller[R]) Pull(ctx context.Context, start *Position, process PageProcessor[R]) (*Position, PullStats, error) {
	var stats PullStats
	if p.PageSize <= 0 {
		return start, stats, fmt.Errorf("invalid page size %d", p.PageSize)
	}

	pos := start
	offset := 0
	// Строки без валидного updated_at не двигают курсор, применяем их один раз за pull
	applied := make(map[string]struct{})
	for {
		var since *time.Time
		if pos != nil {
			t := time.UnixMilli(pos.UpdatedAtMillis).UTC()
			since = &t
		}

		rows, err := p.Fetch(ctx, since, offset, p.PageSize)
		if err != nil {
			return pos, stats, fmt.Errorf("failed to fetch page %d: %w", stats.Pages, err)
		}
		stats.Pages++
		stats.Fetched += len(rows)

		ordered := p.order(rows, &stats)

		fresh := make([]orderedRow[R], 0, len(ordered))
		for _, r := range ordered {
			if !r.parsed {
				if _, ok := applied[r.pos.RemoteID]; !ok {
					fresh = append(fresh, r)
				}
				continue
			}
			if pos == nil || r.pos.After(*pos) {
				fresh = append(fresh, r)
			}
		}

		consumed, gap := 0, false
		if len(fresh) > 0 {
			batch := make([]R, len(fresh))
			for i, r := range fresh {
				batch[i] = r.row
			}

			consumed, gap, err = process(ctx, batch)
			if err != nil {
				return pos, stats, err
			}
			if consumed < 0 || consumed > len(batch) {
				return pos, stats, fmt.Errorf("processor consumed %d of %d rows", consumed, len(batch))
			}
			stats.Consumed += consumed
		}

		next := pos
		for _, r := range fresh[:consumed] {
			if !r.parsed {
				applied[r.pos.RemoteID] = struct{}{}
				continue
			}
			if next == nil || r.pos.After(*next) {
				candidate := r.pos
				next = &candidate
			}
		}

		advanced := next != nil && (pos == nil || next.After(*pos))
		if advanced {
			if err := p.Commit(ctx, *next); err != nil {
				return pos, stats, fmt.Errorf("failed to commit cursor: %w", err)
			}
		}

		nextOffset := seenAt(ordered, next)
		if pos != nil && next != nil && next.UpdatedAtMillis == pos.UpdatedAtMillis {
			nextOffset += offset
		}

		switch {
		case gap:
			stats.StoppedOnGap = true
			return next, stats, nil
		case len(rows) < p.PageSize:
			return next, stats, nil
		case !advanced && nextOffset == offset:
			// Страница без единой строки на курсоре: повтор вернул бы то же самое
			return next, stats, nil
		}
		pos, offset = next, nextOffset
	}
}

// seenAt counts the page rows at pos's timestamp that sort at or before pos.
func seenAt[R api.Row](ordered []orderedRow[R], pos *Position) int {
	if pos == nil {
		return 0
	}
	n := 0
	for _, r := range ordered {
		if r.parsed && r.pos.UpdatedAtMillis == pos.UpdatedAtMillis && !r.pos.After(*pos) {
			n++
		}
	}
	return n
}

// order parses timestamps and sorts the page by (updated_at, remote_id).
// Rows with unparseable timestamps go last in their fetch order.
func (p *Puller[R]) order(rows []R, stats *PullStats) []orderedRow[R] {
	ordered := make([]orderedRow[R], len(rows))
	for i, row := range rows {
		ordered[i] = orderedRow[R]{row: row, pos: Position{RemoteID: row.GetRemoteID()}}
		ms, err := api.ParseTimestamp(row.GetUpdatedAt())
		if err != nil {
			stats.InvalidTimestamps++
			if p.OnInvalidTimestamp != nil {
				p.OnInvalidTimestamp(row, err)
			}
			continue
		}
		ordered[i].pos.UpdatedAtMillis = ms
		ordered[i].parsed = true
	}

	slices.SortStableFunc(ordered, func(a, b orderedRow[R]) int {
		if a.parsed != b.parsed {
			if a.parsed {
				return -1
			}
			return 1
		}
		if !a.parsed {
			return 0
		}
		return cmp.Or(
			cmp.Compare(a.pos.UpdatedAtMillis, b.pos.UpdatedAtMillis),
			cmp.Compare(a.pos.RemoteID, b.pos.RemoteID),
		)
	})
	return ordered
}
