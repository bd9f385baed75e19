package sync

import (
	"context"
	"errors"
)

// Resolution is the applicable prefix of a page.
type Resolution[E any] struct {
	Gap          *MissingParentError
	Mapped       []E
	StoppedOnGap bool
}

// ResolvePrefix maps rows in order and stops at the first dependency gap.
// Rows after a gap are never mapped so the cursor cannot move past them.
// Any error other than *MissingParentError is returned as is.
func ResolvePrefix[R, E any](ctx context.Context, rows []R, mapFn func(ctx context.Context, row R) (E, error)) (Resolution[E], error) {
	res := Resolution[E]{Mapped: make([]E, 0, len(rows))}

	for _, row := range rows {
		entity, err := mapFn(ctx, row)
		if err != nil {
			var gap *MissingParentError
			if errors.As(err, &gap) {
				res.StoppedOnGap = true
				res.Gap = gap
				return res, nil
			}
			return res, err
		}
		res.Mapped = append(res.Mapped, entity)
	}

	return res, nil
}
