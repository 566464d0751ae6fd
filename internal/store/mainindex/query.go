package mainindex

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/avolkov/drivedb/internal/common"
	"github.com/avolkov/drivedb/internal/models"
	"github.com/avolkov/drivedb/internal/unixtime"
)

// BatchQuery describes one QueryBatch call.
type BatchQuery struct {
	// Limit is the maximum page size; must be >= 1.
	Limit int

	// Cursor resumes an earlier scan; nil starts a fresh one. The cursor is
	// mutated in place when rows are consumed and is also returned in the
	// result.
	Cursor *QueryBatchCursor

	// NewestFirst selects the scan direction; both sort keys always run in
	// the same direction.
	NewestFirst bool

	// SortByFileIDOnly orders by file id alone instead of (userDate, fileId).
	SortByFileIDOnly bool

	Filter Filter
}

// BatchResult is one page of file ids plus the advanced cursor. HasMore is
// true iff a further row exists beyond this page in the scan direction,
// inside the stop boundary.
type BatchResult struct {
	FileIDs []uuid.UUID
	HasMore bool
	Cursor  *QueryBatchCursor
}

// QueryBatch returns the next bounded page of matching file ids.
//
// The statement requests limit+1 rows; the extra row is a sentinel that
// only feeds HasMore and is never returned. Two independent bounds apply:
// the resume bound (strictly beyond the cursor position in scan direction)
// and the optional stop boundary (strictly before it, with the opposite
// comparison). For the compound order both bounds handle userDate ties via
// the file id.
func (r *SQLiteRepository) QueryBatch(ctx context.Context, scope models.DriveScope, q BatchQuery) (*BatchResult, error) {
	if q.Limit < 1 {
		return nil, fmt.Errorf("%w: limit must be >= 1, got %d", common.ErrInvalidArgument, q.Limit)
	}
	c := q.Cursor
	if c == nil {
		c = &QueryBatchCursor{}
	}
	if err := c.validate(q.SortByFileIDOnly); err != nil {
		return nil, err
	}
	p, err := buildPredicate(scope, q.Filter)
	if err != nil {
		return nil, err
	}

	// The resume bound continues the scan strictly beyond the last row
	// returned; the stop bound uses the opposite operator so the scan never
	// crosses the frozen snapshot edge.
	resumeOp, stopOp, ord := ">", "<", "ASC"
	if q.NewestFirst {
		resumeOp, stopOp, ord = "<", ">", "DESC"
	}

	var selectCols, orderBy string
	if q.SortByFileIDOnly {
		selectCols = `m.file_id`
		orderBy = `m.file_id ` + ord
		if c.PagingCursor != nil {
			p.add(`m.file_id `+resumeOp+` ?`, idArg(*c.PagingCursor))
		}
		if c.StopAtBoundary != nil {
			p.add(`m.file_id `+stopOp+` ?`, idArg(*c.StopAtBoundary))
		}
	} else {
		selectCols = `m.file_id, m.user_date`
		orderBy = `m.user_date ` + ord + `, m.file_id ` + ord
		if c.PagingCursor != nil {
			p.add(`((m.user_date = ? AND m.file_id `+resumeOp+` ?) OR m.user_date `+resumeOp+` ?)`,
				*c.UserDatePagingCursor, idArg(*c.PagingCursor), *c.UserDatePagingCursor)
		}
		if c.StopAtBoundary != nil {
			p.add(`((m.user_date = ? AND m.file_id `+stopOp+` ?) OR m.user_date `+stopOp+` ?)`,
				*c.UserDateStopAtBoundary, idArg(*c.StopAtBoundary), *c.UserDateStopAtBoundary)
		}
	}

	sel := `SELECT `
	if p.distinct {
		sel = `SELECT DISTINCT `
	}
	query := sel + selectCols + ` FROM drive_main_index AS m` + p.join +
		` WHERE ` + p.where() + ` ORDER BY ` + orderBy + ` LIMIT ?`
	args := append(p.args, q.Limit+1)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query batch: %w", err)
	}
	defer rows.Close()

	fileIDs := make([]uuid.UUID, 0, q.Limit)
	var lastDate unixtime.Millis
	hasMore := false
	for rows.Next() {
		if len(fileIDs) == q.Limit {
			// Sentinel row: more data exists beyond this page.
			hasMore = true
			break
		}
		var idBytes []byte
		if q.SortByFileIDOnly {
			err = rows.Scan(&idBytes)
		} else {
			err = rows.Scan(&idBytes, &lastDate)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch row: %w", err)
		}
		id, err := idFromBytes(idBytes)
		if err != nil {
			return nil, err
		}
		fileIDs = append(fileIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate batch rows: %w", err)
	}

	if len(fileIDs) > 0 {
		c.PagingCursor = cloneID(fileIDs[len(fileIDs)-1])
		if !q.SortByFileIDOnly {
			d := lastDate
			c.UserDatePagingCursor = &d
		}
	}

	return &BatchResult{FileIDs: fileIDs, HasMore: hasMore, Cursor: c}, nil
}

// QueryBatchAuto drains matching rows newest-first by file id while
// maintaining a moving boundary, so a caller that polls repeatedly with the
// returned cursor sees every row exactly once across passes.
//
// On the first call of a fresh pass the newest returned file id is frozen
// as the next boundary. When a pass drains (a page comes back underfilled),
// that boundary becomes the stop boundary of the next pass and the resume
// position resets; the remainder of the page is then filled from the
// newly-armed pass. The loop is the iterative form of that re-arm
// recursion, bounded so pathological inputs cannot spin.
func (r *SQLiteRepository) QueryBatchAuto(ctx context.Context, scope models.DriveScope, limit int, cursor *QueryBatchCursor, f Filter) (*BatchResult, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be >= 1, got %d", common.ErrInvalidArgument, limit)
	}
	c := cursor
	if c == nil {
		c = &QueryBatchCursor{}
	}

	out := make([]uuid.UUID, 0, limit)
	hasMore := false
	maxIter := limit + 2
	for i := 0; i < maxIter; i++ {
		freshPass := c.PagingCursor == nil
		res, err := r.QueryBatch(ctx, scope, BatchQuery{
			Limit:            limit - len(out),
			Cursor:           c,
			NewestFirst:      true,
			SortByFileIDOnly: true,
			Filter:           f,
		})
		if err != nil {
			return nil, err
		}
		c = res.Cursor
		hasMore = res.HasMore

		if len(res.FileIDs) > 0 {
			if freshPass {
				// Freeze the newest row of this pass as the watermark for
				// the next one.
				c.NextBoundaryCursor = cloneID(res.FileIDs[0])
			}
			// Later iterations read the newer re-armed pass, so their rows
			// sort ahead of what was already collected.
			page := append([]uuid.UUID{}, res.FileIDs...)
			out = append(page, out...)
		}

		if len(out) >= limit {
			break
		}

		// Page underfilled: the current pass is drained (the sentinel
		// protocol guarantees hasMore is false here). Re-arm against the
		// frozen boundary, or stop if there is nothing to re-arm.
		if c.NextBoundaryCursor == nil {
			c.PagingCursor = nil
			break
		}
		c.StopAtBoundary = c.NextBoundaryCursor
		c.NextBoundaryCursor = nil
		c.PagingCursor = nil
	}

	return &BatchResult{FileIDs: out, HasMore: hasMore, Cursor: c}, nil
}

// ModifiedQuery describes one QueryModified call.
type ModifiedQuery struct {
	// Limit is the maximum page size; must be >= 1.
	Limit int

	// Cursor is the modified-timestamp watermark; only rows strictly beyond
	// it are returned. Zero starts from the beginning.
	Cursor unixtime.Uniq

	// StopAtModified, when non-zero, is an additional inclusive floor:
	// rows must also satisfy modified >= StopAtModified. Note this is ANDed
	// with the cursor bound, an asymmetry kept from the batch engine's
	// boundary semantics.
	StopAtModified unixtime.Uniq

	Filter Filter
}

// ModifiedResult is one page of the modified-since scan. Cursor is the
// advanced watermark: strictly greater than every modified value returned
// so far.
type ModifiedResult struct {
	FileIDs []uuid.UUID
	HasMore bool
	Cursor  unixtime.Uniq
}

// QueryModified scans rows in ascending modified order, oldest unseen
// first. The modified column is monotonic-unique within one identity, so
// the single integer watermark cannot skip or duplicate rows. Rows never
// updated (modified still null) are not visible to this scan.
func (r *SQLiteRepository) QueryModified(ctx context.Context, scope models.DriveScope, q ModifiedQuery) (*ModifiedResult, error) {
	if q.Limit < 1 {
		return nil, fmt.Errorf("%w: limit must be >= 1, got %d", common.ErrInvalidArgument, q.Limit)
	}
	p, err := buildPredicate(scope, q.Filter)
	if err != nil {
		return nil, err
	}

	p.add(`m.modified > ?`, int64(q.Cursor))
	if q.StopAtModified != 0 {
		p.add(`m.modified >= ?`, int64(q.StopAtModified))
	}

	sel := `SELECT `
	if p.distinct {
		sel = `SELECT DISTINCT `
	}
	query := sel + `m.file_id, m.modified FROM drive_main_index AS m` + p.join +
		` WHERE ` + p.where() + ` ORDER BY m.modified ASC LIMIT ?`
	args := append(p.args, q.Limit+1)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query modified: %w", err)
	}
	defer rows.Close()

	fileIDs := make([]uuid.UUID, 0, q.Limit)
	watermark := q.Cursor
	hasMore := false
	for rows.Next() {
		if len(fileIDs) == q.Limit {
			hasMore = true
			break
		}
		var (
			idBytes  []byte
			modified int64
		)
		if err := rows.Scan(&idBytes, &modified); err != nil {
			return nil, fmt.Errorf("failed to scan modified row: %w", err)
		}
		id, err := idFromBytes(idBytes)
		if err != nil {
			return nil, err
		}
		fileIDs = append(fileIDs, id)
		watermark = unixtime.Uniq(modified)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate modified rows: %w", err)
	}

	return &ModifiedResult{FileIDs: fileIDs, HasMore: hasMore, Cursor: watermark}, nil
}
