package mainindex

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/avolkov/drivedb/internal/common"
	"github.com/avolkov/drivedb/internal/unixtime"
)

// QueryBatchCursor is the caller-held pagination token threaded through
// successive QueryBatch/QueryBatchAuto calls. A zero-value cursor means
// "start of scan". The engine mutates it on every call that consumed rows;
// callers that need to resume across process restarts serialize it with
// Marshal and restore it with UnmarshalQueryBatchCursor.
type QueryBatchCursor struct {
	// PagingCursor is the file id of the last row returned in the current
	// scan direction; nil means the scan has not started.
	PagingCursor *uuid.UUID `json:"pagingCursor,omitempty"`

	// UserDatePagingCursor accompanies PagingCursor when sorting by
	// (userDate, fileId); unused for the file-id-only order.
	UserDatePagingCursor *unixtime.Millis `json:"userDatePagingCursor,omitempty"`

	// StopAtBoundary is an exclusive far edge the scan must not cross,
	// pinning the scan to a snapshot taken earlier.
	StopAtBoundary *uuid.UUID `json:"stopAtBoundary,omitempty"`

	// UserDateStopAtBoundary accompanies StopAtBoundary for the compound order.
	UserDateStopAtBoundary *unixtime.Millis `json:"userDateStopAtBoundary,omitempty"`

	// NextBoundaryCursor is the newest file id seen at the start of the
	// current pass; QueryBatchAuto promotes it to StopAtBoundary once the
	// pass drains.
	NextBoundaryCursor *uuid.UUID `json:"nextBoundaryCursor,omitempty"`
}

// Marshal serializes the cursor for callers that persist scan state.
func (c *QueryBatchCursor) Marshal() ([]byte, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return b, nil
}

// UnmarshalQueryBatchCursor restores a cursor serialized with Marshal.
func UnmarshalQueryBatchCursor(b []byte) (*QueryBatchCursor, error) {
	var c QueryBatchCursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidCursor, err)
	}
	return &c, nil
}

// validate checks the cursor's internal consistency for the chosen sort
// order: the compound order cannot resume or stop on a file id without its
// companion date.
func (c *QueryBatchCursor) validate(sortByFileIDOnly bool) error {
	if sortByFileIDOnly {
		return nil
	}
	if c.PagingCursor != nil && c.UserDatePagingCursor == nil {
		return fmt.Errorf("%w: paging cursor is missing its user date companion", common.ErrInvalidCursor)
	}
	if c.StopAtBoundary != nil && c.UserDateStopAtBoundary == nil {
		return fmt.Errorf("%w: stop boundary is missing its user date companion", common.ErrInvalidCursor)
	}
	return nil
}

func cloneID(u uuid.UUID) *uuid.UUID {
	c := u
	return &c
}
