// Package models defines the row shapes stored by the identity database.
package models

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/avolkov/drivedb/internal/common"
	"github.com/avolkov/drivedb/internal/unixtime"
)

// FileState describes the lifecycle state of a file.
type FileState int32

const (
	FileStateActive  FileState = 1
	FileStateDeleted FileState = 2
)

// FileSystemType separates the parallel file namespaces of a drive.
type FileSystemType int32

const (
	FileSystemStandard FileSystemType = 0
	FileSystemComment  FileSystemType = 1
)

// ArchivalStatus is an application-assigned archival tier.
type ArchivalStatus int32

const (
	ArchivalNone     ArchivalStatus = 0
	ArchivalArchived ArchivalStatus = 1
	ArchivalRemoved  ArchivalStatus = 2
)

// IntRange is an inclusive [Start, End] range over an integer column.
type IntRange struct {
	Start int32
	End   int32
}

// Valid reports whether the range is well formed.
func (r IntRange) Valid() bool { return r.Start <= r.End }

// TimeRange is an inclusive [Start, End] range over millisecond Unix time.
type TimeRange struct {
	Start unixtime.Millis
	End   unixtime.Millis
}

// Valid reports whether the range is well formed.
func (r TimeRange) Valid() bool { return r.Start <= r.End }

// DriveScope pins every statement to one identity and one drive.
type DriveScope struct {
	IdentityID uuid.UUID
	DriveID    uuid.UUID
}

// MainRecord is one row of the main index: all queryable fields of a file
// plus its opaque header blobs. The query engine never inspects header
// content.
type MainRecord struct {
	IdentityID uuid.UUID
	DriveID    uuid.UUID
	FileID     uuid.UUID

	// Optional cross-reference ids, each unique per (identity, drive)
	// among non-nil values.
	GlobalTransitID *uuid.UUID
	UniqueID        *uuid.UUID

	FileState             FileState
	FileType              int32
	DataType              int32
	ArchivalStatus        ArchivalStatus
	HistoryStatus         int32
	FileSystemType        FileSystemType
	RequiredSecurityGroup int32

	SenderID []byte
	GroupID  *uuid.UUID
	UserDate unixtime.Millis

	ByteCount int64

	// Opaque headers.
	EncryptedKeyHeader []byte
	VersionTag         string
	AppData            string
	ReactionSummary    string
	ServerData         string
	TransferHistory    string
	FileMetadata       string

	// Server-assigned, monotonic-unique. Created is set once on insert;
	// Modified is nil until the first update.
	Created  unixtime.Uniq
	Modified *unixtime.Uniq
}

// Validate enforces the assignment-time constraints of the row: a stored
// file always has at least one byte, and variable-length columns respect
// their documented maxima. Violations surface as ErrInvalidArgument before
// any statement executes.
func (r *MainRecord) Validate() error {
	if r.ByteCount < 1 {
		return fmt.Errorf("%w: byte count must be >= 1, got %d", common.ErrInvalidArgument, r.ByteCount)
	}
	if len(r.SenderID) > common.MaxSenderIDLength {
		return fmt.Errorf("%w: sender id exceeds %d bytes", common.ErrInvalidArgument, common.MaxSenderIDLength)
	}
	for name, l := range map[string]int{
		"encryptedKeyHeader": len(r.EncryptedKeyHeader),
		"appData":            len(r.AppData),
		"reactionSummary":    len(r.ReactionSummary),
		"serverData":         len(r.ServerData),
		"transferHistory":    len(r.TransferHistory),
		"fileMetadata":       len(r.FileMetadata),
	} {
		if l > common.MaxHeaderBlobLength {
			return fmt.Errorf("%w: header %s exceeds %d bytes", common.ErrInvalidArgument, name, common.MaxHeaderBlobLength)
		}
	}
	return nil
}
