package models

import (
	"github.com/google/uuid"

	"github.com/avolkov/drivedb/internal/unixtime"
)

// OutboxRecord is one pending outbound delivery of a file to a recipient.
type OutboxRecord struct {
	IdentityID    uuid.UUID
	DriveID       uuid.UUID
	FileID        uuid.UUID
	Recipient     string
	Type          int32
	Priority      int32
	AttemptCount  int32
	Added         unixtime.Uniq
	CheckoutStamp *unixtime.Uniq
	Value         []byte
}

// InboxRecord is one received item awaiting processing.
type InboxRecord struct {
	IdentityID uuid.UUID
	DriveID    uuid.UUID
	FileID     uuid.UUID
	Type       int32
	Priority   int32
	Added      unixtime.Uniq
	PopStamp   *unixtime.Uniq
	Value      []byte
}

// ConnectionStatus is the lifecycle state of an identity connection.
type ConnectionStatus int32

const (
	ConnectionPending   ConnectionStatus = 0
	ConnectionConnected ConnectionStatus = 1
	ConnectionBlocked   ConnectionStatus = 2
)

// ConnectionRecord is one row of the identity connection table.
type ConnectionRecord struct {
	IdentityID     uuid.UUID
	RemoteIdentity string
	Status         ConnectionStatus
	Created        unixtime.Uniq
	Data           []byte
}

// CircleMemberRecord maps one member into one circle.
type CircleMemberRecord struct {
	IdentityID uuid.UUID
	CircleID   uuid.UUID
	MemberID   uuid.UUID
	Data       []byte
}
