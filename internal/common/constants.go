package common

// IDLength is the byte length of every binary identifier in the store
// (drive, file, transit, tag and ACL member ids).
const IDLength = 16

// Maximum lengths for variable-length columns, enforced at assignment
// time by the row models rather than at write time by the engine.
const (
	MaxKeyValueKeyLength = 256
	MaxSenderIDLength    = 256
	MaxHeaderBlobLength  = 1 << 20
)
