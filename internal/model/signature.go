package model

import "time"

// QuerySignature is a fixed-length hex digest of a canonically
// serialized AtomicFactSet. Equal fact sets always yield equal
// signatures regardless of extraction order.
type QuerySignature string

// String returns the hex form of the signature
func (s QuerySignature) String() string { return string(s) }

// EpochStamp carries the freshness stamps resolved per request from
// read-only external sources. Nil fields mean the source was missing
// or unreachable; the stamp is used only for cache-key partitioning
// and freshness comparison, never persisted by this core.
type EpochStamp struct {
	KBEpoch       *time.Time `json:"kb_epoch,omitempty"`
	GoldenEpoch   *time.Time `json:"golden_epoch,omitempty"`
	SectorEpoch   *time.Time `json:"sector_epoch,omitempty"`
	ParserVersion string     `json:"parser_version,omitempty"`
}
