package collection

import (
	"fmt"
)

// Status is the mint status of one token as seen by this process.
type Status int

const (
	// StatusAvailable marks a token that can be minted.
	StatusAvailable Status = iota
	// StatusSubmitted marks a token whose mint transaction is in flight.
	StatusSubmitted
	// StatusOptimistic marks a token whose mint the ledger confirmed but
	// that has not been re-read from the ledger yet.
	StatusOptimistic
	// StatusMinted marks a token reported as minted by the ledger.
	StatusMinted
)

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusSubmitted:
		return "submitted"
	case StatusOptimistic:
		return "optimistic"
	case StatusMinted:
		return "minted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Record is the decoded on-chain collection object.
type Record struct {
	ID          string
	Version     string
	Name        string
	Description string
	MaxSupply   uint64
	MintedCount uint64
	MintPrice   uint64
	// BaseURI is the manifest reference as stored: a URL or a bare blob ID.
	BaseURI    string
	Creator    string
	RoyaltyBPS uint64
	HasRoyalty bool
}

// TokenItem is one token of the collection, derived from the record and
// the manifest entry at Ordinal.
type TokenItem struct {
	Ordinal     int    `json:"ordinal"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Minted      bool   `json:"minted"`
	Status      Status `json:"status"`
}

const (
	WarningMintedExceedsSupply   = "minted-exceeds-supply"
	WarningMintedExceedsManifest = "minted-exceeds-manifest"
)

// ConsistencyWarning reports a record that disagrees with itself or its
// manifest. It is surfaced alongside the state and never aborts a read.
type ConsistencyWarning struct {
	CollectionID string
	Kind         string
	MintedCount  uint64
	Limit        uint64
}

func (w ConsistencyWarning) Error() string {
	switch w.Kind {
	case WarningMintedExceedsSupply:
		return fmt.Sprintf("collection %s minted count %d exceeds max supply %d", w.CollectionID, w.MintedCount, w.Limit)
	case WarningMintedExceedsManifest:
		return fmt.Sprintf("collection %s minted count %d exceeds manifest length %d", w.CollectionID, w.MintedCount, w.Limit)
	default:
		return fmt.Sprintf("collection %s inconsistent: %s", w.CollectionID, w.Kind)
	}
}

// State is a reconstructed collection.
type State struct {
	Record      Record
	Items       []TokenItem
	ManifestURL string
	Warnings    []ConsistencyWarning
	// PendingMints counts mints applied locally that a ledger read has not
	// confirmed yet.
	PendingMints int
}

// PreviewImage returns the first token's image URL, or "" for an empty state.
func (s State) PreviewImage() string {
	if len(s.Items) == 0 {
		return ""
	}
	return s.Items[0].ImageURL
}

// Remaining returns how many tokens are still available by the minted count.
func (s State) Remaining() uint64 {
	if s.Record.MintedCount >= s.Record.MaxSupply {
		return 0
	}
	return s.Record.MaxSupply - s.Record.MintedCount
}

// Item returns the token at ordinal.
func (s State) Item(ordinal int) (TokenItem, bool) {
	if ordinal < 0 || ordinal >= len(s.Items) {
		return TokenItem{}, false
	}
	return s.Items[ordinal], true
}

// Clone returns a deep copy so patches never alias a copy handed out earlier.
func (s State) Clone() State {
	cloned := s
	cloned.Items = append([]TokenItem(nil), s.Items...)
	cloned.Warnings = append([]ConsistencyWarning(nil), s.Warnings...)
	return cloned
}

func buildItems(record Record, entries []string) []TokenItem {
	items := make([]TokenItem, len(entries))
	for ordinal, entry := range entries {
		minted := uint64(ordinal) < record.MintedCount
		status := StatusAvailable
		if minted {
			status = StatusMinted
		}
		items[ordinal] = TokenItem{
			Ordinal:     ordinal,
			Name:        fmt.Sprintf("%s #%d", record.Name, ordinal+1),
			Description: fmt.Sprintf("%s - NFT #%d", record.Description, ordinal+1),
			ImageURL:    entry,
			Minted:      minted,
			Status:      status,
		}
	}
	return items
}

func checkConsistency(record Record, manifestLength int) []ConsistencyWarning {
	warnings := make([]ConsistencyWarning, 0)
	if record.MintedCount > record.MaxSupply {
		warnings = append(warnings, ConsistencyWarning{
			CollectionID: record.ID,
			Kind:         WarningMintedExceedsSupply,
			MintedCount:  record.MintedCount,
			Limit:        record.MaxSupply,
		})
	}
	if record.MintedCount > uint64(manifestLength) {
		warnings = append(warnings, ConsistencyWarning{
			CollectionID: record.ID,
			Kind:         WarningMintedExceedsManifest,
			MintedCount:  record.MintedCount,
			Limit:        uint64(manifestLength),
		})
	}
	return warnings
}
