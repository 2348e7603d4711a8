package bids

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/david/contract-finder/internal/models"
	"github.com/david/contract-finder/internal/store"
)

// LedgerKey is the single well-known blob key the bid list lives under.
const LedgerKey = "ongoing_bids"

// DefaultSource labels records created from SAM.gov opportunities.
const DefaultSource = "SAM.gov"

// Ledger is the durable list of bid-progress records, upserted by
// opportunity id. The workflow set is small and bounded, so lookup is a
// linear scan; no indexing.
type Ledger struct {
	blob store.Blob
}

func NewLedger(blob store.Blob) *Ledger {
	return &Ledger{blob: blob}
}

// List returns the current ledger. Storage content that fails to parse as
// the expected list shape is treated as empty, not repaired; the next write
// clobbers it.
func (l *Ledger) List(ctx context.Context) ([]models.BidRecord, error) {
	raw, ok, err := l.blob.Read(ctx, LedgerKey)
	if err != nil {
		return nil, fmt.Errorf("ledger read failed: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var records []models.BidRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, nil
	}
	return records, nil
}

// Upsert patches the record for id in place, or appends a new one built from
// the patch. Only fields present in the patch overwrite; the ledger never
// holds two records for the same id.
func (l *Ledger) Upsert(ctx context.Context, id string, patch models.BidPatch) error {
	records, err := l.List(ctx)
	if err != nil {
		return err
	}

	found := false
	for i := range records {
		if records[i].ID != id {
			continue
		}
		found = true
		applyPatch(&records[i], patch)
		break
	}
	if !found {
		records = append(records, newRecord(id, patch))
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("ledger encode failed: %w", err)
	}
	if err := l.blob.Write(ctx, LedgerKey, raw); err != nil {
		return fmt.Errorf("ledger write failed: %w", err)
	}
	return nil
}

func applyPatch(rec *models.BidRecord, patch models.BidPatch) {
	if patch.Title != "" {
		rec.Title = patch.Title
	}
	if patch.Agency != "" {
		rec.Agency = patch.Agency
	}
	if patch.Status != "" {
		rec.Status = patch.Status
	}
	if patch.Deadline != "" {
		rec.Deadline = patch.Deadline
	}
	if patch.Source != "" {
		rec.Source = patch.Source
	}
	if patch.LinkToOpportunity != "" {
		rec.LinkToOpportunity = patch.LinkToOpportunity
	}
}

func newRecord(id string, patch models.BidPatch) models.BidRecord {
	rec := models.BidRecord{
		ID:                id,
		Title:             patch.Title,
		Agency:            patch.Agency,
		Status:            patch.Status,
		Deadline:          patch.Deadline,
		Source:            patch.Source,
		LinkToOpportunity: patch.LinkToOpportunity,
	}
	if rec.Deadline == "" {
		rec.Deadline = "N/A"
	}
	if rec.Source == "" {
		rec.Source = DefaultSource
	}
	if rec.LinkToOpportunity == "" {
		rec.LinkToOpportunity = "/opportunities/" + id
	}
	return rec
}

// patchFromOpportunity carries the opportunity's identity fields into an
// upsert, applying the ledger defaults for missing closing date and link.
func patchFromOpportunity(opp *models.Opportunity, status models.BidStatus) models.BidPatch {
	patch := models.BidPatch{
		Title:    opp.Title,
		Agency:   opp.Agency,
		Status:   status,
		Deadline: opp.ClosingDate,
		Source:   DefaultSource,
	}
	if opp.Link != "" {
		patch.LinkToOpportunity = opp.Link
	}
	return patch
}

// MarkDrafting records the opportunity as Drafting.
func (l *Ledger) MarkDrafting(ctx context.Context, opp *models.Opportunity) error {
	return l.Upsert(ctx, opp.ID, patchFromOpportunity(opp, models.StatusDrafting))
}

// MarkRFQsSent is the compound action: MarkDrafting first, then a second
// upsert that re-reads the ledger and overwrites the same record's status.
// The two writes are deliberately not atomic; a concurrent session's patch
// landing between them is last-writer-wins.
func (l *Ledger) MarkRFQsSent(ctx context.Context, opp *models.Opportunity) error {
	if err := l.MarkDrafting(ctx, opp); err != nil {
		return err
	}
	return l.Upsert(ctx, opp.ID, models.BidPatch{Status: models.StatusRFQsSent})
}
