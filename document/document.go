// Copyright 2025 Taxentia Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package document defines the source schemas for the legal authorities the
// pipeline ingests: United States Code sections, Treasury Regulations, and
// Internal Revenue Bulletin documents. Field names mirror the JSON produced
// by the upstream fetchers; this package does no retrieval or extraction.
package document

import (
	"fmt"

	"github.com/taxentia/ingest/core"
)

// Source is a legal authority document ready for chunking.
type Source interface {
	// Validate checks the document's required fields.
	Validate() error

	// Source returns the document text and the chunk provenance derived
	// from the document's fields. Chunk index and total are filled in by
	// the chunker, not here.
	Source() (string, core.ChunkMetadata)
}

// StatuteSection is a section of the United States Code (Title 26).
type StatuteSection struct {
	Citation    string `json:"citation"`
	Section     string `json:"section"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	URL         string `json:"url"`
	VersionDate string `json:"version_date,omitempty"`
}

var _ Source = (*StatuteSection)(nil)

// Validate checks that citation, section, and text are present.
func (s *StatuteSection) Validate() error {
	if s.Citation == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, core.ErrEmptyCitation)
	}
	if s.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, core.ErrEmptyText)
	}
	if s.Section == "" {
		return fmt.Errorf("%w: %w: section", ErrInvalidDocument, ErrMissingField)
	}
	return nil
}

// Source returns the section text and its chunk provenance.
func (s *StatuteSection) Source() (string, core.ChunkMetadata) {
	return s.Text, core.ChunkMetadata{
		SourceType:  core.SourceTypeStatute,
		Citation:    s.Citation,
		Title:       s.Title,
		Section:     s.Section,
		URL:         s.URL,
		VersionDate: s.VersionDate,
	}
}

// Regulation is a Treasury Regulation section (26 C.F.R.).
type Regulation struct {
	Citation    string `json:"citation"`
	Part        string `json:"part"`
	Section     string `json:"section"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	URL         string `json:"url"`
	VersionDate string `json:"version_date,omitempty"`
}

var _ Source = (*Regulation)(nil)

// Validate checks that citation, section, and text are present.
func (r *Regulation) Validate() error {
	if r.Citation == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, core.ErrEmptyCitation)
	}
	if r.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, core.ErrEmptyText)
	}
	if r.Section == "" {
		return fmt.Errorf("%w: %w: section", ErrInvalidDocument, ErrMissingField)
	}
	return nil
}

// Source returns the regulation text and its chunk provenance. The part
// number rides in Extra since ChunkMetadata has no field for it.
func (r *Regulation) Source() (string, core.ChunkMetadata) {
	meta := core.ChunkMetadata{
		SourceType:  core.SourceTypeRegulation,
		Citation:    r.Citation,
		Title:       r.Title,
		Section:     r.Section,
		URL:         r.URL,
		VersionDate: r.VersionDate,
	}
	if r.Part != "" {
		meta.Extra = map[string]string{"part": r.Part}
	}
	return r.Text, meta
}

// BulletinKind classifies an Internal Revenue Bulletin document. Values
// match the wire names used by the upstream fetchers.
type BulletinKind string

const (
	KindRevenueRuling    BulletinKind = "revenue_ruling"
	KindRevenueProcedure BulletinKind = "revenue_procedure"
	KindNotice           BulletinKind = "notice"
	KindTreasuryDecision BulletinKind = "treasury_decision"
	KindAnnouncement     BulletinKind = "announcement"
)

// Valid reports whether k is one of the known bulletin kinds.
func (k BulletinKind) Valid() bool {
	switch k {
	case KindRevenueRuling, KindRevenueProcedure, KindNotice,
		KindTreasuryDecision, KindAnnouncement:
		return true
	default:
		return false
	}
}

// ParseBulletinKind parses a bulletin kind from its wire name.
func ParseBulletinKind(s string) (BulletinKind, error) {
	k := BulletinKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownBulletinKind, s)
	}
	return k, nil
}

// Bulletin is an Internal Revenue Bulletin document such as a revenue
// ruling or notice.
type Bulletin struct {
	Citation       string       `json:"citation"`
	Kind           BulletinKind `json:"doc_type"`
	Number         string       `json:"number"`
	Title          string       `json:"title"`
	Text           string       `json:"text"`
	BulletinNumber string       `json:"bulletin_number"`
	BulletinDate   string       `json:"bulletin_date"`
	URL            string       `json:"url"`
}

var _ Source = (*Bulletin)(nil)

// Validate checks that citation, text, number, and a known kind are present.
func (b *Bulletin) Validate() error {
	if b.Citation == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, core.ErrEmptyCitation)
	}
	if b.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, core.ErrEmptyText)
	}
	if b.Number == "" {
		return fmt.Errorf("%w: %w: number", ErrInvalidDocument, ErrMissingField)
	}
	if !b.Kind.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidDocument, ErrUnknownBulletinKind, b.Kind)
	}
	return nil
}

// Source returns the bulletin text and its chunk provenance. Bulletins have
// no section number; kind, document number, and bulletin issue ride in Extra.
func (b *Bulletin) Source() (string, core.ChunkMetadata) {
	extra := map[string]string{
		"doc_type": string(b.Kind),
		"number":   b.Number,
	}
	if b.BulletinNumber != "" {
		extra["bulletin_number"] = b.BulletinNumber
	}
	if b.BulletinDate != "" {
		extra["bulletin_date"] = b.BulletinDate
	}
	return b.Text, core.ChunkMetadata{
		SourceType: core.SourceTypeBulletin,
		Citation:   b.Citation,
		Title:      b.Title,
		URL:        b.URL,
		Extra:      extra,
	}
}
