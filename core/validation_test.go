package core

import (
	"errors"
	"testing"
)

func validMeta() ChunkMetadata {
	return ChunkMetadata{
		SourceType:  SourceTypeStatute,
		Citation:    "26 U.S.C. 61",
		ChunkIndex:  0,
		TotalChunks: 1,
	}
}

func TestValidateMetadata(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ChunkMetadata)
		wantErr error
	}{
		{
			name:    "valid metadata",
			mutate:  func(m *ChunkMetadata) {},
			wantErr: nil,
		},
		{
			name: "valid metadata with optional fields",
			mutate: func(m *ChunkMetadata) {
				m.Title = "Gross income defined"
				m.Section = "61"
				m.URL = "https://uscode.house.gov/view.xhtml"
				m.VersionDate = "2025-01-15"
				m.Extra = map[string]string{"edition": "2025"}
			},
			wantErr: nil,
		},
		{
			name: "valid middle chunk",
			mutate: func(m *ChunkMetadata) {
				m.ChunkIndex = 3
				m.TotalChunks = 7
			},
			wantErr: nil,
		},
		{
			name: "unknown source type",
			mutate: func(m *ChunkMetadata) {
				m.SourceType = SourceType(42)
			},
			wantErr: ErrInvalidSourceType,
		},
		{
			name: "empty citation",
			mutate: func(m *ChunkMetadata) {
				m.Citation = ""
			},
			wantErr: ErrEmptyCitation,
		},
		{
			name: "zero total chunks",
			mutate: func(m *ChunkMetadata) {
				m.TotalChunks = 0
			},
			wantErr: ErrInvalidMetadata,
		},
		{
			name: "negative index",
			mutate: func(m *ChunkMetadata) {
				m.ChunkIndex = -1
			},
			wantErr: ErrChunkIndexRange,
		},
		{
			name: "index equals total",
			mutate: func(m *ChunkMetadata) {
				m.ChunkIndex = 1
				m.TotalChunks = 1
			},
			wantErr: ErrChunkIndexRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := validMeta()
			tt.mutate(&meta)

			err := ValidateMetadata(meta)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateMetadata() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateMetadata() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateMetadata() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChunk(t *testing.T) {
	valid := func() *Chunk {
		meta := validMeta()
		return &Chunk{
			Text:     "Gross income means all income from whatever source derived.",
			Metadata: meta,
			StringID: ChunkID(meta.SourceType, meta.Citation, meta.ChunkIndex),
		}
	}

	tests := []struct {
		name    string
		chunk   *Chunk
		mutate  func(*Chunk)
		wantErr error
	}{
		{
			name:    "valid chunk",
			mutate:  func(c *Chunk) {},
			wantErr: nil,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidChunk,
		},
		{
			name: "empty text",
			mutate: func(c *Chunk) {
				c.Text = ""
			},
			wantErr: ErrEmptyText,
		},
		{
			name: "invalid metadata",
			mutate: func(c *Chunk) {
				c.Metadata.Citation = ""
			},
			wantErr: ErrInvalidMetadata,
		},
		{
			name: "string id from wrong index",
			mutate: func(c *Chunk) {
				c.StringID = ChunkID(c.Metadata.SourceType, c.Metadata.Citation, 9)
			},
			wantErr: ErrIdentifierMismatch,
		},
		{
			name: "hand-assembled string id",
			mutate: func(c *Chunk) {
				c.StringID = "usc-26 U.S.C. 61-chunk-0"
			},
			wantErr: ErrIdentifierMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk := tt.chunk
			if tt.mutate != nil {
				chunk = valid()
				tt.mutate(chunk)
			}

			err := ValidateChunk(chunk)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateChunk() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSourceType(t *testing.T) {
	tests := []struct {
		name       string
		sourceType SourceType
		wantErr    bool
	}{
		{
			name:       "statute",
			sourceType: SourceTypeStatute,
			wantErr:    false,
		},
		{
			name:       "regulation",
			sourceType: SourceTypeRegulation,
			wantErr:    false,
		},
		{
			name:       "bulletin",
			sourceType: SourceTypeBulletin,
			wantErr:    false,
		},
		{
			name:       "zero value",
			sourceType: SourceType(0),
			wantErr:    true,
		},
		{
			name:       "out of range",
			sourceType: SourceType(999),
			wantErr:    true,
		},
		{
			name:       "negative",
			sourceType: SourceType(-1),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSourceType(tt.sourceType)

			if tt.wantErr && err == nil {
				t.Error("ValidateSourceType() error = nil, want error")
			}

			if !tt.wantErr && err != nil {
				t.Errorf("ValidateSourceType() error = %v, want nil", err)
			}

			if err != nil && !errors.Is(err, ErrInvalidSourceType) {
				t.Errorf("ValidateSourceType() error = %v, want %v", err, ErrInvalidSourceType)
			}
		})
	}
}

func TestParseSourceType(t *testing.T) {
	tests := []struct {
		in      string
		want    SourceType
		wantErr bool
	}{
		{"statute", SourceTypeStatute, false},
		{"usc", SourceTypeStatute, false},
		{"regulation", SourceTypeRegulation, false},
		{"cfr", SourceTypeRegulation, false},
		{"bulletin", SourceTypeBulletin, false},
		{"irb", SourceTypeBulletin, false},
		{"", 0, true},
		{"USC", 0, true},
		{"qdrant", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSourceType(tt.in)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseSourceType(%q) error = nil, want error", tt.in)
				}
				return
			}

			if err != nil {
				t.Errorf("ParseSourceType(%q) error = %v, want nil", tt.in, err)
				return
			}
			if got != tt.want {
				t.Errorf("ParseSourceType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
