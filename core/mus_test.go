package core

import (
	"testing"
	"time"
)

func TestIDMUS_RoundTrip(t *testing.T) {
	ids := []ID{0, 1, 255, 1 << 20, 1<<63 + 42}

	for _, id := range ids {
		bs := make([]byte, IDMUS.Size(id))
		n := IDMUS.Marshal(id, bs)
		if n != len(bs) {
			t.Errorf("Marshal wrote %d bytes, Size reported %d", n, len(bs))
		}

		got, n, err := IDMUS.Unmarshal(bs)
		if err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if n != len(bs) {
			t.Errorf("Unmarshal read %d bytes, want %d", n, len(bs))
		}
		if got != id {
			t.Errorf("round trip = %d, want %d", got, id)
		}
	}
}

func TestCheckpointMUS_RoundTrip(t *testing.T) {
	cp := Checkpoint{
		DocumentKey: "usc:26 U.S.C. 61",
		Fingerprint: Fingerprint("Gross income means all income from whatever source derived."),
		TotalChunks: 12,
		NextBatch:   2,
		TokensUsed:  4815,
		UpdatedAt:   time.Date(2025, 11, 3, 14, 30, 0, 123456000, time.UTC),
	}

	bs := make([]byte, CheckpointMUS.Size(cp))
	n := CheckpointMUS.Marshal(cp, bs)
	if n != len(bs) {
		t.Errorf("Marshal wrote %d bytes, Size reported %d", n, len(bs))
	}

	got, n, err := CheckpointMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if n != len(bs) {
		t.Errorf("Unmarshal read %d bytes, want %d", n, len(bs))
	}

	if got.DocumentKey != cp.DocumentKey {
		t.Errorf("DocumentKey = %q, want %q", got.DocumentKey, cp.DocumentKey)
	}
	if got.Fingerprint != cp.Fingerprint {
		t.Errorf("Fingerprint = %q, want %q", got.Fingerprint, cp.Fingerprint)
	}
	if got.TotalChunks != cp.TotalChunks {
		t.Errorf("TotalChunks = %d, want %d", got.TotalChunks, cp.TotalChunks)
	}
	if got.NextBatch != cp.NextBatch {
		t.Errorf("NextBatch = %d, want %d", got.NextBatch, cp.NextBatch)
	}
	if got.TokensUsed != cp.TokensUsed {
		t.Errorf("TokensUsed = %d, want %d", got.TokensUsed, cp.TokensUsed)
	}
	if !got.UpdatedAt.Equal(cp.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, cp.UpdatedAt)
	}
}

func TestCheckpointMUS_Skip(t *testing.T) {
	cp := Checkpoint{
		DocumentKey: "cfr:26 C.F.R. 1.61-1",
		Fingerprint: "abc123",
		TotalChunks: 3,
		NextBatch:   1,
		TokensUsed:  900,
		UpdatedAt:   time.Now().UTC(),
	}

	bs := make([]byte, CheckpointMUS.Size(cp)+4)
	CheckpointMUS.Marshal(cp, bs)

	n, err := CheckpointMUS.Skip(bs)
	if err != nil {
		t.Fatalf("Skip() error = %v", err)
	}
	if n != CheckpointMUS.Size(cp) {
		t.Errorf("Skip() = %d, want %d", n, CheckpointMUS.Size(cp))
	}
}

func TestCheckpointMUS_UnmarshalTruncated(t *testing.T) {
	cp := Checkpoint{
		DocumentKey: "irb:Rev. Rul. 2023-14",
		Fingerprint: "deadbeef",
		TotalChunks: 2,
		NextBatch:   0,
		TokensUsed:  100,
		UpdatedAt:   time.Now().UTC(),
	}

	bs := make([]byte, CheckpointMUS.Size(cp))
	CheckpointMUS.Marshal(cp, bs)

	_, _, err := CheckpointMUS.Unmarshal(bs[:3])
	if err == nil {
		t.Error("Unmarshal() of truncated data returned nil error")
	}
}
