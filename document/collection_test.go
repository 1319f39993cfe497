package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxentia/ingest/core"
)

func testCollection() *Collection {
	return &Collection{
		Statutes:    []StatuteSection{validStatute()},
		Regulations: []Regulation{validRegulation()},
		Bulletins:   []Bulletin{validBulletin()},
	}
}

func TestCollection_Len(t *testing.T) {
	assert.Equal(t, 3, testCollection().Len())
	assert.Zero(t, (&Collection{}).Len())
}

func TestCollection_Documents(t *testing.T) {
	col := testCollection()

	docs, err := col.Documents()
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, core.SourceTypeStatute, docs[0].Metadata.SourceType)
	assert.Equal(t, core.SourceTypeRegulation, docs[1].Metadata.SourceType)
	assert.Equal(t, core.SourceTypeBulletin, docs[2].Metadata.SourceType)

	assert.Equal(t, col.Statutes[0].Text, docs[0].Text)
	assert.Equal(t, "26 U.S.C. § 195", docs[0].Metadata.Citation)
	assert.Equal(t, "1.195-1", docs[1].Metadata.Section)
	assert.Equal(t, "revenue_ruling", docs[2].Metadata.Extra["doc_type"])
}

func TestCollection_Documents_Empty(t *testing.T) {
	docs, err := (&Collection{}).Documents()

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestCollection_Documents_InvalidEntry(t *testing.T) {
	col := testCollection()
	col.Regulations[0].Text = ""

	docs, err := col.Documents()

	require.Error(t, err)
	assert.Nil(t, docs)
	assert.ErrorIs(t, err, core.ErrEmptyText)
	assert.Contains(t, err.Error(), "regulation 0 (26 CFR § 1.195-1)",
		"error should identify the failing entry")
}

func TestCollection_Documents_AllInvalidEntriesReported(t *testing.T) {
	col := testCollection()
	col.Statutes[0].Citation = ""
	col.Bulletins[0].Text = ""

	docs, err := col.Documents()

	require.Error(t, err)
	assert.Nil(t, docs)
	assert.ErrorIs(t, err, core.ErrEmptyCitation)
	assert.ErrorIs(t, err, core.ErrEmptyText)
	assert.Contains(t, err.Error(), "statute 0")
	assert.Contains(t, err.Error(), "bulletin 0 (Rev. Rul. 2025-01)")
}

func TestRead(t *testing.T) {
	payload := `{
		"statutes": [{
			"citation": "26 U.S.C. § 61",
			"section": "61",
			"title": "Gross income defined",
			"text": "Gross income means all income from whatever source derived.",
			"url": "https://uscode.house.gov/view.xhtml?req=granuleid:USC-prelim-title26-section61"
		}],
		"bulletins": [{
			"citation": "Notice 2025-10",
			"doc_type": "notice",
			"number": "2025-10",
			"title": "Standard mileage rates",
			"text": "This notice provides the optional standard mileage rates.",
			"bulletin_number": "2025-08",
			"bulletin_date": "2025",
			"url": "https://www.irs.gov/irb/2025-08#NOT-2025-10"
		}]
	}`

	col, err := Read(strings.NewReader(payload))
	require.NoError(t, err)

	require.Len(t, col.Statutes, 1)
	require.Len(t, col.Bulletins, 1)
	assert.Empty(t, col.Regulations)
	assert.Equal(t, "61", col.Statutes[0].Section)
	assert.Equal(t, KindNotice, col.Bulletins[0].Kind)
	assert.Equal(t, "2025-08", col.Bulletins[0].BulletinNumber)

	docs, err := col.Documents()
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestRead_Malformed(t *testing.T) {
	col, err := Read(strings.NewReader("{not json"))

	require.Error(t, err)
	assert.Nil(t, col)
	assert.Contains(t, err.Error(), "decoding documents")
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	payload := `{"regulations": [{
		"citation": "26 CFR § 1.61-1",
		"part": "1",
		"section": "1.61-1",
		"title": "Gross income",
		"text": "Gross income means all income from whatever source derived.",
		"url": "https://www.ecfr.gov/current/title-26/section-1.61-1"
	}]}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	col, err := ReadFile(path)
	require.NoError(t, err)

	require.Len(t, col.Regulations, 1)
	assert.Equal(t, "26 CFR § 1.61-1", col.Regulations[0].Citation)
}

func TestReadFile_Missing(t *testing.T) {
	col, err := ReadFile(filepath.Join(t.TempDir(), "absent.json"))

	require.Error(t, err)
	assert.Nil(t, col)
}
