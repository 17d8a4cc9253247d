package wordpress

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostMeta_EmptyArray(t *testing.T) {
	var p Post
	require.NoError(t, json.Unmarshal([]byte(`{"id": 5, "meta": []}`), &p))
	assert.Equal(t, 5, p.ID)
	assert.Empty(t, p.Meta.Authors)
}

func TestFlexValues(t *testing.T) {
	var meta PostMeta
	require.NoError(t, json.Unmarshal([]byte(`{
		"journal_year": 2024,
		"journal_volume": ["12"],
		"journal_issue": null,
		"journal_keywords": "quantum, qubits ,, error correction",
		"journal_authors": ["A", "", "B"],
		"journal_citation_count": "15"
	}`), &meta))

	assert.Equal(t, FlexString("2024"), meta.Year)
	assert.Equal(t, FlexString("12"), meta.Volume)
	assert.Equal(t, FlexString(""), meta.Issue)
	assert.Equal(t, FlexStrings{"quantum", "qubits", "error correction"}, meta.Keywords)
	assert.Equal(t, FlexStrings{"A", "B"}, meta.Authors)
	assert.Equal(t, 15, meta.CitationCount.Int())
	assert.Equal(t, 0, FlexString("n/a").Int())
}
