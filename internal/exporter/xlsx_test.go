package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteChainXLSX(t *testing.T) {
	var buf bytes.Buffer
	err := WriteChainXLSX(&buf, testSnapshot())
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, chainSheet)
	assert.Contains(t, sheets, openInterestSheet)
	assert.NotContains(t, sheets, "Sheet1")

	rows, err := f.GetRows(chainSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "strike", rows[0][0])
	assert.Equal(t, "100", rows[1][0])
	assert.Equal(t, "call", rows[1][1])
	assert.Equal(t, "105.5", rows[2][0])
	assert.Equal(t, "put", rows[2][1])

	oiRows, err := f.GetRows(openInterestSheet)
	require.NoError(t, err)
	require.Len(t, oiRows, 2)
	assert.Equal(t, []string{"strike", "total_open_interest"}, oiRows[0])
	assert.Equal(t, "100", oiRows[1][0])
	assert.Equal(t, "80", oiRows[1][1])
}

func TestWriteChainXLSX_NilSnapshot(t *testing.T) {
	var buf bytes.Buffer
	err := WriteChainXLSX(&buf, nil)
	assert.Error(t, err)
}
