package earnings

import (
	"encoding/csv"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Time,Block,Share Log %,Share Count,Earnings (BTC),Pool Fees (BTC)
2025-03-12 13:03,000000000000000000016e74e3547695c7e411e9716af53d389a8e24b75197a8,0.00072201%,6477840384,0.00002261,0.00000026
2025-03-12 10:51,000000000000000000005d6da9647c846dcc2e7bda7ec77d90c3239443b9710d,0.00072126%,6471155712,0.00002257,0.00000025
`

func TestParseSample(t *testing.T) {
	entries, err := Parse(sampleCSV)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, Entry{
		Time:        "2025-03-12 13:03",
		Block:       "000000000000000000016e74e3547695c7e411e9716af53d389a8e24b75197a8",
		ShareLogPct: "0.00072201%",
		ShareCount:  6477840384,
		EarningsBTC: 0.00002261,
		PoolFeesBTC: 0.00000026,
	}, entries[0])

	assert.Equal(t, Entry{
		Time:        "2025-03-12 10:51",
		Block:       "000000000000000000005d6da9647c846dcc2e7bda7ec77d90c3239443b9710d",
		ShareLogPct: "0.00072126%",
		ShareCount:  6471155712,
		EarningsBTC: 0.00002257,
		PoolFeesBTC: 0.00000025,
	}, entries[1])
}

func TestParseReorderedColumns(t *testing.T) {
	reordered := `Pool Fees (BTC),Share Count,Time,Earnings (BTC),Block,Share Log %
0.00000026,6477840384,2025-03-12 13:03,0.00002261,000000000000000000016e74e3547695c7e411e9716af53d389a8e24b75197a8,0.00072201%
0.00000025,6471155712,2025-03-12 10:51,0.00002257,000000000000000000005d6da9647c846dcc2e7bda7ec77d90c3239443b9710d,0.00072126%
`
	want, err := Parse(sampleCSV)
	require.NoError(t, err)

	got, err := Parse(reordered)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseIgnoresExtraColumns(t *testing.T) {
	raw := "Time,Extra,Block,Share Log %,Share Count,Earnings (BTC),Pool Fees (BTC),Extra\n" +
		"t,x,b,1%,10,0.5,0.1,y\n"

	entries, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{Time: "t", Block: "b", ShareLogPct: "1%", ShareCount: 10, EarningsBTC: 0.5, PoolFeesBTC: 0.1}, entries[0])
}

func TestParseHeaderOnly(t *testing.T) {
	entries, err := Parse("Time,Block,Share Log %,Share Count,Earnings (BTC),Pool Fees (BTC)\n")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestParseMissingHeader(t *testing.T) {
	for _, raw := range []string{"", "\n", "\r\n\r\n"} {
		entries, err := Parse(raw)
		assert.Nil(t, entries)
		assert.ErrorIs(t, err, ErrMissingHeader, "input %q", raw)
		assert.ErrorIs(t, err, ErrMalformedPayload)
	}
}

func TestParseUnparsableHeader(t *testing.T) {
	_, err := Parse("Time,\"Block\n")
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestParseMissingField(t *testing.T) {
	raw := "Time,Block,Share Log %,Earnings (BTC),Pool Fees (BTC)\n" +
		"t,b,1%,0.5,0.1\n"

	_, err := Parse(raw)
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Share Count", missing.Label)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParseLabelsAreExact(t *testing.T) {
	raw := "time,Block,Share Log %,Share Count,Earnings (BTC),Pool Fees (BTC)\n"

	_, err := Parse(raw)
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, ColumnTime, missing.Label)
}

func TestParseDuplicateField(t *testing.T) {
	raw := "Time,Block,Block,Share Log %,Share Count,Earnings (BTC),Pool Fees (BTC)\n"

	_, err := Parse(raw)
	var dup *DuplicateFieldError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, ColumnBlock, dup.Label)
}

func TestParseInvalidInteger(t *testing.T) {
	cases := []string{"abc", "-1", "+1", "1.0", "1,000", "", " 1", "18446744073709551616"}
	for _, value := range cases {
		t.Run(value, func(t *testing.T) {
			raw := header() + "t,b,1%,10,0.5,0.1\n" + "t,b,1%,\"" + value + "\",0.5,0.1\n"

			entries, err := Parse(raw)
			assert.Nil(t, entries)

			var invalid *InvalidIntegerError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, 2, invalid.Row)
			assert.Equal(t, value, invalid.Value)
		})
	}
}

func TestParseShareCountBounds(t *testing.T) {
	entries, err := Parse(header() + "t,b,1%,18446744073709551615,0,0\nt,b,1%,0,0,0\n")
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), entries[0].ShareCount)
	assert.Equal(t, uint64(0), entries[1].ShareCount)
}

func TestParseInvalidFloat(t *testing.T) {
	cases := []struct {
		row   string
		field string
		value string
	}{
		{row: "t,b,1%,1,abc,0.1", field: ColumnEarnings, value: "abc"},
		{row: "t,b,1%,1,0.1,NaN", field: ColumnPoolFees, value: "NaN"},
		{row: "t,b,1%,1,inf,0.1", field: ColumnEarnings, value: "inf"},
		{row: "t,b,1%,1,0x1p-2,0.1", field: ColumnEarnings, value: "0x1p-2"},
		{row: "t,b,1%,1,0.1,", field: ColumnPoolFees, value: ""},
		{row: "t,b,1%,1,1e999,0.1", field: ColumnEarnings, value: "1e999"},
		{row: "t,b,1%,1,0.00002261 ,0.1", field: ColumnEarnings, value: "0.00002261 "},
	}
	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			_, err := Parse(header() + tc.row + "\n")

			var invalid *InvalidFloatError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, 1, invalid.Row)
			assert.Equal(t, tc.field, invalid.Field)
			assert.Equal(t, tc.value, invalid.Value)
		})
	}
}

func TestParseAcceptedFloats(t *testing.T) {
	entries, err := Parse(header() + "t,b,1%,1,-0.5,1e-8\nt,b,1%,1,.25,3.\n")
	require.NoError(t, err)
	assert.Equal(t, -0.5, entries[0].EarningsBTC)
	assert.Equal(t, 1e-8, entries[0].PoolFeesBTC)
	assert.Equal(t, 0.25, entries[1].EarningsBTC)
	assert.Equal(t, 3.0, entries[1].PoolFeesBTC)
}

func TestParseMalformedRowIsAtomic(t *testing.T) {
	cases := map[string]string{
		"too few":   "t,b,1%,1,0.1",
		"too many":  "t,b,1%,1,0.1,0.1,extra",
		"bad quote": `t,"b,1%,1,0.1,0.1`,
	}
	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			raw := header() +
				"t,b,1%,1,0.1,0.1\n" +
				"t,b,1%,2,0.1,0.1\n" +
				bad + "\n" +
				"t,b,1%,4,0.1,0.1\n"

			entries, err := Parse(raw)
			assert.Nil(t, entries)

			var malformed *MalformedRowError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, 3, malformed.Row)
			assert.True(t, errors.Is(err, ErrMalformedPayload))
		})
	}
}

func TestParseQuotedFieldsAndVerbatimText(t *testing.T) {
	raw := header() +
		`" 2025-03-12 13:03 ","a,b","say ""hi""",7,0.1,0.2` + "\n" +
		",,,8,0.1,0.2\n"

	entries, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, " 2025-03-12 13:03 ", entries[0].Time)
	assert.Equal(t, "a,b", entries[0].Block)
	assert.Equal(t, `say "hi"`, entries[0].ShareLogPct)
	assert.Equal(t, "", entries[1].Time)
	assert.Equal(t, "", entries[1].Block)
}

func TestParseQuotedLineBreakIsNormalized(t *testing.T) {
	entries, err := Parse(header() + "\"line1\r\nline2\",b,1%,1,0.1,0.1\n")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "line1\nline2", entries[0].Time)
}

func TestParseBareQuoteInUnquotedField(t *testing.T) {
	_, err := Parse(header() + "t,b,0.0007\"%,1,0.1,0.1\n")

	var malformed *MalformedRowError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 1, malformed.Row)
	assert.ErrorIs(t, err, csv.ErrBareQuote)
}

func TestParseCRLFAndBOM(t *testing.T) {
	raw := "\ufeff" + strings.ReplaceAll(sampleCSV, "\n", "\r\n")

	entries, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2025-03-12 13:03", entries[0].Time)
	assert.Equal(t, 0.00000025, entries[1].PoolFeesBTC)
}

func TestParsePreservesOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString(header())
	for i := 0; i < 50; i++ {
		b.WriteString("t,b,1%,")
		b.WriteString(strings.Repeat("1", i%5+1))
		b.WriteString(",0.1,0.1\n")
	}

	entries, err := Parse(b.String())
	require.NoError(t, err)
	require.Len(t, entries, 50)
	for i, entry := range entries {
		want := strings.Repeat("1", i%5+1)
		assert.Equal(t, want, strconv.FormatUint(entry.ShareCount, 10), "row %d", i+1)
	}
}

func TestParseConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries, err := Parse(sampleCSV)
			if assert.NoError(t, err) {
				assert.Len(t, entries, 2)
			}
		}()
	}
	wg.Wait()
}

func header() string {
	return strings.Join(Columns, ",") + "\n"
}
