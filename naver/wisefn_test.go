package naver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wisefnPage = `<html><body><form id="Form1">
<script>
var changeFin = [['2023/12','2024/12'],['2026/03','2026/06']];
var changeFinData = [[[['Revenue','258,935','300,870'],['OperatingProfit','6,566','32,725']],[['Revenue','79,987','74,068'],['OperatingProfit','6,602','<span class='multi-row'>4,676</span>']]],[[['EPS','1,115','4,950']],[['EPS','1,001','-']]]];
</script>
</form></body></html>`

func TestParseFinancials(t *testing.T) {
	t.Parallel()

	summary, err := parseFinancials(wisefnPage)
	require.NoError(t, err)

	require.Len(t, summary.Periods, 4)
	assert.Equal(t, Period{Kind: Yearly, Label: "2023/12"}, summary.Periods[0])
	assert.Equal(t, Period{Kind: Quarterly, Label: "2026/06"}, summary.Periods[3])

	require.Len(t, summary.Metrics, 3)

	revenue := summary.Metrics[0]
	assert.Equal(t, "Revenue", revenue.Name)
	require.Len(t, revenue.Values, 4)
	assert.Equal(t, 258_935.0, revenue.Values[0])
	assert.Equal(t, 74_068.0, revenue.Values[3])

	// The span-wrapped cell parses like any other number.
	op := summary.Metrics[1]
	assert.Equal(t, "OperatingProfit", op.Name)
	assert.Equal(t, 4_676.0, op.Values[3])

	// "-" cells become NaN.
	eps := summary.Metrics[2]
	assert.Equal(t, "EPS", eps.Name)
	assert.True(t, math.IsNaN(eps.Values[3]))
}

func TestParseFinancialsMissingMarker(t *testing.T) {
	t.Parallel()

	_, err := parseFinancials(`<html><body>nothing here</body></html>`)
	assert.Error(t, err)
}

func TestScriptLiteral(t *testing.T) {
	t.Parallel()

	lit, err := scriptLiteral(`var x = ['a','b'];`, "var x = ")
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, lit)

	_, err = scriptLiteral(`var x = ['a','b']`, "var x = ")
	assert.Error(t, err)
}
