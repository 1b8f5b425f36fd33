package catalog

import (
	"strings"
	"testing"

	"github.com/lukas/foerder-scout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `
<html><body>
<table>
  <tr><th>Programm</th><th>Regionen</th><th>Kategorie</th><th>Quote</th><th>Maßnahmen</th><th>Quelle</th></tr>
  <tr data-description="Zuschuss für Sanierungen">
    <td>KfW Effizienzhaus Bonus BY</td>
    <td>BY, BW</td>
    <td>Energieeffizienz</td>
    <td>60-90%</td>
    <td>daemmung, fenster</td>
    <td>KfW</td>
  </tr>
  <tr>
    <td>BAFA Heizungsoptimierung</td>
    <td>bundesweit</td>
    <td>Energieeffizienz</td>
    <td>bis 80%</td>
  </tr>
  <tr>
    <td></td>
    <td>BY</td>
    <td>Energieeffizienz</td>
    <td>50%</td>
  </tr>
</table>
</body></html>`

func TestImportHTML_ParsesListingRows(t *testing.T) {
	result, err := ImportHTML(strings.NewReader(listingHTML))
	require.NoError(t, err)
	require.Len(t, result.Programs, 2)

	kfw := result.Programs[0]
	assert.Equal(t, "KfW Effizienzhaus Bonus BY", kfw.Name)
	assert.Equal(t, []string{"BY", "BW"}, kfw.Regions)
	assert.Equal(t, "energieeffizienz", kfw.Category)
	assert.Equal(t, "60-90%", kfw.FundingRate)
	assert.Equal(t, []string{"daemmung", "fenster"}, kfw.Measures)
	assert.Equal(t, "KfW", kfw.Source)
	assert.Equal(t, "Zuschuss für Sanierungen", kfw.Description)

	bafa := result.Programs[1]
	assert.Equal(t, []string{types.RegionWildcard}, bafa.Regions)
}

func TestImportHTML_QuarantinesNamelessRow(t *testing.T) {
	result, err := ImportHTML(strings.NewReader(listingHTML))
	require.NoError(t, err)
	require.Len(t, result.Quarantined, 1)
	assert.Contains(t, result.Quarantined[0].Reason, "invalid record")
}

func TestImportHTML_EmptyDocument(t *testing.T) {
	result, err := ImportHTML(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, result.Programs)
	assert.Empty(t, result.Quarantined)
}
