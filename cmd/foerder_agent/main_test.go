package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukas/foerder-scout/internal/types"
)

// TestMain runs before all tests and loads .env if available
func TestMain(m *testing.M) {
	_ = godotenv.Load()
	os.Exit(m.Run())
}

func writeTestCatalog(t *testing.T) string {
	t.Helper()

	catalog := `[
		{"name": "KfW Effizienzhaus Bonus BY", "regions": ["BY"], "category": "energieeffizienz", "funding_rate": "bis 45%", "measures": ["daemmung"], "source": "KfW"},
		{"name": "BAFA Heizungsoptimierung", "regions": ["all"], "category": "energieeffizienz", "funding_rate": "bis 80%", "measures": ["heizungstausch"], "source": "BAFA"}
	]`
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0644))
	return path
}

func execute(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestClassifyCommand(t *testing.T) {
	catalogPath := writeTestCatalog(t)
	outPath := filepath.Join(t.TempDir(), "classified.json")

	err := execute("classify", "--catalog", catalogPath, "--out", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var artifact classifyArtifact
	require.NoError(t, json.Unmarshal(data, &artifact))
	require.Len(t, artifact.Programs, 2)
	assert.Equal(t, 2, artifact.TierDistribution.Total())
}

func TestRankCommand(t *testing.T) {
	catalogPath := writeTestCatalog(t)
	dir := t.TempDir()

	criteriaPath := filepath.Join(dir, "criteria.json")
	criteria := `{"region": "BY", "category": "energieeffizienz", "measures": ["daemmung"]}`
	require.NoError(t, os.WriteFile(criteriaPath, []byte(criteria), 0644))

	outPath := filepath.Join(dir, "shortlist.json")
	err := execute("rank", "--catalog", catalogPath, "--criteria", criteriaPath, "--out", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var artifact rankArtifact
	require.NoError(t, json.Unmarshal(data, &artifact))
	require.Len(t, artifact.Programs, 2)
	assert.Equal(t, "KfW Effizienzhaus Bonus BY", artifact.Programs[0].Name)
	assert.Empty(t, artifact.Narrative)
}

func TestRankCommand_MissingCriteriaFile(t *testing.T) {
	catalogPath := writeTestCatalog(t)
	dir := t.TempDir()

	err := execute("rank",
		"--catalog", catalogPath,
		"--criteria", filepath.Join(dir, "missing.json"),
		"--out", filepath.Join(dir, "out.json"))
	assert.Error(t, err)
}

func TestMaintainCommand(t *testing.T) {
	catalogPath := writeTestCatalog(t)

	err := execute("maintain", "--catalog", catalogPath)
	assert.NoError(t, err)
}

func TestProgramsCommand_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	err := execute("programs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestArtifactCommand_RejectsMalformedID(t *testing.T) {
	err := execute("artifact", "--id", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid artifact ID")
}

func TestImportHTMLCommand(t *testing.T) {
	dir := t.TempDir()

	html := `<html><body><table>
		<tr><td>Landesprogramm NW</td><td>NW</td><td>Klimaschutz</td><td>50%</td></tr>
	</table></body></html>`
	htmlPath := filepath.Join(dir, "listing.html")
	require.NoError(t, os.WriteFile(htmlPath, []byte(html), 0644))

	outPath := filepath.Join(dir, "imported.json")
	err := execute("import-html", "--in", htmlPath, "--out", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var programs []types.RawProgram
	require.NoError(t, json.Unmarshal(data, &programs))
	require.Len(t, programs, 1)
	assert.Equal(t, "Landesprogramm NW", programs[0].Name)
	assert.Equal(t, "klimaschutz", programs[0].Category)
}
