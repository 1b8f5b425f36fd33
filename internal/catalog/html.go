package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lukas/foerder-scout/internal/types"
)

// ImportHTML extracts programs from a funding-database listing page.
// Expected markup: one table row per program with cells in the order
// name, regions (comma separated or "bundesweit"), category, funding
// rate, measures (comma separated), source. Rows that do not validate
// are quarantined like any other catalog record.
func ImportHTML(r io.Reader) (*LoadResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var programs []types.RawProgram
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			// Header rows and separators carry no td cells.
			return
		}

		program := types.RawProgram{
			Name:        cellText(cells, 0),
			Regions:     parseRegionList(cellText(cells, 1)),
			Category:    strings.ToLower(cellText(cells, 2)),
			FundingRate: cellText(cells, 3),
		}
		if cells.Length() > 4 {
			program.Measures = splitList(cellText(cells, 4))
		}
		if cells.Length() > 5 {
			program.Source = cellText(cells, 5)
		}
		if desc, ok := row.Attr("data-description"); ok {
			program.Description = desc
		}

		programs = append(programs, program)
	})

	return Validate(programs), nil
}

func cellText(cells *goquery.Selection, i int) string {
	return strings.TrimSpace(cells.Eq(i).Text())
}

// parseRegionList maps a region cell onto region codes; "bundesweit" and
// "alle" become the wildcard.
func parseRegionList(raw string) []string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "" {
		return nil
	}
	if lowered == "bundesweit" || lowered == "alle" || lowered == types.RegionWildcard {
		return []string{types.RegionWildcard}
	}
	return splitList(raw)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
