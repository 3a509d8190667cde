package hiscores

import (
	"strconv"
	"strings"

	"osrs-tracker/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// ParseOverallTable extracts (rank, name) pairs from one overall
// leaderboard page. The markup is presentation HTML, not an API, so this
// is a best-effort scan: any <tr> with at least three cells where some
// cell holds a comma-formatted integer is taken as a ranking row, with
// the cell after the rank as the player name. Everything else (headers,
// decoration, malformed rows) is skipped. A document that cannot be
// parsed at all yields no rows rather than an error; callers treat an
// empty page as retryable.
func ParseOverallTable(html string) []domain.RankRow {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var rows []domain.RankRow
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.Join(strings.Fields(td.Text()), " "))
		})
		if len(cells) < 3 {
			return
		}

		rankIdx := -1
		for i, cell := range cells {
			if isDigits(strings.ReplaceAll(cell, ",", "")) {
				rankIdx = i
				break
			}
		}
		if rankIdx < 0 || rankIdx+1 >= len(cells) {
			return
		}

		name := strings.TrimSpace(cells[rankIdx+1])
		rank, err := strconv.ParseInt(strings.ReplaceAll(cells[rankIdx], ",", ""), 10, 64)
		if err != nil || name == "" {
			return
		}
		rows = append(rows, domain.RankRow{Rank: rank, Name: name})
	})
	return rows
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
