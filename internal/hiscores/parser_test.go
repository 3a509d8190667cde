package hiscores_test

import (
	"fmt"
	"strings"
	"testing"

	"osrs-tracker/internal/hiscores"

	. "github.com/smartystreets/goconvey/convey"
)

const overallPageHTML = `
<html><body>
<table>
  <tr><th>Rank</th><th>Name</th><th>Level</th><th>XP</th></tr>
  <tr>
    <td><img src="/icon.png"/></td>
    <td>1,234</td>
    <td>  Iron  Mantis </td>
    <td>2,277</td>
    <td>4,600,000,000</td>
  </tr>
  <tr>
    <td>1,235</td>
    <td>Zulrah Fan</td>
    <td>2,270</td>
  </tr>
  <tr><td>decorative</td><td>row</td><td>here</td></tr>
  <tr><td>only</td><td>two</td></tr>
</table>
</body></html>`

func TestParseOverallTable(t *testing.T) {
	Convey("Given a leaderboard page fragment", t, func() {
		Convey("When it is parsed", func() {
			rows := hiscores.ParseOverallTable(overallPageHTML)

			Convey("Then ranking rows are extracted in document order", func() {
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Rank, ShouldEqual, 1234)
				So(rows[1].Rank, ShouldEqual, 1235)
				So(rows[1].Name, ShouldEqual, "Zulrah Fan")
			})

			Convey("Then whitespace inside a cell is collapsed", func() {
				So(rows[0].Name, ShouldEqual, "Iron Mantis")
			})
		})

		Convey("When the same document is parsed twice", func() {
			first := hiscores.ParseOverallTable(overallPageHTML)
			second := hiscores.ParseOverallTable(overallPageHTML)

			Convey("Then both parses yield identical rows", func() {
				So(second, ShouldResemble, first)
			})
		})
	})

	Convey("Given a document with no ranking rows", t, func() {
		Convey("When plain text is parsed", func() {
			rows := hiscores.ParseOverallTable("not markup at all")

			Convey("Then the result is empty, not an error", func() {
				So(rows, ShouldBeEmpty)
			})
		})

		Convey("When a table of header rows is parsed", func() {
			rows := hiscores.ParseOverallTable("<table><tr><th>a</th><th>b</th><th>c</th></tr></table>")

			Convey("Then the result is empty", func() {
				So(rows, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a dense synthetic page", t, func() {
		var b strings.Builder
		b.WriteString("<table>")
		for rank := 26; rank <= 50; rank++ {
			fmt.Fprintf(&b, "<tr><td>%d</td><td>Player %d</td><td>2000</td></tr>", rank, rank)
		}
		b.WriteString("</table>")

		Convey("When it is parsed", func() {
			rows := hiscores.ParseOverallTable(b.String())

			Convey("Then every row is extracted", func() {
				So(rows, ShouldHaveLength, 25)
				So(rows[0].Rank, ShouldEqual, 26)
				So(rows[24].Rank, ShouldEqual, 50)
				So(rows[24].Name, ShouldEqual, "Player 50")
			})
		})
	})
}
