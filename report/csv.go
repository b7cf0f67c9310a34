/*
Package report builds monthly work-session reports and delivers them as CSV,
either as a direct download or attached to an email.

FORMAT:
  One row per logged session: clock-in, clock-out, hours worked. Timestamps
  use "2006-01-02 15:04"; hours are printed with two decimals.

SEE ALSO:
  - service.go: report assembly and email delivery
*/
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/TechTreck-2/petruzdroba/worklog"
)

const timestampLayout = "2006-01-02 15:04"

// WriteCSV writes the sessions as CSV rows with a header line.
func WriteCSV(w io.Writer, sessions []worklog.Session) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"start", "end", "hours"}); err != nil {
		return err
	}
	for _, s := range sessions {
		start := s.Date
		end := start.Add(s.Worked)
		row := []string{
			start.Format(timestampLayout),
			end.Format(timestampLayout),
			fmt.Sprintf("%.2f", s.Worked.Hours()),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
