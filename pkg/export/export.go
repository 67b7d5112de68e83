// Package export renders advisory reports for external consumers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/veloops/stationd/core/rebalance"
)

// WriteJSON writes the full advisory report to w in JSON format.
func WriteJSON(w io.Writer, report rebalance.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteCSV writes one recommendation list to w with a header row.
func WriteCSV(w io.Writer, recs []rebalance.Recommendation) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
