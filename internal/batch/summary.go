package batch

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mattn/go-runewidth"
)

// WriteSummary writes a table of results to w: one row per file with its status and removed/added line counts, then a totals row. The FILE column is padded by display width
// so names with wide characters (ex: CJK) still line up.
func WriteSummary(w io.Writer, results []FileResult) error {
	type row struct {
		file, status, removed, added string
	}

	rows := []row{{"FILE", "STATUS", "REMOVED", "ADDED"}}
	var totalRemoved, totalAdded, changed int
	for _, fr := range results {
		stats := fr.Result.Stats()
		r := row{fr.Rel, fr.Status.String(), strconv.Itoa(stats.Removed), strconv.Itoa(stats.Added)}
		if fr.Status == StatusError {
			r.removed, r.added = "-", "-"
		}
		if fr.Status != StatusUnchanged {
			changed++
		}
		totalRemoved += stats.Removed
		totalAdded += stats.Added
		rows = append(rows, r)
	}
	rows = append(rows, row{fmt.Sprintf("%d files, %d differ", len(results), changed), "", strconv.Itoa(totalRemoved), strconv.Itoa(totalAdded)})

	var fileW, statusW, removedW, addedW int
	for _, r := range rows {
		fileW = max(fileW, runewidth.StringWidth(r.file))
		statusW = max(statusW, len(r.status))
		removedW = max(removedW, len(r.removed))
		addedW = max(addedW, len(r.added))
	}

	for _, r := range rows {
		_, err := fmt.Fprintf(w, "%s  %-*s  %*s  %*s\n", runewidth.FillRight(r.file, fileW), statusW, r.status, removedW, r.removed, addedW, r.added)
		if err != nil {
			return err
		}
	}
	return nil
}
