package ranking

import (
	"sort"

	"github.com/dharmasatrya/flightops/internal/models"
	"github.com/dharmasatrya/flightops/pkg/duration"
)

// StatRows formats airline turnaround averages in server order and ranks them:
// rank 1 is the shortest average and equal averages share a rank, with the next
// rank skipping the tied positions (1, 2, 2, 4). Averages that cannot be
// formatted render as unavailable and stay unranked.
func StatRows(stats []models.AirlineTurnaroundStats) []models.StatRow {
	rows := make([]models.StatRow, len(stats))
	valid := make([]int, 0, len(stats))

	for i, s := range stats {
		rows[i].Airline = s.Airline

		formatted, err := duration.FormatHours(s.AverageDuration)
		if err != nil {
			rows[i].AverageDuration = models.DurationUnavailable
			continue
		}
		rows[i].AverageDuration = formatted
		valid = append(valid, i)
	}

	sort.SliceStable(valid, func(a, b int) bool {
		return stats[valid[a]].AverageDuration < stats[valid[b]].AverageDuration
	})

	rank := 0
	for pos, i := range valid {
		if pos == 0 || stats[i].AverageDuration != stats[valid[pos-1]].AverageDuration {
			rank = pos + 1
		}
		rows[i].Rank = rank
	}

	return rows
}

// Fastest returns the airline with the shortest valid average, if any.
func Fastest(rows []models.StatRow) (models.StatRow, bool) {
	for _, r := range rows {
		if r.Rank == 1 {
			return r, true
		}
	}
	return models.StatRow{}, false
}
