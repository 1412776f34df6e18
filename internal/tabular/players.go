package tabular

import (
	"io"
	"strconv"

	"github.com/utakatalp/epl-metrics/internal/players"
)

var playerKeyColumns = map[string]bool{"player": true, "main_pos": true, "playing_time_min": true}

// ParsePlayers reads the merged player table. Every column other than player,
// main_pos and playing_time_min is kept as a raw numeric stat.
func ParsePlayers(r io.Reader) ([]players.Player, error) {
	t, err := readTable(r, "player", "main_pos", "playing_time_min")
	if err != nil {
		return nil, err
	}

	out := make([]players.Player, 0, len(t.records))
	for _, rec := range t.records {
		p := players.Player{
			Name:           t.get(rec, "player"),
			MainPos:        t.get(rec, "main_pos"),
			PlayingTimeMin: parseFloat(t.get(rec, "playing_time_min")),
			Stats:          make(map[string]float64, len(t.header)),
		}
		for _, h := range t.header {
			if playerKeyColumns[h] {
				continue
			}
			p.Stats[h] = parseFloat(t.get(rec, h))
		}
		out = append(out, p)
	}
	return out, nil
}

func ReadPlayers(path string) ([]players.Player, error) {
	return readFile(path, ParsePlayers)
}

// WriteRankingTo writes rows projected onto columns. withRank prepends the
// 1-based rank column.
func WriteRankingTo(w io.Writer, rows []players.RankedRow, columns []string, withRank bool) error {
	var header []string
	if withRank {
		header = append(header, "rank")
	}
	header = append(header, columns...)

	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		rec := make([]string, 0, len(header))
		if withRank {
			rec = append(rec, strconv.Itoa(r.Rank))
		}
		for _, c := range columns {
			if c == "player" {
				rec = append(rec, r.Player)
				continue
			}
			rec = append(rec, formatFloat(r.Values[c]))
		}
		out = append(out, rec)
	}
	return writeRecords(w, header, out)
}

func WriteRanking(path string, rows []players.RankedRow, columns []string, withRank bool) error {
	return writeFile(path, func(w io.Writer) error { return WriteRankingTo(w, rows, columns, withRank) })
}
