package league

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
)

const (
	pointsWin  = 3
	pointsDraw = 1
)

// ScoreLine renders a played match, e.g. "Arsenal FC 2 - 0 Wolverhampton Wanderers FC".
func (m Match) ScoreLine() string {
	return fmt.Sprintf("%s %d - %d %s", m.HomeTeam, m.HomeScore, m.AwayScore, m.AwayTeam)
}

// record adds one match seen from this team's side.
func (e *StandingsEntry) record(scored, conceded int) {
	e.Played++
	e.GoalsFor += scored
	e.GoalsAgainst += conceded
	e.GoalDiff = e.GoalsFor - e.GoalsAgainst

	switch MatchResult(scored, conceded) {
	case 1:
		e.Wins++
	case 0.5:
		e.Draws++
	default:
		e.Losses++
	}
	e.Points = pointsWin*e.Wins + pointsDraw*e.Draws
}

// ranksAbove orders the table by points, goal difference, goals scored and
// finally name.
func (e StandingsEntry) ranksAbove(o StandingsEntry) bool {
	switch {
	case e.Points != o.Points:
		return e.Points > o.Points
	case e.GoalDiff != o.GoalDiff:
		return e.GoalDiff > o.GoalDiff
	case e.GoalsFor != o.GoalsFor:
		return e.GoalsFor > o.GoalsFor
	}
	return e.Team < o.Team
}

// CalculateTable builds the points table from played matches.
func CalculateTable(matches []Match) []StandingsEntry {
	pos := make(map[string]int)
	var table []StandingsEntry
	entry := func(team string) *StandingsEntry {
		i, ok := pos[team]
		if !ok {
			i = len(table)
			pos[team] = i
			table = append(table, StandingsEntry{Team: team})
		}
		return &table[i]
	}

	for _, m := range matches {
		entry(m.HomeTeam).record(m.HomeScore, m.AwayScore)
		entry(m.AwayTeam).record(m.AwayScore, m.HomeScore)
	}

	sort.Slice(table, func(i, j int) bool { return table[i].ranksAbove(table[j]) })
	return table
}

// PrintTable writes an aligned standings table to w.
func PrintTable(w io.Writer, label string, table []StandingsEntry) error {
	fmt.Fprintln(w, label)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tTeam\tP\tW\tD\tL\tGF\tGA\tGD\tPts\t")
	for i, e := range table {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%+d\t%d\t\n",
			i+1, e.Team, e.Played, e.Wins, e.Draws, e.Losses,
			e.GoalsFor, e.GoalsAgainst, e.GoalDiff, e.Points)
	}
	return tw.Flush()
}
