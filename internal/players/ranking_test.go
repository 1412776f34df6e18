package players

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlayer(name string, pos Position, minutes float64, scorer Scorer, value func(metric string) float64) Player {
	stats := make(map[string]float64)
	for _, s := range Scorers() {
		for _, m := range s.Metrics() {
			stats[m] = 0
		}
	}
	for _, m := range scorer.Metrics() {
		stats[m] = value(m)
	}
	return Player{Name: name, MainPos: string(pos), PlayingTimeMin: minutes, Stats: stats}
}

func forwards(n int) []Player {
	var out []Player
	for i := 1; i <= n; i++ {
		v := float64(i)
		out = append(out, newPlayer(fmt.Sprintf("Forward %d", i), FW, 1800, ForwardScorer{}, func(string) float64 { return v }))
	}
	return out
}

func TestTopNFiveForwards(t *testing.T) {
	r, err := Rank(ForwardScorer{}, forwards(5))
	require.NoError(t, err)

	top := r.TopN(3)
	require.Len(t, top, 3)
	assert.Equal(t, "Forward 5", top[0].Name)
	assert.Equal(t, "Forward 4", top[1].Name)
	assert.Equal(t, "Forward 3", top[2].Name)

	seen := make(map[string]bool)
	for i, p := range top {
		assert.False(t, seen[p.Name], "duplicate %s", p.Name)
		seen[p.Name] = true
		if i > 0 {
			assert.GreaterOrEqual(t, top[i-1].Score, p.Score)
		}
	}
	// forward weights sum to one, so the best player on every metric scores 1
	assert.InDelta(t, 1.0, top[0].Score, 1e-9)
}

func TestTopNLargerThanSubset(t *testing.T) {
	r, err := Rank(ForwardScorer{}, forwards(2))
	require.NoError(t, err)
	assert.Len(t, r.TopN(10), 2)
}

func TestTopNNonPositive(t *testing.T) {
	r, err := Rank(ForwardScorer{}, forwards(3))
	require.NoError(t, err)
	for _, n := range []int{0, -1, -10} {
		var top []Player
		require.NotPanics(t, func() { top = r.TopN(n) }, "n=%d", n)
		assert.Empty(t, top, "n=%d", n)
	}
}

func TestFilterByMinutesOddSubset(t *testing.T) {
	minutes := []float64{100, 300, 300, 500, 900}
	var subset []Player
	for i, m := range minutes {
		subset = append(subset, Player{Name: fmt.Sprintf("p%d", i), PlayingTimeMin: m})
	}

	kept := FilterByMinutes(subset)
	require.Len(t, kept, 4)
	for _, p := range kept {
		assert.GreaterOrEqual(t, p.PlayingTimeMin, 300.0)
	}
	assert.Equal(t, "p1", kept[0].Name)
}

func TestFilterByMinutesDropsMissing(t *testing.T) {
	kept := FilterByMinutes([]Player{
		{Name: "a", PlayingTimeMin: 900},
		{Name: "b", PlayingTimeMin: math.NaN()},
		{Name: "c", PlayingTimeMin: 900},
	})
	assert.Len(t, kept, 2)
}

func TestFilterPlayersUsesPositionMedian(t *testing.T) {
	table := forwards(3)
	table[0].PlayingTimeMin = 200
	// midfielders with many minutes must not move the forward threshold
	table = append(table,
		newPlayer("Mid 1", MF, 3000, MidfielderScorer{}, func(string) float64 { return 1 }),
		newPlayer("Mid 2", MF, 3100, MidfielderScorer{}, func(string) float64 { return 2 }),
	)

	r := NewRanking(ForwardScorer{}, table)
	r.FilterPlayers()
	require.Len(t, r.Players(), 2)
	for _, p := range r.Players() {
		assert.Equal(t, "FW", p.MainPos)
	}
}

func TestNormalizationIsPerPosition(t *testing.T) {
	table := forwards(3)
	table = append(table, newPlayer("Mid", MF, 1800, MidfielderScorer{}, func(string) float64 { return 1e6 }))

	r, err := Rank(ForwardScorer{}, table)
	require.NoError(t, err)
	for _, p := range r.Players() {
		for col, v := range p.Norm {
			assert.GreaterOrEqual(t, v, 0.0, col)
			assert.LessOrEqual(t, v, 1.0, col)
		}
	}
	assert.Equal(t, 1.0, r.TopN(1)[0].Norm["sca_sca90_norm"])
}

func TestConstantMetricContributesZero(t *testing.T) {
	var table []Player
	for i := 1; i <= 4; i++ {
		v := float64(i)
		p := newPlayer(fmt.Sprintf("Defender %d", i), DF, 2000, DefenderScorer{}, func(m string) float64 {
			if m == "performance_crdr" {
				return 0
			}
			return v
		})
		table = append(table, p)
	}

	r, err := Rank(DefenderScorer{}, table)
	require.NoError(t, err)
	for _, p := range r.Players() {
		assert.Equal(t, 0.0, p.Norm["performance_crdr_norm"])
		assert.False(t, math.IsNaN(p.Score))
	}
}

func TestDefenderPenalties(t *testing.T) {
	clean := newPlayer("Clean", DF, 2000, DefenderScorer{}, func(string) float64 { return 5 })
	booked := newPlayer("Booked", DF, 2000, DefenderScorer{}, func(m string) float64 {
		switch m {
		case "performance_crdy", "performance_crdr", "err":
			return 9
		}
		return 5
	})
	filler := newPlayer("Filler", DF, 2000, DefenderScorer{}, func(string) float64 { return 1 })

	r, err := Rank(DefenderScorer{}, []Player{booked, clean, filler})
	require.NoError(t, err)

	top := r.TopN(3)
	assert.Equal(t, "Clean", top[0].Name)
	assert.Equal(t, "Booked", top[1].Name)
}

func TestPrepareFeaturesMissingColumn(t *testing.T) {
	p := Player{Name: "x", MainPos: "FW", PlayingTimeMin: 90, Stats: map[string]float64{"gls_per90": 1}}

	_, err := Rank(ForwardScorer{}, []Player{p})
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestAllRanked(t *testing.T) {
	r, err := Rank(ForwardScorer{}, forwards(4))
	require.NoError(t, err)

	rows, err := r.AllRanked(ForwardScorer{}.ReportColumns())
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for i, row := range rows {
		assert.Equal(t, i+1, row.Rank)
		assert.Contains(t, row.Values, "score")
		assert.Contains(t, row.Values, "xggls_per90_norm")
		assert.NotContains(t, row.Values, "player")
	}
	assert.Equal(t, "Forward 4", rows[0].Player)

	_, err = r.AllRanked([]string{"player", "nope"})
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	table := forwards(3)
	_, err := Rank(ForwardScorer{}, table)
	require.NoError(t, err)
	for _, p := range table {
		assert.Empty(t, p.Norm)
		assert.Zero(t, p.Score)
	}
}

func TestScorerFor(t *testing.T) {
	s, ok := ScorerFor("mf")
	require.True(t, ok)
	assert.Equal(t, MF, s.Position())

	s, ok = ScorerFor("Defender")
	require.True(t, ok)
	assert.Equal(t, DF, s.Position())

	_, ok = ScorerFor("GK")
	assert.False(t, ok)
}

func TestWeightsReferenceMetrics(t *testing.T) {
	for _, s := range Scorers() {
		metrics := make(map[string]bool)
		for _, m := range s.Metrics() {
			metrics[m+"_norm"] = true
		}
		for _, w := range s.Weights() {
			assert.True(t, metrics[w.Column], "%s weight %s has no metric", s.Name(), w.Column)
		}
		for _, c := range s.ReportColumns()[2:] {
			assert.True(t, metrics[c], "%s report column %s has no metric", s.Name(), c)
		}
	}
}
