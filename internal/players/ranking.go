package players

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// Ranking runs a Scorer over a player table. The stages must be called in
// order: FilterPlayers, PrepareFeatures, ComputeScore.
type Ranking struct {
	scorer   Scorer
	players  []Player
	filtered []Player
	log      *logrus.Entry
}

// RankedRow is a projection of a ranked player onto a set of columns.
type RankedRow struct {
	Rank   int                `json:"rank"`
	Player string             `json:"player"`
	Values map[string]float64 `json:"values"`
}

func NewRanking(scorer Scorer, players []Player) *Ranking {
	return &Ranking{
		scorer:  scorer,
		players: players,
		log:     logrus.WithField("position", scorer.Position()),
	}
}

// Rank runs the whole pipeline for scorer over players.
func Rank(scorer Scorer, players []Player) (*Ranking, error) {
	r := NewRanking(scorer, players)
	r.FilterPlayers()
	if err := r.PrepareFeatures(); err != nil {
		return nil, err
	}
	r.ComputeScore()
	return r, nil
}

// Players returns the filtered position subset in table order.
func (r *Ranking) Players() []Player { return r.filtered }

// FilterPlayers keeps the scorer's position and then drops players below the
// median playing time of that subset. Players on the median are kept.
func (r *Ranking) FilterPlayers() {
	var subset []Player
	for _, p := range r.players {
		if p.MainPos == string(r.scorer.Position()) {
			subset = append(subset, p.clone())
		}
	}
	r.filtered = FilterByMinutes(subset)
	r.log.WithFields(logrus.Fields{
		"candidates": len(subset),
		"kept":       len(r.filtered),
	}).Debug("filtered players by playing time")
}

// FilterByMinutes drops players whose playing time is below the median of
// players. Missing playing time never passes the threshold.
func FilterByMinutes(players []Player) []Player {
	minutes := make([]float64, len(players))
	for i, p := range players {
		minutes[i] = p.PlayingTimeMin
	}
	threshold := Median(minutes)

	kept := make([]Player, 0, len(players))
	for _, p := range players {
		if p.PlayingTimeMin >= threshold {
			kept = append(kept, p)
		}
	}
	return kept
}

// PrepareFeatures smart-scales every scorer metric over the filtered subset.
// A metric without spread contributes zero for every player.
func (r *Ranking) PrepareFeatures() error {
	for _, metric := range r.scorer.Metrics() {
		column := make([]float64, len(r.filtered))
		for i, p := range r.filtered {
			v, ok := p.Stats[metric]
			if !ok {
				return fmt.Errorf("%s scorer: %w: %s", r.scorer.Name(), ErrMissingColumn, metric)
			}
			column[i] = v
		}

		scaled, logged, err := SmartScale(column, OutlierFactor)
		if errors.Is(err, ErrConstantSeries) {
			if len(column) > 0 {
				r.log.WithField("metric", metric).Warn("metric has no spread, normalized to zero")
			}
			scaled = make([]float64, len(column))
		} else if err != nil {
			return fmt.Errorf("scaling %s: %w", metric, err)
		}

		name := metric + "_norm"
		for i := range r.filtered {
			v := scaled[i]
			if math.IsNaN(v) {
				v = 0
			}
			r.filtered[i].Norm[name] = v
		}
		r.log.WithFields(logrus.Fields{"metric": metric, "log_scaled": logged}).Debug("scaled metric")
	}
	return nil
}

// ComputeScore sets every filtered player's score to the weighted sum of its
// normalized features.
func (r *Ranking) ComputeScore() {
	weights := r.scorer.Weights()
	for i := range r.filtered {
		score := 0.0
		for _, w := range weights {
			score += r.filtered[i].Norm[w.Column] * w.Value
		}
		r.filtered[i].Score = score
	}
}

// TopN returns the n best players by score. It returns nothing for n <= 0.
func (r *Ranking) TopN(n int) []Player {
	if n <= 0 {
		return []Player{}
	}
	ranked := r.sorted()
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// AllRanked returns every filtered player by descending score with a 1-based
// rank, projected onto columns. "player" maps to the player's name.
func (r *Ranking) AllRanked(columns []string) ([]RankedRow, error) {
	return Project(r.sorted(), columns)
}

// Project builds ranked rows for players in the given order.
func Project(players []Player, columns []string) ([]RankedRow, error) {
	rows := make([]RankedRow, 0, len(players))
	for i, p := range players {
		row := RankedRow{Rank: i + 1, Player: p.Name, Values: make(map[string]float64, len(columns))}
		for _, c := range columns {
			if c == "player" {
				continue
			}
			v, err := p.Value(c)
			if err != nil {
				return nil, err
			}
			row.Values[c] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *Ranking) sorted() []Player {
	ranked := make([]Player, len(r.filtered))
	copy(ranked, r.filtered)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
