package players

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrMissingColumn is returned when a metric or report column is not present
// in the player table.
var ErrMissingColumn = errors.New("missing column")

// Player is one row of the merged player statistics table.
type Player struct {
	Name           string
	MainPos        string
	PlayingTimeMin float64
	// Stats holds the raw metric columns; NaN marks a missing value.
	Stats map[string]float64
	// Norm holds the derived <metric>_norm features for the player's position.
	Norm  map[string]float64
	Score float64
}

// Value looks up a numeric column by its table name.
func (p Player) Value(column string) (float64, error) {
	switch column {
	case "score":
		return p.Score, nil
	case "playing_time_min":
		return p.PlayingTimeMin, nil
	}
	if strings.HasSuffix(column, "_norm") {
		if v, ok := p.Norm[column]; ok {
			return v, nil
		}
	}
	if v, ok := p.Stats[column]; ok {
		return v, nil
	}
	return math.NaN(), fmt.Errorf("%w: %s", ErrMissingColumn, column)
}

func (p Player) clone() Player {
	c := p
	c.Stats = make(map[string]float64, len(p.Stats))
	for k, v := range p.Stats {
		c.Stats[k] = v
	}
	c.Norm = make(map[string]float64)
	c.Score = 0
	return c
}
