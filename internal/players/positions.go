package players

import "strings"

// Position is the main_pos tag used in the player statistics table.
type Position string

const (
	FW Position = "FW"
	MF Position = "MF"
	DF Position = "DF"
)

// Weight is the contribution of one normalized feature to a player's score.
type Weight struct {
	Column string
	Value  float64
}

// Scorer describes one position group: which rows it ranks, which metrics it
// normalizes and how the normalized features are weighted.
type Scorer interface {
	Position() Position
	Name() string
	Metrics() []string
	Weights() []Weight
	// ReportColumns are the columns written to the top-3 and full ranking files.
	ReportColumns() []string
}

// Scorers returns the forward, midfielder and defender scorers in report order.
func Scorers() []Scorer {
	return []Scorer{ForwardScorer{}, MidfielderScorer{}, DefenderScorer{}}
}

// ScorerFor finds the scorer for a position tag or a position name
// ("FW" or "forward").
func ScorerFor(position string) (Scorer, bool) {
	for _, s := range Scorers() {
		if strings.EqualFold(string(s.Position()), position) || strings.EqualFold(s.Name(), position) {
			return s, true
		}
	}
	return nil, false
}

type ForwardScorer struct{}

func (ForwardScorer) Position() Position { return FW }
func (ForwardScorer) Name() string       { return "Forward" }

func (ForwardScorer) Metrics() []string {
	return []string{
		"gls_per90", "g_minus_pkgls_per90", "g_plus_agls_per90",
		"g_plus_a_minus_pkgls_per90", "xggls_per90", "xg_plus_xaggls_per90",
		"npxggls_per90", "astgls_per90", "xaggls_per90", "sca_sca90",
		"take_ons_succ_pct", "carries_prgdist", "carries_prgc",
		"receiving_prgr", "performance_off", "teamsuccess_plus_minus90",
	}
}

func (ForwardScorer) Weights() []Weight {
	return []Weight{
		{"gls_per90_norm", 0.15},
		{"g_minus_pkgls_per90_norm", 0.10},
		{"g_plus_agls_per90_norm", 0.05},
		{"g_plus_a_minus_pkgls_per90_norm", 0.05},
		{"xggls_per90_norm", 0.07},
		{"xg_plus_xaggls_per90_norm", 0.07},
		{"npxggls_per90_norm", 0.06},
		{"astgls_per90_norm", 0.06},
		{"xaggls_per90_norm", 0.06},
		{"sca_sca90_norm", 0.03},
		{"take_ons_succ_pct_norm", 0.05},
		{"carries_prgdist_norm", 0.05},
		{"carries_prgc_norm", 0.05},
		{"receiving_prgr_norm", 0.05},
		{"performance_off_norm", 0.05},
		{"teamsuccess_plus_minus90_norm", 0.05},
	}
}

func (ForwardScorer) ReportColumns() []string {
	return []string{
		"player", "score",
		"g_minus_pkgls_per90_norm", "xggls_per90_norm", "xaggls_per90_norm",
		"take_ons_succ_pct_norm", "carries_prgc_norm", "receiving_prgr_norm",
	}
}

type MidfielderScorer struct{}

func (MidfielderScorer) Position() Position { return MF }
func (MidfielderScorer) Name() string       { return "Midfielder" }

func (MidfielderScorer) Metrics() []string {
	return []string{
		"progression_prgp", "progression_prgr", "progression_prgc",
		"pass_types_live", "carries_prgdist", "xaggls_per90", "astgls_per90",
		"sca_sca90", "xg_plus_xaggls_per90", "g_plus_agls_per90",
		"take_ons_succ_pct", "receiving_prgr", "touches_mid_3rd",
		"performance_int", "teamsuccess_plus_minus90",
	}
}

func (MidfielderScorer) Weights() []Weight {
	return []Weight{
		{"progression_prgp_norm", 0.12},
		{"progression_prgr_norm", 0.10},
		{"progression_prgc_norm", 0.08},
		{"pass_types_live_norm", 0.05},
		{"carries_prgdist_norm", 0.05},
		{"xaggls_per90_norm", 0.10},
		{"astgls_per90_norm", 0.08},
		{"sca_sca90_norm", 0.07},
		{"xg_plus_xaggls_per90_norm", 0.05},
		{"g_plus_agls_per90_norm", 0.05},
		{"take_ons_succ_pct_norm", 0.05},
		{"receiving_prgr_norm", 0.05},
		{"touches_mid_3rd_norm", 0.05},
		{"performance_int_norm", 0.05},
		{"teamsuccess_plus_minus90_norm", 0.05},
	}
}

func (MidfielderScorer) ReportColumns() []string {
	return []string{
		"player", "score",
		"progression_prgp_norm", "progression_prgr_norm", "xaggls_per90_norm",
		"sca_sca90_norm", "touches_mid_3rd_norm", "performance_int_norm",
	}
}

// DefenderScorer penalizes cards and errors leading to shots.
type DefenderScorer struct{}

func (DefenderScorer) Position() Position { return DF }
func (DefenderScorer) Name() string       { return "Defender" }

func (DefenderScorer) Metrics() []string {
	return []string{
		"performance_int", "performance_tklw", "blocks_blocks",
		"aerialduels_won_pct", "progression_prgp", "progression_prgr", "progression_prgc",
		"pass_types_live", "touches_def_3rd", "receiving_prgr", "teamsuccess_plus_minus90",
		"take_ons_succ_pct", "carries_prgdist", "performance_crdy", "performance_crdr",
		"err",
	}
}

func (DefenderScorer) Weights() []Weight {
	return []Weight{
		{"performance_int_norm", 0.12},
		{"performance_tklw_norm", 0.12},
		{"blocks_blocks_norm", 0.10},
		{"aerialduels_won_pct_norm", 0.06},
		{"progression_prgp_norm", 0.08},
		{"progression_prgr_norm", 0.06},
		{"progression_prgc_norm", 0.06},
		{"pass_types_live_norm", 0.05},
		{"touches_def_3rd_norm", 0.05},
		{"receiving_prgr_norm", 0.05},
		{"teamsuccess_plus_minus90_norm", 0.05},
		{"take_ons_succ_pct_norm", 0.05},
		{"carries_prgdist_norm", 0.05},
		{"performance_crdy_norm", -0.03},
		{"performance_crdr_norm", -0.03},
		{"err_norm", -0.05},
	}
}

func (DefenderScorer) ReportColumns() []string {
	return []string{
		"player", "score",
		"performance_tklw_norm", "performance_int_norm", "blocks_blocks_norm",
		"aerialduels_won_pct_norm", "progression_prgp_norm", "err_norm",
	}
}
