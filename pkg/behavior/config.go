package behavior

import "time"

// WallFollowConfig tunes the maze level. Distances in cm.
type WallFollowConfig struct {
	WallTarget    float64 `json:"wall_target" yaml:"wall_target"`       // desired right wall distance
	WallNear      float64 `json:"wall_near" yaml:"wall_near"`           // a side wall is present below this
	OpenSide      float64 `json:"open_side" yaml:"open_side"`           // right opening above this
	SafeFront     float64 `json:"safe_front" yaml:"safe_front"`         // avoid below this
	GapAhead      float64 `json:"gap_ahead" yaml:"gap_ahead"`           // corridor ahead is open above this
	ExitThreshold float64 `json:"exit_threshold" yaml:"exit_threshold"` // outside when everything is further

	SpeedForward float64 `json:"speed_forward" yaml:"speed_forward"`
	SpeedTurn    float64 `json:"speed_turn" yaml:"speed_turn"`
	Kp           float64 `json:"kp" yaml:"kp"`
	MaxSteer     float64 `json:"max_steer" yaml:"max_steer"`

	StableSamples int           `json:"stable_samples" yaml:"stable_samples"`
	Interval      time.Duration `json:"interval" yaml:"interval"`
	TurnIn        time.Duration `json:"turn_in" yaml:"turn_in"`
	TurnSettle    time.Duration `json:"turn_settle" yaml:"turn_settle"`
	Corridor      time.Duration `json:"corridor" yaml:"corridor"`
	AntiSpin      time.Duration `json:"anti_spin" yaml:"anti_spin"`
	Probe         time.Duration `json:"probe" yaml:"probe"`
	ProbePivot    time.Duration `json:"probe_pivot" yaml:"probe_pivot"`
	AvoidReverse  time.Duration `json:"avoid_reverse" yaml:"avoid_reverse"`
	AvoidPivot    time.Duration `json:"avoid_pivot" yaml:"avoid_pivot"`
}

// DefaultWallFollowConfig returns the tuning used on the competition maze.
func DefaultWallFollowConfig() WallFollowConfig {
	return WallFollowConfig{
		WallTarget:    14,
		WallNear:      28,
		OpenSide:      38,
		SafeFront:     18,
		GapAhead:      60,
		ExitThreshold: 110,
		SpeedForward:  22,
		SpeedTurn:     16,
		Kp:            1.0,
		MaxSteer:      12,
		StableSamples: 3,
		Interval:      20 * time.Millisecond,
		TurnIn:        350 * time.Millisecond,
		TurnSettle:    200 * time.Millisecond,
		Corridor:      500 * time.Millisecond,
		AntiSpin:      3500 * time.Millisecond,
		Probe:         400 * time.Millisecond,
		ProbePivot:    200 * time.Millisecond,
		AvoidReverse:  220 * time.Millisecond,
		AvoidPivot:    300 * time.Millisecond,
	}
}

// BalanceConfig tunes the balance beam level. Angles in degrees.
type BalanceConfig struct {
	SpeedUp     float64 `json:"speed_up" yaml:"speed_up"`
	SpeedUpSlow float64 `json:"speed_up_slow" yaml:"speed_up_slow"`
	SpeedDown   float64 `json:"speed_down" yaml:"speed_down"`
	TrimLeft    float64 `json:"trim_left" yaml:"trim_left"`
	TrimRight   float64 `json:"trim_right" yaml:"trim_right"`

	Interval time.Duration `json:"interval" yaml:"interval"`

	UpMinDeg         float64       `json:"up_min_deg" yaml:"up_min_deg"`
	UpSlowDeg        float64       `json:"up_slow_deg" yaml:"up_slow_deg"`
	TiltDropDeg      float64       `json:"tilt_drop_deg" yaml:"tilt_drop_deg"`
	MidZeroDeg       float64       `json:"mid_zero_deg" yaml:"mid_zero_deg"`
	MidStableSamples int           `json:"mid_stable_samples" yaml:"mid_stable_samples"`
	MidWindow        time.Duration `json:"mid_window" yaml:"mid_window"`

	DescMinDeg         float64 `json:"desc_min_deg" yaml:"desc_min_deg"`
	DescSamplesArm     int     `json:"desc_samples_arm" yaml:"desc_samples_arm"`
	FinalZeroDeg       float64 `json:"final_zero_deg" yaml:"final_zero_deg"`
	FinalStableSamples int     `json:"final_stable_samples" yaml:"final_stable_samples"`
	DerivEps           float64 `json:"deriv_eps" yaml:"deriv_eps"`
	GyroStillDPS       float64 `json:"gyro_still_dps" yaml:"gyro_still_dps"`
}

// DefaultBalanceConfig returns the tuning for the standard tilting beam.
func DefaultBalanceConfig() BalanceConfig {
	return BalanceConfig{
		SpeedUp:            28,
		SpeedUpSlow:        20,
		SpeedDown:          24,
		Interval:           15 * time.Millisecond,
		UpMinDeg:           4,
		UpSlowDeg:          10,
		TiltDropDeg:        7,
		MidZeroDeg:         5,
		MidStableSamples:   1,
		MidWindow:          900 * time.Millisecond,
		DescMinDeg:         6,
		DescSamplesArm:     4,
		FinalZeroDeg:       4,
		FinalStableSamples: 5,
		DerivEps:           0.6,
		GyroStillDPS:       8.0,
	}
}

// TileConfig tunes the colour tile round trip.
type TileConfig struct {
	SpeedForward float64 `json:"speed_forward" yaml:"speed_forward"`
	SpeedBack    float64 `json:"speed_back" yaml:"speed_back"` // negative: reversing
	SpeedExit    float64 `json:"speed_exit" yaml:"speed_exit"`
	SpeedPivot   float64 `json:"speed_pivot" yaml:"speed_pivot"`

	Interval time.Duration `json:"interval" yaml:"interval"`
	Turn     time.Duration `json:"turn" yaml:"turn"`
	ExitRun  time.Duration `json:"exit_run" yaml:"exit_run"`
	Settle   time.Duration `json:"settle" yaml:"settle"` // pause after every hard stop

	TileDwell  int     `json:"tile_dwell" yaml:"tile_dwell"`
	HueBins    int     `json:"hue_bins" yaml:"hue_bins"`
	DarkCutoff float64 `json:"dark_cutoff" yaml:"dark_cutoff"`
	Tolerance  int     `json:"tolerance" yaml:"tolerance"`

	EndStopCM   float64       `json:"end_stop_cm" yaml:"end_stop_cm"`
	EndTimeout  time.Duration `json:"end_timeout" yaml:"end_timeout"`
	BackTimeout time.Duration `json:"back_timeout" yaml:"back_timeout"`
}

// DefaultTileConfig returns the tuning for the tile strip.
func DefaultTileConfig() TileConfig {
	return TileConfig{
		SpeedForward: 22,
		SpeedBack:    -18,
		SpeedExit:    26,
		SpeedPivot:   22,
		Interval:     40 * time.Millisecond,
		Turn:         700 * time.Millisecond,
		ExitRun:      1200 * time.Millisecond,
		Settle:       120 * time.Millisecond,
		TileDwell:    4,
		HueBins:      12,
		DarkCutoff:   0.35,
		Tolerance:    1,
		EndStopCM:    16,
		EndTimeout:   18 * time.Second,
		BackTimeout:  18 * time.Second,
	}
}

// WithDefaults returns c with every zero field replaced by its default.
func (c WallFollowConfig) WithDefaults() WallFollowConfig {
	d := DefaultWallFollowConfig()
	orFloat(&c.WallTarget, d.WallTarget)
	orFloat(&c.WallNear, d.WallNear)
	orFloat(&c.OpenSide, d.OpenSide)
	orFloat(&c.SafeFront, d.SafeFront)
	orFloat(&c.GapAhead, d.GapAhead)
	orFloat(&c.ExitThreshold, d.ExitThreshold)
	orFloat(&c.SpeedForward, d.SpeedForward)
	orFloat(&c.SpeedTurn, d.SpeedTurn)
	orFloat(&c.Kp, d.Kp)
	orFloat(&c.MaxSteer, d.MaxSteer)
	orInt(&c.StableSamples, d.StableSamples)
	orDuration(&c.Interval, d.Interval)
	orDuration(&c.TurnIn, d.TurnIn)
	orDuration(&c.TurnSettle, d.TurnSettle)
	orDuration(&c.Corridor, d.Corridor)
	orDuration(&c.AntiSpin, d.AntiSpin)
	orDuration(&c.Probe, d.Probe)
	orDuration(&c.ProbePivot, d.ProbePivot)
	orDuration(&c.AvoidReverse, d.AvoidReverse)
	orDuration(&c.AvoidPivot, d.AvoidPivot)
	return c
}

// WithDefaults returns c with every zero field replaced by its default.
// Trims stay as given; zero is the untrimmed wheel.
func (c BalanceConfig) WithDefaults() BalanceConfig {
	d := DefaultBalanceConfig()
	orFloat(&c.SpeedUp, d.SpeedUp)
	orFloat(&c.SpeedUpSlow, d.SpeedUpSlow)
	orFloat(&c.SpeedDown, d.SpeedDown)
	orDuration(&c.Interval, d.Interval)
	orFloat(&c.UpMinDeg, d.UpMinDeg)
	orFloat(&c.UpSlowDeg, d.UpSlowDeg)
	orFloat(&c.TiltDropDeg, d.TiltDropDeg)
	orFloat(&c.MidZeroDeg, d.MidZeroDeg)
	orInt(&c.MidStableSamples, d.MidStableSamples)
	orDuration(&c.MidWindow, d.MidWindow)
	orFloat(&c.DescMinDeg, d.DescMinDeg)
	orInt(&c.DescSamplesArm, d.DescSamplesArm)
	orFloat(&c.FinalZeroDeg, d.FinalZeroDeg)
	orInt(&c.FinalStableSamples, d.FinalStableSamples)
	orFloat(&c.DerivEps, d.DerivEps)
	orFloat(&c.GyroStillDPS, d.GyroStillDPS)
	return c
}

// WithDefaults returns c with every zero field replaced by its default.
// A zero tolerance is kept: it asks for exact bucket matches.
func (c TileConfig) WithDefaults() TileConfig {
	d := DefaultTileConfig()
	orFloat(&c.SpeedForward, d.SpeedForward)
	orFloat(&c.SpeedBack, d.SpeedBack)
	orFloat(&c.SpeedExit, d.SpeedExit)
	orFloat(&c.SpeedPivot, d.SpeedPivot)
	orDuration(&c.Interval, d.Interval)
	orDuration(&c.Turn, d.Turn)
	orDuration(&c.ExitRun, d.ExitRun)
	orDuration(&c.Settle, d.Settle)
	orInt(&c.TileDwell, d.TileDwell)
	orInt(&c.HueBins, d.HueBins)
	orFloat(&c.DarkCutoff, d.DarkCutoff)
	orFloat(&c.EndStopCM, d.EndStopCM)
	orDuration(&c.EndTimeout, d.EndTimeout)
	orDuration(&c.BackTimeout, d.BackTimeout)
	return c
}

func orFloat(v *float64, d float64) {
	if *v == 0 {
		*v = d
	}
}

func orInt(v *int, d int) {
	if *v == 0 {
		*v = d
	}
}

func orDuration(v *time.Duration, d time.Duration) {
	if *v == 0 {
		*v = d
	}
}
