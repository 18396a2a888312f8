package analyzer

// Features is the per-frame audio snapshot handed to every visual consumer.
// Raw band values are instantaneous and may spike frame to frame; the *Smooth
// variants are low-pass filtered, and BeatIntensity is a decaying pulse that
// jumps to 1 on a detected bass transient. Every field stays in [0,1].
type Features struct {
	Bass    float64 `json:"bass"`
	Mid     float64 `json:"mid"`
	High    float64 `json:"high"`
	Overall float64 `json:"overall"`

	BassSmooth    float64 `json:"bassSmooth"`
	MidSmooth     float64 `json:"midSmooth"`
	HighSmooth    float64 `json:"highSmooth"`
	OverallSmooth float64 `json:"overallSmooth"`

	BeatIntensity float64 `json:"beatIntensity"`
}

// Silent reports whether the snapshot carries no energy at all.
func (f Features) Silent() bool {
	return f == Features{}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
