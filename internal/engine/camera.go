package engine

// Camera defaults. The viewpoint idles at a gentle orbit and leans in when
// the low end gets busy.
const (
	camBaseZ        = 14.0
	camBaseRotation = 0.15 // radians per second
	camBassZoom     = 0.2  // fraction of Z pulled in at full bass
	camBeatSpin     = 0.9
	camEnergySpin   = 1.5
	camPitchRange   = 0.35
)

// Camera tracks the viewpoint as interpolated scalars: position, orbital
// speed and pitch each ease toward their targets like every other channel.
type Camera struct {
	X             Scalar
	Y             Scalar
	Z             Scalar
	RotationSpeed Scalar
	Pitch         Scalar
}

func newCamera() Camera {
	var c Camera
	c.Z.Snap(camBaseZ)
	c.RotationSpeed.Snap(camBaseRotation)
	return c
}

// retarget points the camera according to the current audio frame.
func (c *Camera) retarget(bass, overall, beat, speed float64) {
	c.Z.Target = camBaseZ * (1 - bass*camBassZoom)
	c.RotationSpeed.Target = camBaseRotation * (1 + overall*camEnergySpin + beat*camBeatSpin) * speed
	c.Pitch.Target = (overall - 0.5) * camPitchRange
}

func (c *Camera) advance(factor float64) {
	c.X.advance(factor)
	c.Y.advance(factor)
	c.Z.advance(factor)
	c.RotationSpeed.advance(factor)
	c.Pitch.advance(factor)
}

// EffectState is the live post-processing block: each value eases toward
// the mapper's targets under the effect factor.
type EffectState struct {
	Bloom      Scalar
	ColorShift Scalar
	TrailDamp  Scalar
	Exposure   Scalar
}

func (s *EffectState) advance(factor float64) {
	s.Bloom.advance(factor)
	s.ColorShift.advance(factor)
	s.TrailDamp.advance(factor)
	s.Exposure.advance(factor)
}
