package particles

import "strings"

// Envelope names a preset emission-rate curve.
type Envelope int

const (
	RampUp Envelope = iota
	Sawtooth
	Mesa
	RampDown
)

// Curve returns the keyframes for the preset.
func (e Envelope) Curve() Interpolator[float64] {
	switch e {
	case RampUp:
		return Scalars(0, 1)
	case Sawtooth:
		return Scalars(0, 1, 0)
	case Mesa:
		return Scalars(0, 1, 1, 1, 1, 1, 1, 0)
	case RampDown:
		return Scalars(1, 0)
	default:
		return Scalars(1)
	}
}

func (e Envelope) String() string {
	switch e {
	case RampUp:
		return "ramp_up"
	case Sawtooth:
		return "sawtooth"
	case Mesa:
		return "mesa"
	case RampDown:
		return "ramp_down"
	default:
		return "unknown"
	}
}

// ParseEnvelope accepts the String form, case-insensitive, with or without underscores.
func ParseEnvelope(s string) (Envelope, bool) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "") {
	case "rampup":
		return RampUp, true
	case "sawtooth":
		return Sawtooth, true
	case "mesa":
		return Mesa, true
	case "rampdown":
		return RampDown, true
	}
	return 0, false
}

// envelopeMean is the average of the piecewise-linear curve over [0, 1].
func envelopeMean(curve Interpolator[float64]) float64 {
	keys := curve.Keyframes()
	switch len(keys) {
	case 0:
		return 0
	case 1:
		return keys[0]
	}
	sum := -(keys[0] + keys[len(keys)-1]) / 2
	for _, k := range keys {
		sum += k
	}
	return sum / float64(len(keys)-1)
}
