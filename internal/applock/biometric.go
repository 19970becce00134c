package applock

import (
	"context"
	"fmt"
	"strings"
)

// BiometryType is the kind of biometric sensor a device offers.
type BiometryType int

const (
	BiometryNone BiometryType = iota
	BiometryFingerprint
	BiometryFace
	BiometryIris
)

// Name is the user facing name of t.
func (t BiometryType) Name() string {
	switch t {
	case BiometryFingerprint:
		return "Fingerprint"
	case BiometryFace:
		return "Face Recognition"
	case BiometryIris:
		return "Iris Scan"
	case BiometryNone:
		return "None"
	default:
		return "Biometrics"
	}
}

func (t BiometryType) String() string { return t.Name() }

// ParseBiometryType maps a config value (none, fingerprint, face, iris).
func ParseBiometryType(s string) (BiometryType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return BiometryNone, nil
	case "fingerprint", "touch":
		return BiometryFingerprint, nil
	case "face":
		return BiometryFace, nil
	case "iris":
		return BiometryIris, nil
	default:
		return BiometryNone, fmt.Errorf("unknown biometry type %q", s)
	}
}

// BiometricAvailability is either unavailable or available with a type.
type BiometricAvailability struct {
	Available bool
	Type      BiometryType
}

func Unavailable() BiometricAvailability {
	return BiometricAvailability{}
}

func Available(t BiometryType) BiometricAvailability {
	return BiometricAvailability{Available: true, Type: t}
}

// BiometricProbe asks the platform whether biometric authentication can be
// used. Matching itself happens on the platform side.
type BiometricProbe interface {
	CheckAvailability(ctx context.Context) (BiometricAvailability, error)
}

// StaticProbe reports a fixed availability. It backs the CLI, where the
// sensor kind comes from configuration, and tests.
type StaticProbe struct {
	Availability BiometricAvailability
}

func (p StaticProbe) CheckAvailability(context.Context) (BiometricAvailability, error) {
	return p.Availability, nil
}

// ProbeFor builds a StaticProbe from a configured biometry type.
func ProbeFor(t BiometryType) StaticProbe {
	if t == BiometryNone {
		return StaticProbe{Availability: Unavailable()}
	}
	return StaticProbe{Availability: Available(t)}
}
