package applock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBiometryType_Name(t *testing.T) {
	assert.Equal(t, "Fingerprint", BiometryFingerprint.Name())
	assert.Equal(t, "Face Recognition", BiometryFace.Name())
	assert.Equal(t, "Iris Scan", BiometryIris.Name())
	assert.Equal(t, "None", BiometryNone.Name())
	assert.Equal(t, "Biometrics", BiometryType(42).Name())
}

func TestParseBiometryType(t *testing.T) {
	for in, want := range map[string]BiometryType{
		"":            BiometryNone,
		"none":        BiometryNone,
		"Fingerprint": BiometryFingerprint,
		"face":        BiometryFace,
		" iris ":      BiometryIris,
	} {
		got, err := ParseBiometryType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseBiometryType("retina-laser")
	require.Error(t, err)
}

func TestProbeFor(t *testing.T) {
	ctx := context.Background()

	a, err := ProbeFor(BiometryNone).CheckAvailability(ctx)
	require.NoError(t, err)
	assert.Equal(t, Unavailable(), a)

	a, err = ProbeFor(BiometryFace).CheckAvailability(ctx)
	require.NoError(t, err)
	assert.Equal(t, Available(BiometryFace), a)
}
