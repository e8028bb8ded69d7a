package kbd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyClasses(t *testing.T) {
	testCases := []struct {
		key      Key
		noop     bool
		modifier bool
		modified bool
		keyboard bool
		media    bool
	}{
		{None, true, false, false, false, false},
		{Transparent, true, false, false, false, false},
		{A, false, false, false, true, false},
		{ExSel, false, false, false, true, false},
		{LeftControl, false, true, false, false, false},
		{RightGui, false, true, false, false, false},
		{Asterisk, false, false, true, false, false},
		{Question, false, false, true, false, false},
		{MediaPlayPause, false, false, false, false, true},
	}
	for _, tc := range testCases {
		t.Run(tc.key.String(), func(t *testing.T) {
			require.Equal(t, tc.noop, tc.key.IsNoop())
			require.Equal(t, tc.modifier, tc.key.IsModifierKey())
			require.Equal(t, tc.modified, tc.key.IsModifiedKey())
			require.Equal(t, tc.keyboard, tc.key.IsKeyboardKey())
			require.Equal(t, tc.media, tc.key.IsMediaKey())
		})
	}
}

func TestKeyCodes(t *testing.T) {
	code, ok := A.KeyCode()
	require.True(t, ok)
	require.Equal(t, byte(0x04), code)
	code, ok = Asterisk.KeyCode()
	require.True(t, ok)
	require.Equal(t, byte(0x25), code)
	_, ok = LeftShift.KeyCode()
	require.False(t, ok)
	_, ok = MediaMute.KeyCode()
	require.False(t, ok)

	require.Equal(t, byte(0x01), LeftControl.ModifierFlag())
	require.Equal(t, byte(0x08), LeftGui.ModifierFlag())
	require.Equal(t, byte(0x80), RightGui.ModifierFlag())
	require.Equal(t, byte(0x02), Exclamation.ModifierFlag())
	require.Equal(t, byte(0), A.ModifierFlag())

	require.Equal(t, uint16(0x0cd), MediaPlayPause.MediaUsageID())
	require.Equal(t, uint16(0x0e9), MediaVolumeIncrement.MediaUsageID())
	require.Equal(t, uint16(0), A.MediaUsageID())
}

func TestKeyNames(t *testing.T) {
	require.Equal(t, "A", A.String())
	require.Equal(t, "1", Digit1.String())
	require.Equal(t, "ExSel", ExSel.String())
	require.Equal(t, "Key(0x2000)", Key(0x2000).String())

	testCases := []struct {
		name   string
		expect Key
	}{
		{"a", A},
		{"Enter", Enter},
		{"leftshift", LeftShift},
		{"Asterisk", Asterisk},
		{"MediaPlayPause", MediaPlayPause},
		{"transparent", Transparent},
		{"0x0029", Escape},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := ParseKey(tc.name)
			require.NoError(t, err)
			require.Equal(t, tc.expect, key)
		})
	}
	_, err := ParseKey("NoSuchKey")
	require.Error(t, err)
}

func TestKeyChar(t *testing.T) {
	require.Equal(t, byte('a'), A.Char())
	require.Equal(t, byte('1'), Digit1.Char())
	require.Equal(t, byte('R'), Enter.Char())
	require.Equal(t, byte('E'), Escape.Char())
	require.Equal(t, byte(' '), LeftShift.Char())
	require.Equal(t, byte(' '), Asterisk.Char())
}
