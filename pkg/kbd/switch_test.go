package kbd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodecs(t *testing.T) {
	testCases := []struct {
		name   string
		codec  Codec
		id     SwitchID
		expect []byte
	}{
		{"plain", PlainCodec{}, Switch(1, 2), []byte{1, 2}},
		{"left", TaggedCodec{}, Switch(3, 4).Left(), []byte{0, 3, 4}},
		{"right", TaggedCodec{}, Switch(5, 6).Right(), []byte{1, 5, 6}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := make([]byte, tc.codec.Size())
			tc.codec.Encode(buf, tc.id)
			require.Equal(t, tc.expect, buf)
			id, err := tc.codec.Decode(buf)
			require.NoError(t, err)
			require.Equal(t, tc.id, id)
		})
	}
}

func TestTaggedCodecUntagged(t *testing.T) {
	buf := make([]byte, TaggedCodec{}.Size())
	TaggedCodec{}.Encode(buf, Switch(7, 8))
	require.Equal(t, []byte{0, 7, 8}, buf)
	id, err := TaggedCodec{}.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, Switch(7, 8).Left(), id)
	require.Equal(t, Switch(7, 8).Right(), id.Right())
}

func TestCodecInvalid(t *testing.T) {
	_, err := TaggedCodec{}.Decode([]byte{2, 0, 0})
	require.Equal(t, ErrInvalidSwitchData, err)
	_, err = TaggedCodec{}.Decode([]byte{0, 0})
	require.Equal(t, ErrInvalidSwitchData, err)
	_, err = PlainCodec{}.Decode([]byte{0})
	require.Equal(t, ErrInvalidSwitchData, err)
}

func TestSides(t *testing.T) {
	require.Equal(t, SideRight, SideLeft.Opposite())
	require.Equal(t, SideLeft, SideRight.Opposite())
	require.Equal(t, SideNone, SideNone.Opposite())
	side, err := ParseSide("right")
	require.NoError(t, err)
	require.Equal(t, SideRight, side)
	_, err = ParseSide("middle")
	require.Error(t, err)
	require.Equal(t, "left(1,2)", Switch(1, 2).Left().String())
	require.Equal(t, "(1,2)", Switch(1, 2).String())
}
