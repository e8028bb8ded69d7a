package matrix

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/splitkbd/pkg/kbd"
)

func TestFilterSeed(t *testing.T) {
	var f Filter
	require.Equal(t, float32(100), f.Predict(100))
	mean, variance := f.Estimate()
	require.Equal(t, float32(100), mean)
	require.Equal(t, StateSigma, variance)

	// prior variance 12, gain 12/14
	val := f.Predict(86)
	require.InDelta(t, 100-14*12.0/14.0, val, 1e-4)
	_, variance = f.Estimate()
	require.InDelta(t, 12.0*2.0/14.0, variance, 1e-4)

	f.Reset()
	require.Equal(t, float32(5), f.Predict(5))
}

func TestFilterConvergence(t *testing.T) {
	const truth = 60.0
	noise := []float32{9, -9, 7, -7, 9, -9, 7, -7, 9, -9, 7, -7, 9, -9, 7, -7}
	var f Filter
	prevVariance := float32(math.MaxFloat32)
	for n := 0; n < 64; n++ {
		f.Predict(truth + noise[n%len(noise)])
		_, variance := f.Estimate()
		require.True(t, variance <= prevVariance+1e-6)
		prevVariance = variance
	}
	var sum float64
	for n := 0; n < 64; n++ {
		sum += math.Abs(float64(f.Predict(truth+noise[n%len(noise)])) - truth)
	}
	require.True(t, sum/64 < 9)
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(3)
	require.False(t, d.Update(true))
	require.True(t, d.Update(true))
	require.True(t, d.Update(false))
	require.False(t, d.Update(false))
	require.False(t, d.Update(true))
	require.True(t, d.Update(true))

	d = NewDebouncer(0)
	require.Len(t, d.buf, DefaultDebounceSize)
}

type fakeAnalog struct {
	levels  map[[2]int]uint16
	failing map[[2]int]bool
	col     int
	row     int
	begun   int
	ended   int
	charged int
}

func (h *fakeAnalog) Begin()               { h.begun++ }
func (h *fakeAnalog) End()                 { h.ended++ }
func (h *fakeAnalog) SelectColumn(col int) { h.col = col }
func (h *fakeAnalog) Charge(row int)       { h.row = row; h.charged++ }
func (h *fakeAnalog) Discharge(row int)    {}

func (h *fakeAnalog) ReadADC() (uint16, error) {
	cell := [2]int{h.row, h.col}
	if h.failing[cell] {
		return 0xffff, errors.New("adc busy")
	}
	return h.levels[cell], nil
}

func TestAnalogMatrix(t *testing.T) {
	hw := &fakeAnalog{
		levels:  map[[2]int]uint16{{0, 1}: 200, {1, 2}: 30, {2, 0}: 300},
		failing: map[[2]int]bool{{2, 0}: true},
	}
	m := NewAnalogMatrix(hw, 3, 4)
	m.Side = kbd.SideLeft

	// first scan: debouncers need 2 of 3 votes
	require.Empty(t, m.Scan())
	require.Equal(t, []kbd.SwitchID{kbd.Switch(0, 1).Left()}, m.Scan())
	require.Equal(t, 2, hw.begun)
	require.Equal(t, 2, hw.ended)
	require.Equal(t, 24, hw.charged)
	require.Equal(t, float32(0), m.Level(2, 0))

	hw.levels[[2]int{0, 1}] = 0
	for n := 0; n < 16; n++ {
		m.Scan()
	}
	require.Empty(t, m.Scan())
}

func TestAnalogMatrixRollover(t *testing.T) {
	hw := &fakeAnalog{levels: make(map[[2]int]uint16)}
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			hw.levels[[2]int{row, col}] = 500
		}
	}
	m := NewAnalogMatrix(hw, 4, 5)
	m.Scan()
	switches := m.Scan()
	require.Len(t, switches, kbd.SwitchRollover)
	require.Equal(t, kbd.Switch(0, 0), switches[0])
	require.Equal(t, kbd.Switch(0, 1), switches[4])
}

type fakeDigital struct {
	pressed map[[2]int]bool
	active  int
}

func (h *fakeDigital) SetColumn(col int, active bool) {
	if active {
		h.active = col
	} else {
		h.active = -1
	}
}

func (h *fakeDigital) ReadRow(row int) bool {
	return h.pressed[[2]int{row, h.active}]
}

func TestDigitalMatrix(t *testing.T) {
	hw := &fakeDigital{pressed: map[[2]int]bool{{1, 0}: true, {0, 2}: true}}
	m := NewDigitalMatrix(hw, 2, 3)
	m.Side = kbd.SideRight
	require.Equal(t, []kbd.SwitchID{kbd.Switch(1, 0).Right(), kbd.Switch(0, 2).Right()}, m.Scan())
}
