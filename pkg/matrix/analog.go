package matrix

import (
	"github.com/golang/glog"

	"github.com/robotalks/splitkbd/pkg/kbd"
)

// DefaultThreshold is the filtered level above which a cell is pressed.
const DefaultThreshold float32 = 40.0

// AnalogHardware drives an electrostatic capacitive matrix sampled
// through a column multiplexer and an ADC.
type AnalogHardware interface {
	// Begin powers up the sensing circuit before a scan.
	Begin()
	// SelectColumn routes a column through the multiplexer.
	SelectColumn(col int)
	// Charge pulses a row and prepares sampling.
	Charge(row int)
	// ReadADC samples the selected cell.
	ReadADC() (uint16, error)
	// Discharge releases a row after sampling.
	Discharge(row int)
	// End powers down the sensing circuit after a scan.
	End()
}

// AnalogMatrix scans an AnalogHardware with per cell filtering
// and debouncing.
type AnalogMatrix struct {
	Rows      int
	Cols      int
	Side      kbd.Side
	Threshold float32

	hw        AnalogHardware
	filters   []Filter
	debounces []*Debouncer
}

// NewAnalogMatrix creates an AnalogMatrix.
func NewAnalogMatrix(hw AnalogHardware, rows, cols int) *AnalogMatrix {
	m := &AnalogMatrix{
		Rows:      rows,
		Cols:      cols,
		Threshold: DefaultThreshold,
		hw:        hw,
		filters:   make([]Filter, rows*cols),
		debounces: make([]*Debouncer, rows*cols),
	}
	for n := range m.debounces {
		m.debounces[n] = NewDebouncer(DefaultDebounceSize)
	}
	return m
}

// Scan implements kbd.KeySwitches.
// Switches beyond kbd.SwitchRollover are dropped.
func (m *AnalogMatrix) Scan() []kbd.SwitchID {
	switches := make([]kbd.SwitchID, 0, kbd.SwitchRollover)
	m.hw.Begin()
	for col := 0; col < m.Cols; col++ {
		m.hw.SelectColumn(col)
		for row := 0; row < m.Rows; row++ {
			m.hw.Charge(row)
			val, err := m.hw.ReadADC()
			if err != nil {
				glog.V(4).Infof("ADC read (%d,%d) error: %v", row, col, err)
				val = 0
			}
			cell := row*m.Cols + col
			level := m.filters[cell].Predict(float32(val))
			if m.debounces[cell].Update(level > m.Threshold) && len(switches) < kbd.SwitchRollover {
				switches = append(switches, kbd.SwitchID{Side: m.Side, Row: uint8(row), Col: uint8(col)})
			}
			m.hw.Discharge(row)
		}
	}
	m.hw.End()
	return switches
}

// Level returns the current filtered level of a cell.
func (m *AnalogMatrix) Level(row, col int) float32 {
	mean, _ := m.filters[row*m.Cols+col].Estimate()
	return mean
}
