package matrix

import "github.com/robotalks/splitkbd/pkg/kbd"

// DigitalHardware drives a plain diode matrix.
type DigitalHardware interface {
	// SetColumn drives a column line.
	SetColumn(col int, active bool)
	// ReadRow reads a row line.
	ReadRow(row int) bool
}

// DigitalMatrix scans a DigitalHardware column by column.
type DigitalMatrix struct {
	Rows int
	Cols int
	Side kbd.Side

	hw DigitalHardware
}

// NewDigitalMatrix creates a DigitalMatrix.
func NewDigitalMatrix(hw DigitalHardware, rows, cols int) *DigitalMatrix {
	return &DigitalMatrix{Rows: rows, Cols: cols, hw: hw}
}

// Scan implements kbd.KeySwitches.
func (m *DigitalMatrix) Scan() []kbd.SwitchID {
	switches := make([]kbd.SwitchID, 0, kbd.SwitchRollover)
	for col := 0; col < m.Cols; col++ {
		m.hw.SetColumn(col, true)
		for row := 0; row < m.Rows; row++ {
			if m.hw.ReadRow(row) && len(switches) < kbd.SwitchRollover {
				switches = append(switches, kbd.SwitchID{Side: m.Side, Row: uint8(row), Col: uint8(col)})
			}
		}
		m.hw.SetColumn(col, false)
	}
	return switches
}
