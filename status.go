package cc1101

// ChipState is the operating state reported in bits 6-4 of the chip status
// byte. StateSleep is never reported on the wire: pulling CSn low to talk to
// the chip wakes it, so sleep can only be tracked by the driver.
type ChipState uint8

const (
	StateIdle ChipState = iota
	StateRx
	StateTx
	StateFSTxOn
	StateCalibrate
	StateSettling
	StateRxOverflow
	StateTxUnderflow
	StateSleep
)

func (s ChipState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRx:
		return "RX"
	case StateTx:
		return "TX"
	case StateFSTxOn:
		return "FSTXON"
	case StateCalibrate:
		return "CALIBRATE"
	case StateSettling:
		return "SETTLING"
	case StateRxOverflow:
		return "RXFIFO_OVERFLOW"
	case StateTxUnderflow:
		return "TXFIFO_UNDERFLOW"
	case StateSleep:
		return "SLEEP"
	}
	return "UNKNOWN"
}

// Status is the chip status byte returned on MISO while the header byte of
// every SPI transaction is shifted out, so each transaction refreshes it for
// free. Bit 7 is CHIP_RDYn, bits 6-4 the state, bits 3-0 the FIFO count.
type Status uint8

// Ready reports whether the crystal oscillator is stable (CHIP_RDYn low).
func (s Status) Ready() bool {
	return s&0x80 == 0
}

// State returns the operating state field.
func (s Status) State() ChipState {
	return ChipState(s>>4) & 0x07
}

// FifoBytes returns the FIFO count field: bytes available in the RX FIFO or
// bytes free in the TX FIFO, depending on the last active mode. The field
// saturates at 15.
func (s Status) FifoBytes() uint8 {
	return uint8(s) & 0x0f
}
