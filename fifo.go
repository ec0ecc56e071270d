package cc1101

// FIFO transfer engine: burst moves between driver buffers and the chip's
// 64-byte TX/RX FIFOs. The minimal driver moves at most one FIFO fill per
// packet; streaming longer packets by refilling on the FIFO threshold
// interrupt is left to a higher layer.

// checkTxSize validates a payload against the configured packet mode without
// touching hardware.
func (d *Device) checkTxSize(n int) error {
	switch d.mode {
	case PacketVariable:
		// One length byte plus payload must fit the FIFO.
		if n == 0 || n > FIFO_DEPTH-1 {
			return ErrPayloadTooLarge
		}
	case PacketFixed:
		if n != int(d.pktLen) || n > FIFO_DEPTH {
			return ErrPayloadTooLarge
		}
	case PacketInfinite:
		if n == 0 || n > FIFO_DEPTH {
			return ErrPayloadTooLarge
		}
	}
	return nil
}

// writeTxFifo fills the TX FIFO, prepending the length byte in variable
// packet mode.
func (d *Device) writeTxFifo(payload []byte) error {
	if d.mode == PacketVariable {
		if err := d.WriteRegister(REG_FIFO, byte(len(payload))); err != nil {
			return err
		}
	}
	return d.writeBurst(REG_FIFO, payload)
}

// readRxFifo drains len(buf) bytes from the RX FIFO in one burst.
func (d *Device) readRxFifo(buf []byte) error {
	return d.readBurst(REG_FIFO, buf)
}

// rxBytes reads the RXBYTES status register: bits 6-0 count the bytes
// pending in the RX FIFO, bit 7 flags an overflow. On overflow the FIFO is
// flushed immediately and ErrOverflow returned; the caller re-arms with
// StartReceive.
func (d *Device) rxBytes() (uint8, error) {
	v, err := d.ReadStatusRegister(REG_RXBYTES)
	if err != nil {
		return 0, err
	}
	if v&0x80 != 0 {
		if ferr := d.FlushRx(); ferr != nil {
			return 0, ferr
		}
		return 0, ErrOverflow
	}
	return v & 0x7f, nil
}
