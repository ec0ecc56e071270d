package cc1101

import "fmt"

// chipSim emulates a CC1101 behind the SPI seam: it decodes transaction
// headers, answers with a synthesized status byte, keeps a register file and
// FIFO contents, and walks strobe-driven state transitions through short
// CALIBRATE/SETTLING transients. Every transaction is appended to log so
// tests can assert wire-level sequences.
type chipSim struct {
	regs   [REG_TEST0 + 1]byte
	rxFifo []byte
	txFifo []byte
	sent   [][]byte

	state      ChipState
	pending    ChipState
	countdown  int
	rxOverflow bool

	rssi byte
	lqi  byte

	selected bool
	log      []string
	failNext error
}

func newChipSim() *chipSim {
	return &chipSim{state: StateIdle, pending: StateIdle}
}

// pins returns a chip select closure wired to the simulator.
func (c *chipSim) pins() PinOutput {
	return func(level bool) { c.selected = !level }
}

func (c *chipSim) logf(format string, args ...interface{}) {
	c.log = append(c.log, fmt.Sprintf(format, args...))
}

// step advances one transient tick. Called once per transaction, so
// CALIBRATE and SETTLING are observable for a couple of status polls before
// resolving.
func (c *chipSim) step() {
	if c.countdown == 0 {
		return
	}
	c.countdown--
	if c.countdown == 0 {
		if c.state == StateTx {
			c.sent = append(c.sent, append([]byte(nil), c.txFifo...))
			c.txFifo = nil
		}
		c.state = c.pending
	}
}

func (c *chipSim) statusByte() byte {
	st := c.state
	var fifo int
	switch st {
	case StateRxOverflow:
		fifo = 15
	case StateRx:
		fifo = len(c.rxFifo)
	default:
		fifo = FIFO_DEPTH - len(c.txFifo)
	}
	if fifo > 15 {
		fifo = 15
	}
	return byte(st)<<4 | byte(fifo)
}

func (c *chipSim) strobe(cmd uint8) {
	c.log = append(c.log, strobeName(cmd))
	switch cmd {
	case SRES:
		c.state = StateIdle
		c.countdown = 0
		c.rxFifo = nil
		c.txFifo = nil
		c.rxOverflow = false
	case SCAL:
		c.state = StateCalibrate
		c.pending = StateIdle
		c.countdown = 2
	case SRX:
		c.state = StateSettling
		c.pending = StateRx
		c.countdown = 2
	case STX:
		if len(c.txFifo) == 0 {
			c.state = StateTxUnderflow
			c.countdown = 0
			return
		}
		c.state = StateTx
		c.pending = StateIdle
		c.countdown = 3
	case SIDLE:
		c.state = StateIdle
		c.countdown = 0
	case SFRX:
		c.rxFifo = nil
		c.rxOverflow = false
		c.state = StateIdle
		c.countdown = 0
	case SFTX:
		c.txFifo = nil
		c.state = StateIdle
		c.countdown = 0
	case SPWD:
		c.state = StateSleep
		c.countdown = 0
	case SNOP:
	}
}

func (c *chipSim) statusReg(addr uint8) byte {
	switch addr {
	case REG_PARTNUM:
		return 0x00
	case REG_VERSION:
		return 0x14
	case REG_RSSI:
		return c.rssi
	case REG_LQI:
		return c.lqi
	case REG_RXBYTES:
		n := len(c.rxFifo)
		if n > 127 {
			n = 127
		}
		v := byte(n)
		if c.rxOverflow {
			v |= 0x80
		}
		return v
	case REG_TXBYTES:
		return byte(len(c.txFifo))
	}
	return 0
}

func (c *chipSim) Transfer(w byte) (byte, error) {
	r := make([]byte, 1)
	err := c.Tx([]byte{w}, r)
	return r[0], err
}

func (c *chipSim) Tx(w, r []byte) error {
	if c.failNext != nil {
		err := c.failNext
		c.failNext = nil
		return err
	}
	if !c.selected {
		panic("cc1101 sim: transaction without chip select asserted")
	}
	// CSn going low wakes the chip from power down.
	if c.state == StateSleep {
		c.state = StateIdle
	}
	c.step()

	status := c.statusByte()
	if len(r) > 0 {
		r[0] = status
	}

	hdr := w[0]
	addr := hdr & addrMask
	burst := hdr&headerBurst != 0
	read := hdr&headerRead != 0

	switch {
	case addr >= 0x30 && addr <= 0x3d && !read && !burst:
		c.strobe(addr)
	case addr == REG_FIFO && read:
		c.logf("rfifo(%d)", len(r)-1)
		for i := 1; i < len(r); i++ {
			if len(c.rxFifo) == 0 {
				break
			}
			r[i] = c.rxFifo[0]
			c.rxFifo = c.rxFifo[1:]
		}
	case addr == REG_FIFO:
		c.logf("wfifo(%d)", len(w)-1)
		c.txFifo = append(c.txFifo, w[1:]...)
	case read && addr >= 0x30:
		c.logf("rstatus(0x%02x)", addr)
		if len(r) > 1 {
			r[1] = c.statusReg(addr)
		}
	case read:
		c.logf("read(0x%02x)", addr)
		for i := 1; i < len(r); i++ {
			if int(addr)+i-1 < len(c.regs) {
				r[i] = c.regs[int(addr)+i-1]
			}
		}
	default:
		c.logf("write(0x%02x,%d)", addr, len(w)-1)
		for i := 1; i < len(w); i++ {
			if int(addr)+i-1 < len(c.regs) {
				c.regs[int(addr)+i-1] = w[i]
			}
		}
	}
	return nil
}

func strobeName(cmd uint8) string {
	switch cmd {
	case SRES:
		return "SRES"
	case SFSTXON:
		return "SFSTXON"
	case SXOFF:
		return "SXOFF"
	case SCAL:
		return "SCAL"
	case SRX:
		return "SRX"
	case STX:
		return "STX"
	case SIDLE:
		return "SIDLE"
	case SWOR:
		return "SWOR"
	case SPWD:
		return "SPWD"
	case SFRX:
		return "SFRX"
	case SFTX:
		return "SFTX"
	case SWORRST:
		return "SWORRST"
	case SNOP:
		return "SNOP"
	}
	return fmt.Sprintf("strobe(%#02x)", cmd)
}

// contains reports whether the wanted entries appear in the log in order,
// not necessarily adjacent.
func containsSequence(log []string, want ...string) bool {
	i := 0
	for _, entry := range log {
		if i < len(want) && entry == want[i] {
			i++
		}
	}
	return i == len(want)
}
