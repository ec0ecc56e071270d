// Package cc1101 implements a driver for the Texas Instruments CC1101
// Sub-1GHz RF transceiver.
//
// Datasheet:
// https://www.ti.com/lit/ds/symlink/cc1101.pdf
//
// The chip is driven over a full-duplex SPI link. Every transaction starts
// with a single header byte carrying the read/write bit, the burst bit and a
// 6-bit address; the chip answers the header with its status byte, so the
// driver's view of the chip state is refreshed by every transaction. Command
// strobes are header-only transactions that advance the chip's internal
// radio state machine (IDLE, RX, TX, calibration, sleep).
//
// The driver is synchronous and blocking. It is designed for a single owner:
// no internal locking is done, and two driver instances must never share one
// chip select. All waiting is bounded polling, never an unbounded block; the
// bounds are set with SetPollLimits.
package cc1101

import (
	"time"
)

// FXOSC is the crystal oscillator frequency the chip is usually fitted
// with. Boards with a different crystal can override it with
// SetOscillatorFrequency.
const FXOSC = 26000000

// FIFO_DEPTH is the size of each of the chip's TX and RX FIFOs.
const FIFO_DEPTH = 64

// SPI is the byte-exchange capability the driver consumes. machine.SPI
// satisfies it on TinyGo targets; any host SPI implementation can be adapted.
type SPI interface {
	Transfer(w byte) (byte, error)
	Tx(writeBuffer, readBuffer []byte) error
}

// PinOutput sets the logic level of an output pin. Used for chip select.
type PinOutput func(level bool)

// PinInput reads the logic level of an input pin. Used for the optional
// GDO0 status line.
type PinInput func() bool

// Device is a driver connected to one CC1101 over SPI.
type Device struct {
	bus  SPI
	cs   PinOutput
	gdo0 PinInput

	fosc uint32

	// Last chip status byte seen on the wire. Refreshed by every
	// transaction and invalidated by transport errors and sleep: the chip's
	// real state is never assumed to match the cache.
	status      Status
	statusValid bool

	pollRetries  int
	pollInterval time.Duration

	mode   PacketMode
	pktLen uint8

	lastRSSI int16
	lastLQI  uint8
}

// New creates a driver from an SPI bus and a chip select pin. The bus and
// pins must already be configured. Call Reset and Configure before use.
func New(bus SPI, cs PinOutput) *Device {
	return &Device{
		bus:          bus,
		cs:           cs,
		fosc:         FXOSC,
		pollRetries:  100,
		pollInterval: time.Millisecond,
		mode:         PacketVariable,
		pktLen:       0xff,
	}
}

// SetGDO0 attaches the chip's GDO0 line. When set, WaitForPacket watches the
// pin instead of polling the RX byte count over SPI.
func (d *Device) SetGDO0(pin PinInput) {
	d.gdo0 = pin
}

// SetOscillatorFrequency overrides the assumed crystal frequency in Hz.
func (d *Device) SetOscillatorFrequency(hz uint32) {
	d.fosc = hz
}

// SetPollLimits bounds every status polling loop: at most retries polls,
// interval apart. Exceeding the bound yields ErrTimeout.
func (d *Device) SetPollLimits(retries int, interval time.Duration) {
	d.pollRetries = retries
	d.pollInterval = interval
}

// txn runs one chip-select-qualified full-duplex exchange. The chip select
// is released on every exit path. The status byte riding back on the header
// refreshes the cache; a transport error invalidates it.
func (d *Device) txn(w, r []byte) error {
	d.cs(false)
	err := d.bus.Tx(w, r)
	d.cs(true)
	if err != nil {
		d.statusValid = false
		return err
	}
	if len(r) > 0 {
		d.status = Status(r[0])
		d.statusValid = true
	}
	return nil
}

// ReadRegister reads a single configuration register.
func (d *Device) ReadRegister(reg uint8) (byte, error) {
	w := []byte{readAddr(reg, false), 0}
	r := make([]byte, 2)
	if err := d.txn(w, r); err != nil {
		return 0, err
	}
	return r[1], nil
}

// ReadStatusRegister reads one of the read-only status registers
// (REG_PARTNUM..REG_RCCTRL0_STATUS).
func (d *Device) ReadStatusRegister(reg uint8) (byte, error) {
	w := []byte{statusAddr(reg), 0}
	r := make([]byte, 2)
	if err := d.txn(w, r); err != nil {
		return 0, err
	}
	return r[1], nil
}

// WriteRegister writes a single configuration register. Configuration
// registers must only be written in IDLE state; writing them during RX or TX
// produces undefined chip behavior.
func (d *Device) WriteRegister(reg uint8, value byte) error {
	w := []byte{writeAddr(reg, false), value}
	r := make([]byte, 2)
	return d.txn(w, r)
}

// readBurst reads len(buf) consecutive bytes starting at reg.
func (d *Device) readBurst(reg uint8, buf []byte) error {
	w := make([]byte, len(buf)+1)
	w[0] = readAddr(reg, true)
	r := make([]byte, len(buf)+1)
	if err := d.txn(w, r); err != nil {
		return err
	}
	copy(buf, r[1:])
	return nil
}

// writeBurst writes data to consecutive registers starting at reg.
func (d *Device) writeBurst(reg uint8, data []byte) error {
	w := make([]byte, len(data)+1)
	w[0] = writeAddr(reg, true)
	copy(w[1:], data)
	r := make([]byte, len(w))
	return d.txn(w, r)
}

// rawStrobe issues a command strobe without legality checks and returns the
// freshly decoded chip status.
func (d *Device) rawStrobe(cmd uint8) (Status, error) {
	w := []byte{cmd}
	r := make([]byte, 1)
	err := d.txn(w, r)
	return d.status, err
}

// Strobe issues a command strobe and returns the fresh chip status. The
// overflow and underflow states are terminal until flushed: any strobe other
// than the matching flush or SIDLE fails with ErrChipFault while the chip
// reports them. The check runs against fresh status, refreshed with SNOP
// first if the cache was invalidated.
func (d *Device) Strobe(cmd uint8) (Status, error) {
	if cmd != SNOP && cmd != SRES {
		if !d.statusValid {
			if _, err := d.rawStrobe(SNOP); err != nil {
				return 0, err
			}
		}
		switch d.status.State() {
		case StateRxOverflow:
			if cmd != SFRX && cmd != SIDLE {
				return d.status, ErrChipFault
			}
		case StateTxUnderflow:
			if cmd != SFTX && cmd != SIDLE {
				return d.status, ErrChipFault
			}
		}
	}
	return d.rawStrobe(cmd)
}

// ChipStatus reads fresh chip status with a SNOP strobe.
func (d *Device) ChipStatus() (Status, error) {
	return d.rawStrobe(SNOP)
}

// awaitState polls until the chip reports target, riding through the
// CALIBRATE and SETTLING transients. Landing in an overflow or underflow
// state fails with ErrChipFault; exhausting the poll bound with ErrTimeout.
func (d *Device) awaitState(target ChipState) error {
	for i := 0; i < d.pollRetries; i++ {
		s, err := d.rawStrobe(SNOP)
		if err != nil {
			return err
		}
		st := s.State()
		if st == target {
			return nil
		}
		if st == StateRxOverflow || st == StateTxUnderflow {
			return ErrChipFault
		}
		time.Sleep(d.pollInterval)
	}
	return ErrTimeout
}

// Reset issues the SRES strobe and waits for the crystal to stabilize and
// the chip to settle in IDLE.
func (d *Device) Reset() error {
	if _, err := d.rawStrobe(SRES); err != nil {
		return err
	}
	for i := 0; i < d.pollRetries; i++ {
		s, err := d.rawStrobe(SNOP)
		if err != nil {
			return err
		}
		if s.Ready() && s.State() == StateIdle {
			return nil
		}
		time.Sleep(d.pollInterval)
	}
	return ErrTimeout
}

// Configure derives the register image from cfg and writes it to the chip.
// Validation is pure and complete before the first transaction: an invalid
// config fails with ErrOutOfRange and leaves the chip untouched. The chip is
// forced to IDLE first, since writing configuration registers during RX or
// TX is undefined, and the frequency synthesizer is calibrated before
// returning so a following Send or StartReceive starts on a locked channel.
func (d *Device) Configure(cfg RadioConfig) error {
	img, err := computeImage(cfg, d.fosc)
	if err != nil {
		return err
	}
	if err := d.Idle(); err != nil {
		return err
	}
	if err := d.writeBurst(REG_IOCFG2, img[:]); err != nil {
		return err
	}
	if _, err := d.Strobe(SCAL); err != nil {
		return err
	}
	if err := d.awaitState(StateIdle); err != nil {
		return err
	}
	d.mode = cfg.PacketMode
	d.pktLen = img[REG_PKTLEN]
	return nil
}

// Idle exits RX/TX and waits until the chip reports IDLE. Always legal from
// RX, TX and FSTXON; used as the recovery path.
func (d *Device) Idle() error {
	if _, err := d.Strobe(SIDLE); err != nil {
		return err
	}
	return d.awaitState(StateIdle)
}

// Sleep puts the chip in power-down mode. The chip wakes on the next chip
// select assertion, so the cached status is invalidated rather than polled:
// sleep cannot be observed through the status byte.
func (d *Device) Sleep() error {
	if err := d.Idle(); err != nil {
		return err
	}
	if _, err := d.Strobe(SPWD); err != nil {
		return err
	}
	d.statusValid = false
	return nil
}

// FlushTx flushes the TX FIFO and returns the chip to IDLE. This is the
// documented recovery sequence after a TX FIFO underflow.
func (d *Device) FlushTx() error {
	if _, err := d.rawStrobe(SFTX); err != nil {
		return err
	}
	return d.Idle()
}

// FlushRx flushes the RX FIFO and returns the chip to IDLE. This is the
// documented recovery sequence after an RX FIFO overflow.
func (d *Device) FlushRx() error {
	if _, err := d.rawStrobe(SFRX); err != nil {
		return err
	}
	return d.Idle()
}

// Send transmits one packet. The payload size is validated against the
// configured packet mode before any transaction. The chip is forced to IDLE,
// the TX FIFO flushed and filled in one burst, TX strobed, and the call
// returns once the chip has left TX back to IDLE (MCSM1 TXOFF_MODE).
func (d *Device) Send(payload []byte) error {
	if err := d.checkTxSize(len(payload)); err != nil {
		return err
	}
	if err := d.Idle(); err != nil {
		return err
	}
	if _, err := d.Strobe(SFTX); err != nil {
		return err
	}
	if err := d.writeTxFifo(payload); err != nil {
		return err
	}
	if _, err := d.Strobe(STX); err != nil {
		return err
	}
	return d.awaitState(StateIdle)
}

// StartReceive arms the receiver: the RX FIFO is flushed and the chip moved
// to RX, waiting through the calibration and settling transients.
func (d *Device) StartReceive() error {
	if err := d.Idle(); err != nil {
		return err
	}
	if _, err := d.Strobe(SFRX); err != nil {
		return err
	}
	if _, err := d.Strobe(SRX); err != nil {
		return err
	}
	return d.awaitState(StateRx)
}

// WaitForPacket blocks until the RX FIFO holds data or the timeout expires.
// With a GDO0 pin attached the pin is sampled; otherwise the RX byte count
// is polled over SPI. Either way the wait is bounded.
func (d *Device) WaitForPacket(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if d.gdo0 != nil {
			if d.gdo0() {
				return nil
			}
		} else {
			n, err := d.rxBytes()
			if err != nil {
				return err
			}
			if n > 0 {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return ErrTimeout
		}
		time.Sleep(d.pollInterval)
	}
}

// Receive reads one pending packet into buf and returns the payload length.
// With no bytes pending it fails with ErrEmpty without touching the FIFO.
// An overflowed RX FIFO is flushed and reported as ErrOverflow; re-arm with
// StartReceive. In variable packet mode the chip's length byte frames the
// packet; in fixed mode the configured packet length does. The appended
// RSSI/LQI status bytes are consumed and exposed through LastRSSI and
// LastLQI, and a failed CRC check is reported as ErrCRC after the FIFO has
// been flushed.
func (d *Device) Receive(buf []byte) (int, error) {
	n, err := d.rxBytes()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrEmpty
	}
	// A packet may still be coming in; wait for the count to stabilize.
	for i := 0; i < d.pollRetries; i++ {
		m, err := d.rxBytes()
		if err != nil {
			return 0, err
		}
		if m == n {
			break
		}
		n = m
		time.Sleep(d.pollInterval)
	}

	if d.mode == PacketInfinite {
		// Unframed stream: drain what is pending, no status bytes, no CRC.
		plen := int(n)
		if plen > len(buf) {
			plen = len(buf)
		}
		if err := d.readRxFifo(buf[:plen]); err != nil {
			return 0, err
		}
		return plen, nil
	}

	plen := int(d.pktLen)
	if d.mode == PacketVariable {
		var lb [1]byte
		if err := d.readRxFifo(lb[:]); err != nil {
			return 0, err
		}
		plen = int(lb[0])
	}
	if plen > len(buf) {
		d.FlushRx()
		return 0, ErrPayloadTooLarge
	}
	if err := d.readRxFifo(buf[:plen]); err != nil {
		return 0, err
	}
	// PKTCTRL1 APPEND_STATUS: two trailing bytes carry RSSI and LQI/CRC.
	var status [2]byte
	if err := d.readRxFifo(status[:]); err != nil {
		return 0, err
	}
	d.lastRSSI = rssiToDBm(status[0])
	d.lastLQI = status[1] & 0x7f
	if err := d.FlushRx(); err != nil {
		return 0, err
	}
	if status[1]&0x80 == 0 {
		return plen, ErrCRC
	}
	return plen, nil
}

// LastRSSI returns the signal strength in dBm recorded with the last packet.
func (d *Device) LastRSSI() int16 {
	return d.lastRSSI
}

// LastLQI returns the link quality indicator recorded with the last packet.
// Lower is better.
func (d *Device) LastLQI() uint8 {
	return d.lastLQI
}

// ReadRSSI samples the current signal strength in dBm from the RSSI status
// register. Only meaningful in RX.
func (d *Device) ReadRSSI() (int16, error) {
	raw, err := d.ReadStatusRegister(REG_RSSI)
	if err != nil {
		return 0, err
	}
	return rssiToDBm(raw), nil
}

// PartNumber reads the chip part number status register (0x00 for CC1101).
func (d *Device) PartNumber() (byte, error) {
	return d.ReadStatusRegister(REG_PARTNUM)
}

// Version reads the chip version status register (0x14 for current CC1101
// silicon).
func (d *Device) Version() (byte, error) {
	return d.ReadStatusRegister(REG_VERSION)
}

// rssiToDBm converts the chip's offset binary RSSI reading to dBm.
func rssiToDBm(raw byte) int16 {
	if raw >= 128 {
		return (int16(raw)-256)/2 - 74
	}
	return int16(raw)/2 - 74
}
