package cc1101

// Configuration registers, writable while the chip is in IDLE state.
const (
	REG_IOCFG2   = 0x00
	REG_IOCFG1   = 0x01
	REG_IOCFG0   = 0x02
	REG_FIFOTHR  = 0x03
	REG_SYNC1    = 0x04
	REG_SYNC0    = 0x05
	REG_PKTLEN   = 0x06
	REG_PKTCTRL1 = 0x07
	REG_PKTCTRL0 = 0x08
	REG_ADDR     = 0x09
	REG_CHANNR   = 0x0a
	REG_FSCTRL1  = 0x0b
	REG_FSCTRL0  = 0x0c
	REG_FREQ2    = 0x0d
	REG_FREQ1    = 0x0e
	REG_FREQ0    = 0x0f
	REG_MDMCFG4  = 0x10
	REG_MDMCFG3  = 0x11
	REG_MDMCFG2  = 0x12
	REG_MDMCFG1  = 0x13
	REG_MDMCFG0  = 0x14
	REG_DEVIATN  = 0x15
	REG_MCSM2    = 0x16
	REG_MCSM1    = 0x17
	REG_MCSM0    = 0x18
	REG_FOCCFG   = 0x19
	REG_BSCFG    = 0x1a
	REG_AGCCTRL2 = 0x1b
	REG_AGCCTRL1 = 0x1c
	REG_AGCCTRL0 = 0x1d
	REG_WOREVT1  = 0x1e
	REG_WOREVT0  = 0x1f
	REG_WORCTRL  = 0x20
	REG_FREND1   = 0x21
	REG_FREND0   = 0x22
	REG_FSCAL3   = 0x23
	REG_FSCAL2   = 0x24
	REG_FSCAL1   = 0x25
	REG_FSCAL0   = 0x26
	REG_RCCTRL1  = 0x27
	REG_RCCTRL0  = 0x28
	REG_FSTEST   = 0x29
	REG_PTEST    = 0x2a
	REG_AGCTEST  = 0x2b
	REG_TEST2    = 0x2c
	REG_TEST1    = 0x2d
	REG_TEST0    = 0x2e
)

// Status registers, read-only. They share the 0x30..0x3d address range with
// the command strobes: the chip tells them apart by the burst bit, which must
// be set when reading a status register.
const (
	REG_PARTNUM        = 0x30
	REG_VERSION        = 0x31
	REG_FREQEST        = 0x32
	REG_LQI            = 0x33
	REG_RSSI           = 0x34
	REG_MARCSTATE      = 0x35
	REG_WORTIME1       = 0x36
	REG_WORTIME0       = 0x37
	REG_PKTSTATUS      = 0x38
	REG_VCO_VC_DAC     = 0x39
	REG_TXBYTES        = 0x3a
	REG_RXBYTES        = 0x3b
	REG_RCCTRL1_STATUS = 0x3c
	REG_RCCTRL0_STATUS = 0x3d
)

// Command strobes. A strobe transaction is the header byte alone.
const (
	SRES    = 0x30 // Reset chip
	SFSTXON = 0x31 // Enable and calibrate frequency synthesizer
	SXOFF   = 0x32 // Turn off crystal oscillator
	SCAL    = 0x33 // Calibrate frequency synthesizer and turn it off
	SRX     = 0x34 // Enable RX
	STX     = 0x35 // Enable TX
	SIDLE   = 0x36 // Exit RX/TX, turn off frequency synthesizer
	SWOR    = 0x38 // Start automatic wake-on-radio RX polling
	SPWD    = 0x39 // Enter power down mode when CSn goes high
	SFRX    = 0x3a // Flush the RX FIFO
	SFTX    = 0x3b // Flush the TX FIFO
	SWORRST = 0x3c // Reset real time clock to Event1
	SNOP    = 0x3d // No operation, returns chip status
)

// Multi-byte registers, single or burst access.
const (
	REG_PATABLE = 0x3e
	REG_FIFO    = 0x3f
)

// Header byte layout: bit 7 read/write, bit 6 burst, bits 5-0 address.
const (
	headerRead  = 0x80
	headerBurst = 0x40
	addrMask    = 0x3f
)

// readAddr encodes the header byte for a register read.
func readAddr(reg uint8, burst bool) uint8 {
	if burst {
		return reg | headerRead | headerBurst
	}
	return reg | headerRead
}

// writeAddr encodes the header byte for a register write.
func writeAddr(reg uint8, burst bool) uint8 {
	if burst {
		return reg | headerBurst
	}
	return reg
}

// statusAddr encodes the header byte for a status register read. The burst
// bit distinguishes the read from a command strobe at the same address.
func statusAddr(reg uint8) uint8 {
	return reg | headerRead | headerBurst
}
