package cc1101

import "math"

// Modulation selects the MDMCFG2.MOD_FORMAT field.
type Modulation uint8

const (
	Mod2FSK   Modulation = 0
	ModGFSK   Modulation = 1
	ModASKOOK Modulation = 3
	Mod4FSK   Modulation = 4
	ModMSK    Modulation = 7
)

// PacketMode selects the PKTCTRL0.LENGTH_CONFIG field.
type PacketMode uint8

const (
	// PacketFixed transmits and receives packets of exactly PacketLength bytes.
	PacketFixed PacketMode = 0
	// PacketVariable prepends a length byte to each packet. PacketLength is
	// the upper bound enforced by the chip on receive.
	PacketVariable PacketMode = 1
	// PacketInfinite streams bytes without packet framing. The minimal driver
	// moves at most one FIFO fill per call in this mode; refilling on the
	// FIFO threshold interrupt is not implemented.
	PacketInfinite PacketMode = 2
)

// AddressFilter selects the PKTCTRL1.ADR_CHK hardware address filter.
type AddressFilter uint8

const (
	FilterOff                    AddressFilter = 0
	FilterDevice                 AddressFilter = 1
	FilterDeviceLowBroadcast     AddressFilter = 2
	FilterDeviceHighLowBroadcast AddressFilter = 3
)

// CCAMode selects the MCSM1.CCA_MODE clear channel assessment policy used
// before entering TX from RX.
type CCAMode uint8

const (
	CCAAlways                   CCAMode = 0
	CCABelowThreshold           CCAMode = 1
	CCAUnlessReceiving          CCAMode = 2
	CCABelowThresholdUnlessRecv CCAMode = 3
)

// RadioConfig holds the physical radio parameters. It is consumed by
// Configure, which derives the full configuration register image from it.
// Identical configs always produce byte-identical register images.
type RadioConfig struct {
	// Frequency is the carrier frequency in Hz. Must fall in one of the
	// chip's bands: 300-348, 387-464 or 779-928 MHz.
	Frequency uint32
	// DataRate is the baud rate, 600 to 500000.
	DataRate uint32
	// Deviation is the FSK frequency deviation in Hz.
	Deviation uint32
	// Bandwidth is the RX channel filter bandwidth in Hz.
	Bandwidth uint32

	Modulation Modulation
	PacketMode PacketMode
	// PacketLength is the fixed packet length, or the upper bound in
	// variable mode (0 means 255). Ignored in infinite mode.
	PacketLength uint8

	// SyncWord is the 16-bit synchronization word. 0 disables sync word
	// detection and transmits the chip default word.
	SyncWord uint16
	// Preamble is the number of preamble bytes: 2, 3, 4, 6, 8, 12, 16 or 24.
	// 0 means 4.
	Preamble uint8
	// Channel is the channel number, offsetting the carrier by multiples of
	// the channel spacing.
	Channel uint8
	// Address is the device address used by the hardware address filter.
	Address       uint8
	AddressFilter AddressFilter
	CCAMode       CCAMode

	// CRC appends and checks a 16-bit CRC on every packet.
	CRC bool
	// Whitening XORs payload data with a PN9 sequence on air.
	Whitening bool
}

// RegisterImage is the value of every configuration register, indexed by
// register address. It is the only thing Configure writes to the chip.
type RegisterImage [REG_TEST0 + 1]byte

const (
	freqBand0Min = 300000000
	freqBand0Max = 348000000
	freqBand1Min = 387000000
	freqBand1Max = 464000000
	freqBand2Min = 779000000
	freqBand2Max = 928000000

	dataRateMin = 600
	dataRateMax = 500000
	// Largest relative error accepted from the data rate search.
	dataRateTolerance = 0.05
)

// frequencyToRegisters converts a carrier frequency in Hz to the FREQ2/1/0
// register triple: word = round(hz * 2^16 / fosc).
func frequencyToRegisters(hz, fosc uint32) (f2, f1, f0 byte, err error) {
	inBand := (hz >= freqBand0Min && hz <= freqBand0Max) ||
		(hz >= freqBand1Min && hz <= freqBand1Max) ||
		(hz >= freqBand2Min && hz <= freqBand2Max)
	if !inBand {
		return 0, 0, 0, ErrOutOfRange
	}
	w := ((uint64(hz) << 16) + uint64(fosc)/2) / uint64(fosc)
	return byte(w >> 16), byte(w >> 8), byte(w), nil
}

// registersToFrequency is the inverse of frequencyToRegisters, up to the
// frequency word quantization step of fosc/2^16 (about 397 Hz at 26 MHz).
func registersToFrequency(f2, f1, f0 byte, fosc uint32) uint32 {
	w := uint64(f2)<<16 | uint64(f1)<<8 | uint64(f0)
	return uint32(w * uint64(fosc) >> 16)
}

// dataRateToRegisters finds the exponent/mantissa pair minimizing the
// relative error against rate = (256+m) * 2^e * fosc / 2^28. The search is
// exhaustive; there are only 2^12 candidates.
func dataRateToRegisters(baud, fosc uint32) (e, m byte, err error) {
	if baud < dataRateMin || baud > dataRateMax {
		return 0, 0, ErrOutOfRange
	}
	target := float64(baud)
	bestErr := math.MaxFloat64
	for exp := 0; exp < 16; exp++ {
		for man := 0; man < 256; man++ {
			rate := float64(256+man) * math.Exp2(float64(exp)) * float64(fosc) / float64(1<<28)
			relErr := math.Abs(rate-target) / target
			if relErr < bestErr {
				bestErr = relErr
				e = byte(exp)
				m = byte(man)
			}
		}
	}
	if bestErr > dataRateTolerance {
		return 0, 0, ErrOutOfRange
	}
	return e, m, nil
}

// registersToDataRate is the inverse mapping, used to verify the search.
func registersToDataRate(e, m byte, fosc uint32) float64 {
	return float64(256+uint32(m)) * math.Exp2(float64(e)) * float64(fosc) / float64(1<<28)
}

// deviationToRegister converts an FSK deviation in Hz to the DEVIATN
// register: dev = fosc * (8+m) * 2^e / 2^17, with 3-bit mantissa and
// exponent. The nearest of the 64 encodable values is used.
func deviationToRegister(dev, fosc uint32) (byte, error) {
	min := uint64(fosc) * 8 >> 17
	max := uint64(fosc) * 15 << 7 >> 17
	if uint64(dev) < min || uint64(dev) > max {
		return 0, ErrOutOfRange
	}
	var mant, exp byte
	best := math.MaxFloat64
	for e := byte(0); e < 8; e++ {
		for m := byte(0); m < 8; m++ {
			val := float64(uint64(fosc) * uint64(8+m) << e >> 17)
			dist := math.Abs(val - float64(dev))
			if dist < best {
				best = dist
				mant = m
				exp = e
			}
		}
	}
	return exp<<4 | mant, nil
}

// bandwidthToRegisters converts a channel filter bandwidth in Hz to the
// MDMCFG4 CHANBW_E/CHANBW_M fields: bw = fosc / (8 * (4+m) * 2^e), with
// 2-bit mantissa and exponent. The nearest encodable value is used.
func bandwidthToRegisters(bw, fosc uint32) (e, m byte, err error) {
	min := fosc / (8 * 7 * 8)
	max := fosc / (8 * 4)
	if bw < min || bw > max {
		return 0, 0, ErrOutOfRange
	}
	best := math.MaxFloat64
	for exp := byte(0); exp < 4; exp++ {
		for man := byte(0); man < 4; man++ {
			val := float64(fosc) / float64(8*uint32(4+man)<<exp)
			dist := math.Abs(val - float64(bw))
			if dist < best {
				best = dist
				e = exp
				m = man
			}
		}
	}
	return e, m, nil
}

// preambleCode maps a preamble byte count to the MDMCFG1.NUM_PREAMBLE code.
func preambleCode(n uint8) (byte, error) {
	switch n {
	case 0, 4:
		return 2, nil
	case 2:
		return 0, nil
	case 3:
		return 1, nil
	case 6:
		return 3, nil
	case 8:
		return 4, nil
	case 12:
		return 5, nil
	case 16:
		return 6, nil
	case 24:
		return 7, nil
	}
	return 0, ErrOutOfRange
}

// computeImage derives the full configuration register image from a
// RadioConfig. Pure: no chip state is consulted and identical inputs yield
// byte-identical images. All validation happens here, before any hardware
// transaction.
func computeImage(cfg RadioConfig, fosc uint32) (RegisterImage, error) {
	var img RegisterImage

	f2, f1, f0, err := frequencyToRegisters(cfg.Frequency, fosc)
	if err != nil {
		return img, err
	}
	drE, drM, err := dataRateToRegisters(cfg.DataRate, fosc)
	if err != nil {
		return img, err
	}
	bwE, bwM, err := bandwidthToRegisters(cfg.Bandwidth, fosc)
	if err != nil {
		return img, err
	}
	deviatn, err := deviationToRegister(cfg.Deviation, fosc)
	if err != nil {
		return img, err
	}
	preamble, err := preambleCode(cfg.Preamble)
	if err != nil {
		return img, err
	}
	switch cfg.Modulation {
	case Mod2FSK, ModGFSK, ModASKOOK, Mod4FSK, ModMSK:
	default:
		return img, ErrOutOfRange
	}
	if cfg.AddressFilter > FilterDeviceHighLowBroadcast || cfg.CCAMode > CCABelowThresholdUnlessRecv {
		return img, ErrOutOfRange
	}

	pktLen := cfg.PacketLength
	var lengthConfig byte
	switch cfg.PacketMode {
	case PacketFixed:
		if pktLen == 0 {
			return img, ErrOutOfRange
		}
		lengthConfig = 0x00
	case PacketVariable:
		if pktLen == 0 {
			pktLen = 0xff
		}
		lengthConfig = 0x01
	case PacketInfinite:
		lengthConfig = 0x02
	default:
		return img, ErrOutOfRange
	}

	sync := cfg.SyncWord
	syncMode := byte(0x02) // 16/16 sync word bits detected
	if sync == 0 {
		sync = 0xd391 // chip reset value
		syncMode = 0x00
	}

	var pktctrl0 byte = lengthConfig
	if cfg.CRC {
		pktctrl0 |= 1 << 2
	}
	if cfg.Whitening {
		pktctrl0 |= 1 << 6
	}

	// GDO defaults: GDO2 signals CHIP_RDYn, GDO1 stays high impedance,
	// GDO0 asserts on sync word and clears at end of packet.
	img[REG_IOCFG2] = 0x29
	img[REG_IOCFG1] = 0x2e
	img[REG_IOCFG0] = 0x06
	img[REG_FIFOTHR] = 0x47
	img[REG_SYNC1] = byte(sync >> 8)
	img[REG_SYNC0] = byte(sync)
	img[REG_PKTLEN] = pktLen
	img[REG_PKTCTRL1] = 0x04 | byte(cfg.AddressFilter) // append RSSI/LQI status bytes
	img[REG_PKTCTRL0] = pktctrl0
	img[REG_ADDR] = cfg.Address
	img[REG_CHANNR] = cfg.Channel
	img[REG_FSCTRL1] = 0x06 // IF of fosc/2^10 * 6 = 152 kHz
	img[REG_FSCTRL0] = 0x00
	img[REG_FREQ2] = f2
	img[REG_FREQ1] = f1
	img[REG_FREQ0] = f0
	img[REG_MDMCFG4] = bwE<<6 | bwM<<4 | drE
	img[REG_MDMCFG3] = drM
	img[REG_MDMCFG2] = byte(cfg.Modulation)<<4 | syncMode
	img[REG_MDMCFG1] = preamble<<4 | 0x02
	img[REG_MDMCFG0] = 0xf8 // 200 kHz channel spacing with MDMCFG1 CHANSPC_E=2
	img[REG_DEVIATN] = deviatn
	img[REG_MCSM2] = 0x07
	img[REG_MCSM1] = byte(cfg.CCAMode)<<4 // RXOFF_MODE and TXOFF_MODE return to IDLE
	img[REG_MCSM0] = 0x18                 // calibrate when going from IDLE to RX/TX
	img[REG_FOCCFG] = 0x16
	img[REG_BSCFG] = 0x6c
	img[REG_AGCCTRL2] = 0x43
	img[REG_AGCCTRL1] = 0x40
	img[REG_AGCCTRL0] = 0x91
	img[REG_WOREVT1] = 0x87
	img[REG_WOREVT0] = 0x6b
	img[REG_WORCTRL] = 0xf8
	img[REG_FREND1] = 0x56
	img[REG_FREND0] = 0x10
	img[REG_FSCAL3] = 0xe9
	img[REG_FSCAL2] = 0x2a
	img[REG_FSCAL1] = 0x00
	img[REG_FSCAL0] = 0x1f
	img[REG_RCCTRL1] = 0x41
	img[REG_RCCTRL0] = 0x00
	img[REG_FSTEST] = 0x59
	img[REG_PTEST] = 0x7f
	img[REG_AGCTEST] = 0x3f
	img[REG_TEST2] = 0x81
	img[REG_TEST1] = 0x35
	img[REG_TEST0] = 0x09

	return img, nil
}
