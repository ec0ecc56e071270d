package cc1101

import "errors"

// Errors returned by the driver. Transport errors are not in this list: they
// are returned unchanged from the SPI implementation, never retried or
// wrapped by the driver.
var (
	// ErrOutOfRange means a configuration parameter is outside the chip's
	// supported bounds. Raised before any hardware transaction.
	ErrOutOfRange = errors.New("cc1101: parameter out of supported range")
	// ErrTimeout means a bounded status poll was exhausted before the chip
	// reached the expected state.
	ErrTimeout = errors.New("cc1101: timed out waiting for chip state")
	// ErrChipFault means the chip reported an overflow/underflow state and
	// the requested operation is illegal until the FIFO is flushed.
	ErrChipFault = errors.New("cc1101: illegal operation for reported chip state")
	// ErrPayloadTooLarge means the payload does not fit a single FIFO fill
	// for the configured packet mode. Raised before any hardware transaction.
	ErrPayloadTooLarge = errors.New("cc1101: payload exceeds FIFO capacity")
	// ErrEmpty means the RX FIFO holds no bytes.
	ErrEmpty = errors.New("cc1101: RX FIFO empty")
	// ErrOverflow means the RX FIFO overflowed. The driver has already
	// flushed the FIFO; re-arm with StartReceive.
	ErrOverflow = errors.New("cc1101: RX FIFO overflow")
	// ErrCRC means a packet was received but failed the CRC check.
	ErrCRC = errors.New("cc1101: packet failed CRC check")
)
