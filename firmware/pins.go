//go:build tinygo

package main

import "machine"

const (
	// HX711 configuration
	GAIN_PULSES = 1 // 1 extra clock pulse = channel A, gain 128

	// HX711 pins
	PIN_HX711_DOUT = machine.D2
	PIN_HX711_SCK  = machine.D3

	// Serial configuration
	// One reading per line: sign + up to 7 digits + CRLF = ~10 bytes.
	// At the HX711's fast rate of 80 conversions/sec that is 800 bytes/sec,
	// or 8,000 baud at 10 bits/byte under 8N1. 9600 baud just covers it;
	// the host merges readings onto its own sample grid anyway.
	UART_BAUD_RATE = 9600
)
