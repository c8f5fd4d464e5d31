//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"strconv"
	"time"
)

var (
	uart = machine.UART0

	// HX711 state
	lastValue int32
)

func main() {
	// Configure UART for streaming readings
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Configure HX711 pins: serial clock out, data in
	PIN_HX711_SCK.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_HX711_DOUT.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_HX711_SCK.Low()

	// Main loop: one line per conversion, plain decimal, newline terminated
	for {
		if hxReady() {
			lastValue = hxRead()
			writeLine(lastValue)
		}
		time.Sleep(100 * time.Microsecond)
	}
}

// hxReady reports whether the HX711 has a conversion pending (DOUT low).
func hxReady() bool {
	return !PIN_HX711_DOUT.Get()
}

// hxRead clocks out one 24-bit two's-complement conversion, then one extra
// pulse to select channel A at gain 128 for the next conversion.
func hxRead() int32 {
	var value uint32

	for i := 0; i < 24; i++ {
		PIN_HX711_SCK.High()
		delayPulse()
		value <<= 1
		if PIN_HX711_DOUT.Get() {
			value |= 1
		}
		PIN_HX711_SCK.Low()
		delayPulse()
	}

	for i := 0; i < GAIN_PULSES; i++ {
		PIN_HX711_SCK.High()
		delayPulse()
		PIN_HX711_SCK.Low()
		delayPulse()
	}

	// Sign-extend 24 bits
	if value&0x800000 != 0 {
		value |= 0xFF000000
	}
	return int32(value)
}

// delayPulse holds the clock level long enough for the HX711 (>0.2us).
func delayPulse() {
	time.Sleep(time.Microsecond)
}

func writeLine(v int32) {
	uart.Write([]byte(strconv.FormatInt(int64(v), 10)))
	uart.Write([]byte("\r\n"))
}
