package scale

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate matches the rate the scale firmware configures its UART to.
	DefaultBaudRate = 9600
	// DefaultBufferSize is the default size for the readings channel buffer.
	DefaultBufferSize = 100
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to a scale over a USB or Bluetooth serial link.
// The wire format is one ASCII decimal integer per line, newline terminated.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	readings  chan Reading
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	readDone  chan struct{}
}

// New creates a new Serial scale with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:      port,
		baudRate:  baudRate,
		bufSize:   bufSize,
		readings:  make(chan Reading, bufSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading.
func (s *Serial) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: s.baudRate,
	}

	port, err := serial.Open(s.port, mode)
	if err != nil {
		return fmt.Errorf("%w: failed to open serial port %s: %v", ErrNotConnected, s.port, err)
	}

	s.conn = port
	s.connected = true
	s.readDone = make(chan struct{})

	go s.readLoop(port, s.readDone)

	return nil
}

// Close closes the connection and stops reading. Closing an already closed
// scale is a no-op.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}

	s.cancel()

	// Closing the port unblocks the scanner so the reader can drain.
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		s.conn = nil
	}

	s.connected = false

	// Wait for the reader to stop before closing the channel so it can
	// never send on a closed channel.
	<-s.readDone
	close(s.readings)

	return nil
}

// Readings returns the channel raw readings arrive on. The channel is closed
// when the scale is closed or the stream ends.
func (s *Serial) Readings() <-chan Reading {
	return s.readings
}

// IsConnected returns whether the scale is currently connected.
func (s *Serial) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// readLoop reads lines from the serial port and parses them into Readings.
// Each reading is timestamped at receipt.
func (s *Serial) readLoop(conn serial.Port, done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readLoop: %v", r)
		}
	}()

	scanner := bufio.NewScanner(conn)
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil && err != io.EOF {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			raw, err := parseLine(line)
			if err != nil {
				// Garbled line, likely a wrong baud rate or a partial
				// first line. Skip it and keep reading.
				continue
			}

			reading := Reading{Timestamp: time.Now(), Raw: raw}

			select {
			case s.readings <- reading:
			case <-s.ctx.Done():
				return
			default:
				log.Printf("Readings channel full, dropping reading")
			}
		}
	}
}

// parseLine parses one line of the wire format: a single ASCII decimal
// integer, possibly negative.
func parseLine(line string) (float64, error) {
	v, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid reading %q: %w", line, err)
	}
	return float64(v), nil
}
