package bmp180

import "fmt"

// Transport is what the host provides to reach the sensor.
//
// Read and Write move len(buf) bytes starting at register reg of the device
// at the 7 bit address addr. DelayMs blocks for ms milliseconds. Debugf is a
// best-effort diagnostic sink; its output is never inspected.
type Transport interface {
	Init() error
	Deinit() error
	Read(addr, reg byte, buf []byte) error
	Write(addr, reg byte, buf []byte) error
	DelayMs(ms uint32)
	Debugf(format string, args ...any)
}

// TransportFuncs builds a Transport out of plain functions. Every field but
// DebugFunc is required.
type TransportFuncs struct {
	InitFunc   func() error
	DeinitFunc func() error
	ReadFunc   func(addr, reg byte, buf []byte) error
	WriteFunc  func(addr, reg byte, buf []byte) error
	DelayFunc  func(ms uint32)
	DebugFunc  func(format string, args ...any)
}

// Check returns ErrLinkage naming the first required function left nil.
func (f *TransportFuncs) Check() error {
	switch {
	case f == nil:
		return fmt.Errorf("%w: transport is nil", ErrLinkage)
	case f.InitFunc == nil:
		return fmt.Errorf("%w: bus init is nil", ErrLinkage)
	case f.DeinitFunc == nil:
		return fmt.Errorf("%w: bus deinit is nil", ErrLinkage)
	case f.ReadFunc == nil:
		return fmt.Errorf("%w: bus read is nil", ErrLinkage)
	case f.WriteFunc == nil:
		return fmt.Errorf("%w: bus write is nil", ErrLinkage)
	case f.DelayFunc == nil:
		return fmt.Errorf("%w: delay is nil", ErrLinkage)
	}
	return nil
}

func (f *TransportFuncs) Init() error   { return f.InitFunc() }
func (f *TransportFuncs) Deinit() error { return f.DeinitFunc() }

func (f *TransportFuncs) Read(addr, reg byte, buf []byte) error {
	return f.ReadFunc(addr, reg, buf)
}

func (f *TransportFuncs) Write(addr, reg byte, buf []byte) error {
	return f.WriteFunc(addr, reg, buf)
}

func (f *TransportFuncs) DelayMs(ms uint32) { f.DelayFunc(ms) }

func (f *TransportFuncs) Debugf(format string, args ...any) {
	if f.DebugFunc != nil {
		f.DebugFunc(format, args...)
	}
}

// checker is implemented by transports that can be partially linked.
type checker interface {
	Check() error
}
