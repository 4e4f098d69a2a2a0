// Package hiddev delivers raw input reports from the headset receiver's
// HID interfaces.
package hiddev

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	hid "github.com/sstallion/go-hid"
)

// ErrNoDevice is returned by Open when no interface matches the
// configured vendor/product id. The caller treats it as startup-fatal.
var ErrNoDevice = errors.New("no matching device found")

// Report is one raw input report and the interface path it came from.
type Report struct {
	Path string
	Data []byte
}

const (
	reportBufSize = 64
	readTimeout   = 250 * time.Millisecond
)

// Feed owns the open device handles and pumps their reports onto one
// shared channel, one reader goroutine per handle.
type Feed struct {
	reports chan Report
	paths   []string

	devices []*hid.Device
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// List enumerates every HID interface matching vid/pid.
func List(vid, pid uint16) ([]*hid.DeviceInfo, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("hid init: %w", err)
	}
	var infos []*hid.DeviceInfo
	err := hid.Enumerate(vid, pid, func(info *hid.DeviceInfo) error {
		clone := *info
		infos = append(infos, &clone)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hid enumerate: %w", err)
	}
	return infos, nil
}

// Open opens every matching interface and starts reading. It fails with
// ErrNoDevice when nothing could be opened.
func Open(vid, pid uint16) (*Feed, error) {
	infos, err := List(vid, pid)
	if err != nil {
		return nil, err
	}

	f := &Feed{
		reports: make(chan Report, 16),
		done:    make(chan struct{}),
	}
	for _, info := range infos {
		dev, err := hid.OpenPath(info.Path)
		if err != nil {
			log.Printf("open failed path=%s: %v", info.Path, err)
			continue
		}
		f.devices = append(f.devices, dev)
		f.paths = append(f.paths, info.Path)
		f.wg.Add(1)
		go f.readLoop(dev, info.Path)
	}
	if len(f.devices) == 0 {
		close(f.done)
		return nil, fmt.Errorf("%w (vendor=%#04x product=%#04x)", ErrNoDevice, vid, pid)
	}
	return f, nil
}

// Reports returns the shared report channel. It is never closed; stop
// consuming after Close.
func (f *Feed) Reports() <-chan Report { return f.reports }

// Paths lists the interface paths that were opened.
func (f *Feed) Paths() []string { return f.paths }

// Close stops the readers and releases all handles.
func (f *Feed) Close() error {
	f.once.Do(func() { close(f.done) })
	f.wg.Wait()
	var firstErr error
	for _, dev := range f.devices {
		if err := dev.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.devices = nil
	return firstErr
}

func (f *Feed) readLoop(dev *hid.Device, path string) {
	defer f.wg.Done()
	buf := make([]byte, reportBufSize)
	for {
		select {
		case <-f.done:
			return
		default:
		}

		// Bounded read so shutdown is observed even when the device
		// goes quiet.
		n, err := dev.ReadWithTimeout(buf, readTimeout)
		if err != nil {
			select {
			case <-f.done:
			default:
				log.Printf("read failed path=%s: %v", path, err)
			}
			return
		}
		if n == 0 {
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case f.reports <- Report{Path: path, Data: data}:
		case <-f.done:
			return
		}
	}
}
