// Package ports enumerates the serial ports an instrument could be
// attached to, by walking /sys/class/tty the way the lab machines are
// set up (Linux, USB serial adapters). The pseudo-port name Simulation
// is reserved for running a front end with no hardware attached.
package ports

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Simulation is the reserved port name selecting the simulated backend
// instead of real hardware.
const Simulation = "Simulation"

// Port describes one USB serial port.
type Port struct {
	Dev, Path string // device name (ttyUSB0) and sysfs path
	IDp, IDv  string // USB product and vendor IDs
	Mfg, Prod string
	Serial    string
}

func (p Port) String() string {
	return fmt.Sprintf("dev %s path %s pid/vid %s/%s mfg/prod %s/%s serial %s",
		p.Dev, p.Path, p.IDp, p.IDv, p.Mfg, p.Prod, p.Serial)
}

// Description returns a short human-readable label for port listings.
func (p Port) Description() string {
	parts := []string{}
	if p.Mfg != "" {
		parts = append(parts, p.Mfg)
	}
	if p.Prod != "" {
		parts = append(parts, p.Prod)
	}
	if len(parts) == 0 {
		return p.Dev
	}
	return strings.Join(parts, " ")
}

// FilterFn narrows a port search down.
type FilterFn func(*Port) bool

// ArduinoFilter matches Arduino boards, such as the AR488 bridge or the
// lab's sensor rigs.
func ArduinoFilter(p *Port) bool {
	return strings.Contains(p.Mfg, "Arduino")
}

// SerialFilter matches the adapter with the given USB serial number.
func SerialFilter(s string) FilterFn {
	return func(p *Port) bool { return p.Serial == s }
}

// Find searches for a USB serial port. If filter is not nil, the first
// port it accepts is chosen. With no filter the search only succeeds
// when exactly one port exists.
func Find(filter FilterFn) (string, error) {
	ports, err := All()
	if err != nil {
		return "", err
	}
	if filter != nil {
		for i := range ports {
			if filter(&ports[i]) {
				ports = []Port{ports[i]}
				break
			}
		}
	}
	if len(ports) == 0 {
		return "", fmt.Errorf("no matching ports found")
	}
	if len(ports) == 1 {
		return ports[0].Dev, nil
	}
	return "", fmt.Errorf("multiple ports: %v", ports)
}

// List returns device names mapped to descriptions, with the Simulation
// entry always present, the way the front ends populate their port
// selectors.
func List() map[string]string {
	out := map[string]string{Simulation: "Simulated instrument"}
	ports, err := All()
	if err != nil {
		log.Printf("enumerating serial ports: %s", err)
		return out
	}
	for _, p := range ports {
		out["/dev/"+p.Dev] = p.Description()
	}
	return out
}

// Print writes a sorted listing of the available ports to the log.
func Print() {
	list := List()
	names := make([]string, 0, len(list))
	for name := range list {
		names = append(names, name)
	}
	sort.Strings(names)
	log.Print("Available ports:")
	for _, name := range names {
		log.Printf("  %s : %s", name, list[name])
	}
}

// All finds ttys on USB devices by looking at /sys/class/tty and the
// sysfs paths behind it.
func All() ([]Port, error) {
	var devs []Port
	sct := "/sys/class/tty/"
	entries, err := os.ReadDir(sct)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Type()&fs.ModeSymlink == 0 {
			continue
		}
		// A symlink like /sys/class/tty/ttyACM0 ->
		// /sys/devices/.../usb1/1-10/1-10:1.0/tty/ttyACM0
		path := filepath.Join(sct, e.Name())
		abs, err := filepath.EvalSymlinks(path)
		if err != nil {
			log.Printf("evaluating symlink %s; skipping: %s", path, err)
			continue
		}
		if !strings.Contains(abs, "usb") {
			continue
		}
		dev, err := filepath.EvalSymlinks(filepath.Join(abs, "device"))
		if err != nil {
			log.Printf("usb tty without device subdir: %s %s", abs, err)
			continue
		}
		// The USB descriptor files live one level up from the
		// interface directory.
		p := Port{Dev: e.Name(), Path: abs}
		if err := readUsbInfo(filepath.Dir(dev), &p); err != nil {
			log.Printf("%s: %s", abs, err)
		}
		devs = append(devs, p)
	}
	return devs, nil
}

// readUsbInfo reads product and vendor IDs and the mfg/product/serial
// strings. The last error encountered is returned, ignoring
// os.ErrNotExist; errors do not prevent reading the remaining files.
func readUsbInfo(dev string, p *Port) error {
	read := func(name string, dst *string, errp *error) {
		b, err := os.ReadFile(filepath.Join(dev, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			*errp = err
		}
		*dst = strings.TrimSpace(string(b))
	}
	var err error
	read("idProduct", &p.IDp, &err)
	read("idVendor", &p.IDv, &err)
	read("manufacturer", &p.Mfg, &err)
	read("product", &p.Prod, &err)
	read("serial", &p.Serial, &err)
	return err
}
