package xrtcore

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Driver is a device backend. Backends register themselves with Register,
// typically from an init function, and are looked up by name in Open.
type Driver interface {
	// DeviceCount returns the number of devices the backend can see.
	DeviceCount() (int, error)

	// OpenDevice opens the device at index.
	OpenDevice(index uint) (Device, error)
}

var (
	muDrivers sync.Mutex
	drivers   = make(map[string]Driver)
)

// Register makes a driver backend available under the given name. It
// panics when the name is already taken or the driver is nil, so a bad
// backend wiring fails at startup rather than at first use.
func Register(name string, driver Driver) {
	muDrivers.Lock()
	defer muDrivers.Unlock()
	if driver == nil {
		panic("xrtcore: Register called with nil driver")
	}
	if _, dup := drivers[name]; dup {
		panic("xrtcore: Register called twice for driver " + name)
	}
	drivers[name] = driver
	klog.V(1).Infof("registered device driver %q", name)
}

// Drivers returns the names of the registered backends, sorted.
func Drivers() []string {
	muDrivers.Lock()
	defer muDrivers.Unlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open opens device index of the named backend.
func Open(driver string, index uint) (Device, error) {
	muDrivers.Lock()
	d, ok := drivers[driver]
	muDrivers.Unlock()
	if !ok {
		return nil, errors.Errorf("unknown device driver %q (registered drivers: %v)", driver, Drivers())
	}
	device, err := d.OpenDevice(index)
	if err != nil {
		return nil, errors.WithMessagef(err, "opening device %d of driver %q", index, driver)
	}
	return device, nil
}
