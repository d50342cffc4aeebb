package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/gousb"

	"github.com/hydradancer/hostctl/config"
	"github.com/hydradancer/hostctl/data"
)

// USBTransport drives the board through libusb via gousb.
type USBTransport struct {
	usbCtx *gousb.Context
	dev    *gousb.Device
	cfg    *gousb.Config
	intf   *gousb.Interface

	out map[Role]*gousb.OutEndpoint
	in  map[Role]*gousb.InEndpoint

	maxChunk  int
	closeOnce sync.Once
	closeErr  error
}

// Open claims the HydraDancer board described by cfg and binds the four
// protocol roles to its bulk endpoints. Any failure is a SetupError whose
// stage tells initialization problems apart.
func Open(cfg *config.Config) (*USBTransport, error) {
	usbCtx := gousb.NewContext()

	dev, err := usbCtx.OpenDeviceWithVIDPID(gousb.ID(cfg.Device.VendorID), gousb.ID(cfg.Device.ProductID))
	if err != nil {
		usbCtx.Close()
		return nil, &SetupError{Stage: StageOpen, Err: err}
	}
	if dev == nil {
		usbCtx.Close()
		return nil, &SetupError{
			Stage: StageOpen,
			Err:   fmt.Errorf("device %04x:%04x not found", cfg.Device.VendorID, cfg.Device.ProductID),
		}
	}

	// The kernel may have bound a driver to the board already.
	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		usbCtx.Close()
		return nil, &SetupError{Stage: StageClaim, Err: err}
	}

	usbCfg, err := dev.Config(cfg.Device.Config)
	if err != nil {
		dev.Close()
		usbCtx.Close()
		return nil, &SetupError{Stage: StageClaim, Err: err}
	}

	intf, err := usbCfg.Interface(cfg.Device.Interface, cfg.Device.AltSet)
	if err != nil {
		usbCfg.Close()
		dev.Close()
		usbCtx.Close()
		return nil, &SetupError{Stage: StageClaim, Err: err}
	}

	t := &USBTransport{
		usbCtx:   usbCtx,
		dev:      dev,
		cfg:      usbCfg,
		intf:     intf,
		out:      map[Role]*gousb.OutEndpoint{},
		in:       map[Role]*gousb.InEndpoint{},
		maxChunk: cfg.Device.MaxChunk,
	}

	outRoles := map[Role]uint8{
		CommandOut: cfg.Endpoints.CommandOut,
		DataOut:    cfg.Endpoints.DataOut,
	}
	for role, addr := range outRoles {
		ep, err := intf.OutEndpoint(int(addr & 0x0F))
		if err != nil {
			t.Close()
			return nil, &SetupError{Stage: StageEndpoint, Err: fmt.Errorf("%s (%#02x): %w", role, addr, err)}
		}
		t.out[role] = ep
	}

	inRoles := map[Role]uint8{
		DataIn: cfg.Endpoints.DataIn,
		LogIn:  cfg.Endpoints.LogIn,
	}
	for role, addr := range inRoles {
		ep, err := intf.InEndpoint(int(addr & 0x0F))
		if err != nil {
			t.Close()
			return nil, &SetupError{Stage: StageEndpoint, Err: fmt.Errorf("%s (%#02x): %w", role, addr, err)}
		}
		t.in[role] = ep
	}

	return t, nil
}

// Write issues one bulk OUT transfer on the endpoint bound to role.
func (t *USBTransport) Write(ctx context.Context, role Role, buffer []byte) (int, error) {
	ep, ok := t.out[role]
	if !ok {
		return 0, fmt.Errorf("role %s is not bound to an OUT endpoint", role)
	}
	return ep.WriteContext(ctx, buffer)
}

// Read issues one bulk IN transfer on the endpoint bound to role.
func (t *USBTransport) Read(ctx context.Context, role Role, buffer []byte) (int, error) {
	ep, ok := t.in[role]
	if !ok {
		return 0, fmt.Errorf("role %s is not bound to an IN endpoint", role)
	}
	return ep.ReadContext(ctx, buffer)
}

// MaxChunk reports the largest single transfer the deployment allows.
func (t *USBTransport) MaxChunk() int {
	return t.maxChunk
}

// Info describes the attached board for display purposes.
func (t *USBTransport) Info() data.DeviceInfo {
	desc := t.dev.Desc

	info := data.DeviceInfo{
		VendorID:  uint16(desc.Vendor),
		ProductID: uint16(desc.Product),
		Bus:       desc.Bus,
		Address:   desc.Address,
		Speed:     desc.Speed.String(),
	}

	// String descriptors are best effort: the board may not implement them.
	if s, err := t.dev.Manufacturer(); err == nil {
		info.Manufacturer = s
	}
	if s, err := t.dev.Product(); err == nil {
		info.Product = s
	}
	if s, err := t.dev.SerialNumber(); err == nil {
		info.Serial = s
	}

	return info
}

// Close releases the interface, the configuration, the device handle and
// the libusb context, in that order, exactly once.
func (t *USBTransport) Close() error {
	t.closeOnce.Do(func() {
		if t.intf != nil {
			t.intf.Close()
		}
		if t.cfg != nil {
			t.closeErr = t.cfg.Close()
		}
		if t.dev != nil {
			if err := t.dev.Close(); err != nil && t.closeErr == nil {
				t.closeErr = err
			}
		}
		if t.usbCtx != nil {
			if err := t.usbCtx.Close(); err != nil && t.closeErr == nil {
				t.closeErr = err
			}
		}
	})
	return t.closeErr
}
