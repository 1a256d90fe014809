package pricing

import "fmt"

// DeviceSet is a read-only view of the device catalog keyed by device id.
type DeviceSet map[string]Device

// NewDeviceSet indexes devices by ID.
func NewDeviceSet(devices []Device) DeviceSet {
	set := make(DeviceSet, len(devices))
	for _, d := range devices {
		set[d.ID] = d
	}
	return set
}

// ResolveDevices returns a copy of order with every line item's Device filled from
// devices by DeviceID. Items without a DeviceID must carry an inline device.
func ResolveDevices(order Order, devices DeviceSet) (Order, error) {
	items := make([]LineItem, len(order.LineItems))
	for i, li := range order.LineItems {
		field := fmt.Sprintf("line_items[%d].device_id", i)
		switch {
		case li.DeviceID != "":
			d, ok := devices[li.DeviceID]
			if !ok {
				return Order{}, newErrorf(KindUnknownDevice, field, "device %q not in catalog", li.DeviceID)
			}
			li.Device = d
		case li.Device.Name == "":
			return Order{}, newErrorf(KindUnknownDevice, field, "line item has no device")
		}
		items[i] = li
	}
	order.LineItems = items
	return order, nil
}
