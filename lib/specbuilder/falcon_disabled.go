//go:build !falcon

package specbuilder

import "github.com/onkernel/vmspec/lib/serverconfig"

// addAcceleratorDeviceFromConfig recognizes no drivers unless built with
// the falcon tag.
func (b *ServerSpecBuilder) addAcceleratorDeviceFromConfig(string, serverconfig.Device) (bool, error) {
	return false, nil
}
