package host

import (
	"fmt"

	"github.com/avct/uasurfer"
	"github.com/hack-pad/palmshim/internal/config"
	"github.com/hack-pad/palmshim/internal/palmsystem"
)

// DeviceInfo prefers explicitly configured values and fills the gaps from the user agent.
func DeviceInfo(cfg config.PropertiesConfig) palmsystem.Device {
	device := palmsystem.Device{
		ModelName:       cfg.ModelName,
		PlatformVersion: cfg.PlatformVersion,
	}
	if cfg.UserAgent != "" && (device.ModelName == "" || device.PlatformVersion == "") {
		userAgent := uasurfer.Parse(cfg.UserAgent)
		if device.ModelName == "" && userAgent.DeviceType != uasurfer.DeviceUnknown {
			device.ModelName = fmt.Sprintf("%s %s", userAgent.OS.Name.StringTrimPrefix(), userAgent.DeviceType.StringTrimPrefix())
		}
		version := userAgent.OS.Version
		if device.PlatformVersion == "" && (version.Major > 0 || version.Minor > 0 || version.Patch > 0) {
			device.PlatformVersion = fmt.Sprintf("%d.%d.%d", version.Major, version.Minor, version.Patch)
		}
	}
	if device.ModelName == "" {
		device.ModelName = "unknown"
	}
	if device.PlatformVersion == "" {
		device.PlatformVersion = "0.0.0"
	}
	return device
}
