package util

import (
	"os"
	"strings"
)

// GetDeviceName read the name of a device
func GetDeviceName(devicePath string) string {
	namePath := devicePath + "/name"
	content, _ := os.ReadFile(namePath)
	return strings.TrimSpace(string(content))
}

// GetDeviceModalias read the modalias of a device
func GetDeviceModalias(devicePath string) string {
	modaliasPath := devicePath + "/device/modalias"
	content, _ := os.ReadFile(modaliasPath)
	return strings.TrimSpace(string(content))
}

// GetDeviceType read the type of a device
func GetDeviceType(devicePath string) string {
	typePath := devicePath + "/device/type"
	content, _ := os.ReadFile(typePath)
	return strings.TrimSpace(string(content))
}
