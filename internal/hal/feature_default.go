//go:build !managewifi

package hal

const manageWifiSupported = false
