//go:build managewifi

package hal

const manageWifiSupported = true
