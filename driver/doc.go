// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package driver defines the backend capability interfaces consumed by the
// fx graph runtime, together with a priority-ordered backend registry.
//
// The runtime never creates its own GPU device. A backend (backend/wgpu,
// or a test device from driver/drivertest) implements Device and hands it
// to render.NewContext. This keeps GPU ownership with the host application
// and makes the whole graph runtime testable against an in-memory device.
//
// Backends register themselves with the global registry:
//
//	func init() {
//	    driver.Register("wgpu", 100, wgpuFactory, wgpuAvailable)
//	}
//
// and callers pick the best available one:
//
//	dev, err := driver.NewDevice(driver.Options{})
package driver
