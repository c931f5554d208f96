// Copyright 2024 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

//go:build linux

package bench

import (
	"fmt"

	"github.com/golang/glog"
	"golang.org/x/sys/unix"
)

// platformInfo describes the kernel and the resolution of the clock the
// timings are taken from.
func platformInfo() []string {
	var lines []string
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		glog.V(1).Infof("uname: %s", err)
	} else {
		lines = append(lines, fmt.Sprintf("Kernel: %s %s %s",
			unix.ByteSliceToString(u.Sysname[:]),
			unix.ByteSliceToString(u.Release[:]),
			unix.ByteSliceToString(u.Machine[:])))
	}
	var res unix.Timespec
	if err := unix.ClockGetres(unix.CLOCK_MONOTONIC, &res); err != nil {
		glog.V(1).Infof("clock_getres: %s", err)
	} else {
		lines = append(lines, fmt.Sprintf("Monotonic clock resolution: %d ns", res.Nano()))
	}
	lines = append(lines, fmt.Sprintf("Page size: %d bytes", unix.Getpagesize()))
	return lines
}
