// Copyright 2024 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

//go:build !linux

package bench

func platformInfo() []string {
	return nil
}
