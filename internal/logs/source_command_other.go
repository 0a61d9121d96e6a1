// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package logs

import "os/exec"

func killProcessGroup(cmd *exec.Cmd) {}
