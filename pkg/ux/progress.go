// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"fmt"
	"strings"
)

const progressWidth = 30

// ProgressBar renders a fixed-width progress bar string.
func ProgressBar(current, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	if current > total {
		current = total
	}
	filled := current * width / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %d/%d", Styles.Highlight.Render(bar), current, total)
}

// Progress redraws an in-place progress line for a labeled task and emits a
// newline once the task completes.
func Progress(label string, current, total int) {
	fmt.Printf("\r%s %s", ProgressBar(current, total, progressWidth), Styles.Muted.Render(label))
	if current >= total {
		fmt.Println()
	}
}
