package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/unkn0wn-root/wardrobe"
)

var (
	okLabel   = color.New(color.FgGreen, color.Bold).SprintFunc()
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	dim       = color.New(color.Faint).SprintFunc()
)

// summarize prints one line per entry and returns the number of failures.
func summarize(w io.Writer, results []wardrobe.Result) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "%s %-8s %v\n", failLabel("FAIL"), r.EntryID, r.Err)
			continue
		}
		size := ""
		if r.Texture != nil {
			size = dim(r.Texture.Width(), "x", r.Texture.Height())
		}
		fmt.Fprintf(w, "%s %-8s %s\n", okLabel(" OK "), r.EntryID, size)
	}
	return failed
}
