package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/remotefs/internal/files"
)

func printEntries(w io.Writer, entries []files.Entry, asJSON bool) error {
	if asJSON {
		if entries == nil {
			entries = []files.Entry{}
		}
		data, err := sonic.ConfigStd.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		switch e.Kind {
		case files.KindFile:
			fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Kind, e.Size, e.Path)
		case files.KindSymlink:
			target := "?"
			if e.Target != nil {
				target = *e.Target
			}
			fmt.Fprintf(tw, "%s\t-\t%s -> %s\n", e.Kind, e.Path, target)
		default:
			fmt.Fprintf(tw, "%s\t-\t%s\n", e.Kind, e.Path)
		}
	}
	return tw.Flush()
}
