package main

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/remotefs/internal/client"
)

func newLsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [dir]",
		Short: "List a remote directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := opts.client().List(cmd.Context(), argOr(args, 0, ""))
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), entries, opts.asJSON)
		},
	}
}

func newFindCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "find <pattern> [dir]",
		Short: "Search below a remote directory with a glob such as **/*.jpg",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := opts.client().Find(cmd.Context(), argOr(args, 1, ""), args[0])
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), entries, opts.asJSON)
		},
	}
}

func newGetCmd(opts *globalOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get <remote-file>",
		Short: "Download a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote := args[0]
			if output == "" {
				output = path.Base(remote)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "-" {
				f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			n, err := opts.client().Download(cmd.Context(), remote, w)
			if err != nil {
				if output != "-" {
					_ = os.Remove(output)
				}
				return err
			}
			if output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d bytes\n", output, n)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "local file to write, - for stdout (default: remote base name)")
	return cmd
}

func newPutCmd(opts *globalOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "put <local-file>...",
		Short: "Upload files in one request; taken names get a numeric suffix",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uploads := make([]client.UploadFile, 0, len(args))
			for _, p := range args {
				u, f, err := client.OpenUploadFile(p)
				if err != nil {
					return err
				}
				defer f.Close()
				uploads = append(uploads, u)
			}
			return opts.client().Upload(cmd.Context(), dir, uploads...)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "remote target directory")
	return cmd
}

func newStatCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <remote-file>",
		Short: "Show size and type of a remote file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := opts.client().Stat(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "size:     %d\n", info.Size)
			fmt.Fprintf(out, "type:     %s\n", info.ContentType)
			fmt.Fprintf(out, "modified: %s\n", info.ModTime)
			return nil
		},
	}
}

func newMkdirCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <dir>",
		Short: "Create a directory; its parent must exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.client().Mkdir(cmd.Context(), args[0])
		},
	}
}

func newRmCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file>",
		Short: "Remove a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.client().Remove(cmd.Context(), args[0])
		},
	}
}

func newRmdirCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rmdir <dir>",
		Short: "Remove a directory and its contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.client().RemoveDir(cmd.Context(), args[0])
		},
	}
}

func newMvCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <from> <to>",
		Short: "Rename a file or directory; the destination must not exist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.client().Move(cmd.Context(), args[0], args[1])
		},
	}
}

func argOr(args []string, i int, fallback string) string {
	if i < len(args) {
		return args[i]
	}
	return fallback
}
