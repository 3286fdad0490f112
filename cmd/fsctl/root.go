package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/remotefs/internal/client"
)

// serverEnv overrides the default server URL.
const serverEnv = "REMOTEFS_URL"

type globalOptions struct {
	server  string
	asJSON  bool
	timeout time.Duration
	rps     float64
}

func (o *globalOptions) client() *client.Client {
	opts := []client.Option{client.WithRateLimit(o.rps)}
	if o.timeout > 0 {
		opts = append(opts, client.WithTimeout(o.timeout))
	}
	return client.New(o.server, opts...)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "fsctl",
		Short:         "Command-line client for a remotefs file server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultServer := client.DefaultBaseURL
	if env := os.Getenv(serverEnv); env != "" {
		defaultServer = env
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.server, "server", "s", defaultServer, "server base URL (env "+serverEnv+")")
	flags.BoolVar(&opts.asJSON, "json", false, "print listings as JSON")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (0 = none)")
	flags.Float64Var(&opts.rps, "rps", 0, "max requests per second (0 = unlimited)")

	root.AddCommand(
		newLsCmd(opts),
		newFindCmd(opts),
		newGetCmd(opts),
		newPutCmd(opts),
		newStatCmd(opts),
		newMkdirCmd(opts),
		newRmCmd(opts),
		newRmdirCmd(opts),
		newMvCmd(opts),
	)
	return root
}
