package ctl

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nodedash/pkg/client"
)

const (
	envURL     = "NODEDASH_URL"
	defaultURL = "http://127.0.0.1:8080"
)

type rootOptions struct {
	url     string
	retries int
	timeout time.Duration
}

// NewRootCommand builds the nodedashctl command tree writing to out.
func NewRootCommand(out io.Writer, version string) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "nodedashctl",
		Short:         "Query a running node dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	defaultBase := os.Getenv(envURL)
	if defaultBase == "" {
		defaultBase = defaultURL
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.url, "url", defaultBase, "dashboard base URL (env "+envURL+")")
	flags.IntVar(&opts.retries, "retries", 3, "retries on connection errors")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "timeout per HTTP attempt")

	root.AddCommand(
		newStatusCommand(opts),
		newHealthCommand(opts),
		newVersionCommand(version),
	)

	return root
}

func (o *rootOptions) client() (*client.Client, error) {
	return client.New(client.Options{
		BaseURL:  o.url,
		RetryMax: o.retries,
		Timeout:  o.timeout,
	})
}
