package cmd

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/epaper/internal/config"
	"github.com/matheuskafuri/epaper/internal/loader"
	"github.com/matheuskafuri/epaper/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	client, err := archiveClient(cfg, flagURL, flagFile)
	if err != nil {
		return err
	}
	return tui.Run(tui.RunOpts{Client: client})
}

// archiveClient picks the document source: a local file, the --url flag,
// or the configured archive_url, in that order.
func archiveClient(c *config.Config, rawURL, file string) (loader.Client, error) {
	if file != "" {
		return loader.FileClient{Path: file}, nil
	}
	if rawURL == "" {
		rawURL = c.ArchiveURL
	}
	return loader.NewHTTPClient(rawURL, &http.Client{Timeout: 30 * time.Second})
}
