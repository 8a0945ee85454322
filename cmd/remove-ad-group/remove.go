package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	adwords "github.com/adwords-api/adwords-golang"
)

type removeOptions struct {
	configPath string
	timeout    time.Duration
	debug      bool
}

func removeCmd() *cobra.Command {
	opts := &removeOptions{}
	cmd := &cobra.Command{
		Use:   "remove-ad-group <ad-group-id>",
		Short: "Remove an ad group by setting its status to REMOVED and renaming it",
		Long: "Looks up the ad group, appends a removal timestamp to its name so the\n" +
			"name can be reused later, and sets its status to REMOVED.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to adwords_api.yml (default $HOME/adwords_api.yml)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "request timeout")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "log HTTP requests and responses")
	return cmd
}

func runRemove(cmd *cobra.Command, opts *removeOptions, rawID string) error {
	adGroupID, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil || adGroupID <= 0 {
		return fmt.Errorf("invalid ad group ID %q", rawID)
	}

	configPath, err := resolveConfigPath(opts.configPath)
	if err != nil {
		return err
	}

	params := adwords.ConfigParams{
		ConfigFile: configPath,
		Timeout:    opts.timeout,
	}
	if cmd.Flags().Changed("debug") {
		params.Debug = &opts.debug
	}

	client, err := adwords.NewClientWithParams(params)
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := client.AdGroups.RemoveWithContext(context.Background(), adGroupID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Message())
	return nil
}

// resolveConfigPath returns the explicit path, or the default path when that
// file exists. An absent default file leaves configuration to the environment.
func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	path, err := adwords.DefaultConfigPath()
	if err != nil {
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return path, nil
}
