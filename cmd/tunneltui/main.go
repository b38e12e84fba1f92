package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tunneltui/pkg/tunnel"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tunneltui: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		flagConfig  string
		flagVerbose string
		overrides   tunnel.Overrides
	)

	root := &cobra.Command{
		Use:   "tunneltui <ssh-host> <target>",
		Short: "Establish an SSH forward tunnel and track its logs",
		Long: `Establish an SSH forward tunnel. Highlight the tunnel info.
Track the tunnel logs. Navigate them up and down.

The named target is taken from the config and any of its fields can be
replaced with the matching flag.

Config pattern (TOML):

  [[ssh_hosts]]
  name = "host.name"  # A valid ssh HostName
  description = "Helpful description to list in completion."

  [[targets]]
  name = "service-foo"
  local_address = "127.0.0.1"
  local_port = 8080
  remote_address = "127.0.0.1"
  remote_port = 8080
  description = "Helpful description to list in completion."`,
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return completePositional(flagConfig, len(args), toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := tunnel.LoadConfig(flagConfig)
			if err != nil {
				return err
			}
			sshHost, targetName := args[0], args[1]
			spec, err := cfg.Resolve(sshHost, targetName, flagVerbose, overrides)
			if err != nil {
				return err
			}
			sess := &tunnel.Session{Spec: spec, TargetName: targetName}
			return sess.Run()
		},
	}

	root.Flags().StringVar(&flagConfig, "config", "", "Path to TOML config (defaults to XDG paths if empty)")
	root.Flags().StringVar(&flagVerbose, "verbose", "v", "Ssh cli verbose mode. See `ssh --help`")
	root.Flags().StringVar(&overrides.LocalAddress, "local-address", "", "Local addr to listen to")
	root.Flags().IntVar(&overrides.LocalPort, "local-port", 0, "Local port to listen to")
	root.Flags().StringVar(&overrides.RemoteAddress, "remote-address", "", "Addr on a remote server to forward to")
	root.Flags().IntVar(&overrides.RemotePort, "remote-port", 0, "Port on a remote server to forward to")
	root.Flags().StringVar(&overrides.LocalSock, "local-sock", "", "Local unix socket to listen to")
	root.Flags().StringVar(&overrides.RemoteSock, "remote-sock", "", "Unix socket on a remote server to forward to")

	return root
}

// completePositional completes the ssh-host (first) and target (second)
// positionals from the config, with descriptions, mirroring what the config
// file calls them.
func completePositional(configPath string, argIndex int, toComplete string) ([]string, cobra.ShellCompDirective) {
	if argIndex > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, _, err := tunnel.LoadConfig(configPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var out []string
	add := func(name, description string) {
		if !strings.HasPrefix(name, toComplete) {
			return
		}
		if description == "" {
			description = "..."
		}
		out = append(out, name+"\t"+description)
	}

	if argIndex == 0 {
		for _, h := range cfg.SSHHosts {
			add(h.Name, h.Description)
		}
	} else {
		for _, t := range cfg.Targets {
			add(t.Name, t.Description)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
