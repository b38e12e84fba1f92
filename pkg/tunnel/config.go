package tunnel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the full TOML configuration for tunneltui.
//
// Example TOML:
//
//	[[ssh_hosts]]
//	name = "miniserver.local"
//	description = "Local network connection. A ssh config has to be available."
//
//	[[targets]]
//	name = "analytics-web"
//	local_address = "127.0.0.1"
//	local_port = 8080
//	remote_address = "127.0.0.1"
//	remote_port = 8080
//	description = "Analytics http server."
//
//	[[targets]]
//	name = "docker-sock"
//	local_sock = "/tmp/docker.sock"
//	remote_sock = "/var/run/docker.sock"
type Config struct {
	SSHHosts []SSHHost `toml:"ssh_hosts"`
	Targets  []Target  `toml:"targets"`
}

// SSHHost names a HostName from an ssh_config file. The description is
// shown in shell completion.
type SSHHost struct {
	Name        string `toml:"name"`
	Description string `toml:"description,omitempty"`
}

// Target is a named forwarding destination. Per side, exactly one of the
// address/port pair or the socket path is populated.
type Target struct {
	Name          string `toml:"name"`
	LocalAddress  string `toml:"local_address,omitempty"`
	LocalPort     int    `toml:"local_port,omitempty"`
	RemoteAddress string `toml:"remote_address,omitempty"`
	RemotePort    int    `toml:"remote_port,omitempty"`
	LocalSock     string `toml:"local_sock,omitempty"`
	RemoteSock    string `toml:"remote_sock,omitempty"`
	Description   string `toml:"description,omitempty"`
}

// Local returns the target's local endpoint.
func (t Target) Local() Endpoint {
	return Endpoint{Host: t.LocalAddress, Port: t.LocalPort, SocketPath: t.LocalSock}
}

// Remote returns the target's remote endpoint.
func (t Target) Remote() Endpoint {
	return Endpoint{Host: t.RemoteAddress, Port: t.RemotePort, SocketPath: t.RemoteSock}
}

// LoadConfig discovers and loads the TOML configuration.
// If explicitPath is empty, it searches common locations in order:
// 1. $TUNNELTUI_CONFIG
// 2. $XDG_CONFIG_HOME/tunneltui/tunnels.toml
// 3. ~/.config/tunneltui/tunnels.toml
//
// Returns the parsed Config and the path that was used.
func LoadConfig(explicitPath string) (*Config, string, error) {
	candidates := ConfigPathCandidates(explicitPath)
	var lastErr error
	for _, p := range candidates {
		p = expandPath(p)
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			lastErr = err
			continue
		}
		cfg, err := ParseConfig(data)
		if err != nil {
			return nil, p, fmt.Errorf("config %s: %w", p, err)
		}
		return cfg, p, nil
	}
	if lastErr == nil {
		lastErr = ErrConfigNotFound
	}
	return nil, "", lastErr
}

// ParseConfig unmarshals and validates a TOML config document.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigPathCandidates returns possible configuration file paths, in
// priority order. If explicitPath is provided, it is returned first.
func ConfigPathCandidates(explicitPath string) []string {
	var out []string
	if explicitPath != "" {
		out = append(out, explicitPath)
	}
	if env := os.Getenv("TUNNELTUI_CONFIG"); env != "" {
		out = append(out, env)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		out = append(out, filepath.Join(xdg, "tunneltui", "tunnels.toml"))
	}
	home, _ := os.UserHomeDir()
	if home != "" {
		out = append(out, filepath.Join(home, ".config", "tunneltui", "tunnels.toml"))
	}
	return out
}

// Validate performs sanity checks on the configuration.
//
// - ssh host and target names must be unique and non-empty.
// - Each target side carries exactly one endpoint shape.
// - A target may not mix a TCP side with a socket side.
func (c *Config) Validate() error {
	seenHosts := map[string]struct{}{}
	for i, h := range c.SSHHosts {
		if strings.TrimSpace(h.Name) == "" {
			return fmt.Errorf("ssh_hosts[%d]: name is required", i)
		}
		if _, dup := seenHosts[h.Name]; dup {
			return fmt.Errorf("ssh_hosts[%d]: duplicate host name %q", i, h.Name)
		}
		seenHosts[h.Name] = struct{}{}
	}

	seenTargets := map[string]struct{}{}
	for i, t := range c.Targets {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("targets[%d]: name is required", i)
		}
		if _, dup := seenTargets[t.Name]; dup {
			return fmt.Errorf("targets[%d]: duplicate target name %q", i, t.Name)
		}
		seenTargets[t.Name] = struct{}{}

		if err := t.Local().Validate(); err != nil {
			return fmt.Errorf("targets[%d](%s): local %v", i, t.Name, err)
		}
		if err := t.Remote().Validate(); err != nil {
			return fmt.Errorf("targets[%d](%s): remote %v", i, t.Name, err)
		}
		if t.Local().IsSocket() != t.Remote().IsSocket() {
			return fmt.Errorf("targets[%d](%s): local and remote must both be addresses or both be sockets", i, t.Name)
		}
	}
	return nil
}

// TargetByName returns a pointer to the first target matching the provided
// name, or nil if not found.
func (c *Config) TargetByName(name string) *Target {
	name = strings.TrimSpace(name)
	for i := range c.Targets {
		if c.Targets[i].Name == name {
			return &c.Targets[i]
		}
	}
	return nil
}

// HostByName returns a pointer to the first ssh host matching the provided
// name, or nil if not found.
func (c *Config) HostByName(name string) *SSHHost {
	name = strings.TrimSpace(name)
	for i := range c.SSHHosts {
		if c.SSHHosts[i].Name == name {
			return &c.SSHHosts[i]
		}
	}
	return nil
}

// Overrides are the per-field target overrides from the CLI. Zero values
// mean "keep the configured value".
type Overrides struct {
	LocalAddress  string
	LocalPort     int
	RemoteAddress string
	RemotePort    int
	LocalSock     string
	RemoteSock    string
}

// Resolve merges the named target with the overrides and returns the
// immutable spec for the session. The endpoint shape is validated here,
// before anything is spawned, rather than at use time.
func (c *Config) Resolve(sshHost, targetName, verbosity string, ov Overrides) (TunnelSpec, error) {
	t := c.TargetByName(targetName)
	if t == nil {
		return TunnelSpec{}, fmt.Errorf("target %q not found", targetName)
	}

	merged := *t
	if ov.LocalAddress != "" {
		merged.LocalAddress = ov.LocalAddress
	}
	if ov.LocalPort != 0 {
		merged.LocalPort = ov.LocalPort
	}
	if ov.RemoteAddress != "" {
		merged.RemoteAddress = ov.RemoteAddress
	}
	if ov.RemotePort != 0 {
		merged.RemotePort = ov.RemotePort
	}
	if ov.LocalSock != "" {
		merged.LocalSock = ov.LocalSock
	}
	if ov.RemoteSock != "" {
		merged.RemoteSock = ov.RemoteSock
	}

	if verbosity == "" {
		verbosity = "v"
	}
	spec := TunnelSpec{
		SSHHost:   sshHost,
		Local:     merged.Local(),
		Remote:    merged.Remote(),
		Verbosity: verbosity,
	}
	if err := spec.Validate(); err != nil {
		return TunnelSpec{}, fmt.Errorf("target %q: %w", targetName, err)
	}
	return spec, nil
}

// expandPath expands leading "~" and environment variables in a path.
// If the input is empty, returns "".
func expandPath(p string) string {
	if p == "" {
		return ""
	}
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~") {
		home, _ := os.UserHomeDir()
		if home != "" {
			if p == "~" {
				p = home
			} else if strings.HasPrefix(p, "~/") {
				p = filepath.Join(home, p[2:])
			}
		}
	}
	return p
}
