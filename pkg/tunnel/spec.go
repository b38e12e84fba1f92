// Package tunnel implements an SSH port-forwarding session: it builds the
// ssh argv for a configured target, runs ssh on a pseudo-terminal so that
// interactive prompts appear (and can be auto-answered), and streams the
// combined output into a scrollable terminal UI.
package tunnel

import (
	"fmt"
	"strconv"
	"strings"
)

// Endpoint is one half of a forwarded connection: either a host/port pair
// or a Unix socket path. Exactly one shape is populated, never both.
type Endpoint struct {
	Host string
	Port int

	SocketPath string
}

// IsTCP reports whether the endpoint is a host/port pair.
func (e Endpoint) IsTCP() bool {
	return e.SocketPath == "" && (e.Host != "" || e.Port != 0)
}

// IsSocket reports whether the endpoint is a Unix socket path.
func (e Endpoint) IsSocket() bool {
	return e.SocketPath != ""
}

// String renders the endpoint the way it appears in ssh -L arguments and in
// the UI header: "host:port" or the socket path.
func (e Endpoint) String() string {
	if e.IsSocket() {
		return e.SocketPath
	}
	return e.Host + ":" + strconv.Itoa(e.Port)
}

// Validate checks that exactly one endpoint shape is populated and that a
// TCP endpoint carries a usable address.
func (e Endpoint) Validate() error {
	if e.SocketPath != "" {
		if e.Host != "" || e.Port != 0 {
			return fmt.Errorf("endpoint mixes socket path %q with address/port", e.SocketPath)
		}
		return nil
	}
	if strings.TrimSpace(e.Host) == "" {
		return fmt.Errorf("endpoint has neither an address nor a socket path")
	}
	if e.Port < 1 || e.Port > 65535 {
		return fmt.Errorf("endpoint port %d out of range [1, 65535]", e.Port)
	}
	return nil
}

// TunnelSpec is the fully resolved description of one forwarding session.
// It is built once (config entry merged with CLI overrides) and never
// changes after the session starts.
type TunnelSpec struct {
	SSHHost string
	Local   Endpoint
	Remote  Endpoint

	// Verbosity is the ssh verbosity flag body, e.g. "v" or "vvv".
	Verbosity string
}

// Validate rejects specs whose endpoints are malformed or of mixed shape.
// A forward is either TCP-to-TCP or socket-to-socket; ssh -L has no syntax
// for crossing the two.
func (s TunnelSpec) Validate() error {
	if strings.TrimSpace(s.SSHHost) == "" {
		return fmt.Errorf("ssh host is required")
	}
	if err := s.Local.Validate(); err != nil {
		return fmt.Errorf("local %w", err)
	}
	if err := s.Remote.Validate(); err != nil {
		return fmt.Errorf("remote %w", err)
	}
	if s.Local.IsSocket() != s.Remote.IsSocket() {
		return fmt.Errorf("mixed endpoint shapes: local is %s, remote is %s",
			endpointShape(s.Local), endpointShape(s.Remote))
	}
	return nil
}

func endpointShape(e Endpoint) string {
	if e.IsSocket() {
		return "a unix socket"
	}
	return "an address/port"
}

// HeaderInfo holds the display strings for the static UI header line:
//
//	127.0.0.1:8080[analytics-web] => 127.0.0.1:8080[miniserver.local]
//
// Computed once per session; read-only afterwards.
type HeaderInfo struct {
	LocalLabel  string
	LocalName   string
	RemoteLabel string
	RemoteName  string
}

// NewHeaderInfo derives the header strings from a resolved spec. The local
// side is labeled with the target name, the remote side with the ssh host.
func NewHeaderInfo(spec TunnelSpec, targetName string) HeaderInfo {
	return HeaderInfo{
		LocalLabel:  spec.Local.String(),
		LocalName:   targetName,
		RemoteLabel: spec.Remote.String(),
		RemoteName:  spec.SSHHost,
	}
}

// Summary renders the header without styling, e.g.
// "127.0.0.1:8080[analytics-web] => 127.0.0.1:8080[miniserver.local]".
func (h HeaderInfo) Summary() string {
	return h.LocalLabel + "[" + h.LocalName + "] => " + h.RemoteLabel + "[" + h.RemoteName + "]"
}
