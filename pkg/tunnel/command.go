package tunnel

// BuildForwardArgs constructs the ssh argument list for the forward
// described by spec, without the "ssh" binary itself:
//
//	TCP:    -v -NL local:lport:remote:rport ssh_host -o StreamLocalBindUnlink=yes
//	socket: -v -NL /local.sock:/remote.sock ssh_host -o StreamLocalBindUnlink=yes
//
// StreamLocalBindUnlink=yes lets a socket forward bind over a pre-existing
// socket file left behind by an earlier session.
func BuildForwardArgs(spec TunnelSpec) ([]string, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	forward := spec.Local.String() + ":" + spec.Remote.String()
	return []string{
		"-" + spec.Verbosity,
		"-NL", forward,
		spec.SSHHost,
		"-o", "StreamLocalBindUnlink=yes",
	}, nil
}

// BuildForwardCommand is BuildForwardArgs with the ssh binary prepended,
// ready for Supervisor.Start.
func BuildForwardCommand(spec TunnelSpec) ([]string, error) {
	args, err := BuildForwardArgs(spec)
	if err != nil {
		return nil, err
	}
	return append([]string{"ssh"}, args...), nil
}
