package directory

// ProbeResult is the outcome of a directory connection test.
type ProbeResult string

const (
	// ProbeSuccessfulConnect reports that the host accepted a connection
	// with the configured encryption method.
	ProbeSuccessfulConnect ProbeResult = "successful_connect"
	// ProbeSuccessfulBind reports that the bind user authenticated.
	ProbeSuccessfulBind ProbeResult = "successful_bind"
	// ProbeCannotConnect reports that the host did not accept a connection.
	ProbeCannotConnect ProbeResult = "cannot_connect"
	// ProbeCannotBind reports that the connection succeeded but the bind
	// user failed to authenticate.
	ProbeCannotBind ProbeResult = "cannot_bind"
	// ProbeCannotConfigure reports that the probe could not be attempted
	// with the given configuration.
	ProbeCannotConfigure ProbeResult = "cannot_configure"
)

// Succeeded returns true for the successful probe outcomes.
func (r ProbeResult) Succeeded() bool {
	return r == ProbeSuccessfulConnect || r == ProbeSuccessfulBind
}

// String implements fmt.Stringer.
func (r ProbeResult) String() string {
	return string(r)
}
