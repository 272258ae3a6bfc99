package version

import "fmt"

// IncompatibleError reports a client whose major version differs from the server's.
type IncompatibleError struct {
	ClientVersion string
	ServerVersion string
	MinVersion    string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("client version %s incompatible with server version %s (requires v%s.x)",
		e.ClientVersion, e.ServerVersion, e.MinVersion)
}

// CheckCompatibility validates that client and server share a major version.
// Development builds on either side are always allowed.
func CheckCompatibility(clientVersion string) *IncompatibleError {
	return checkCompatibility(clientVersion, Get())
}

func checkCompatibility(clientVersion, serverVersion string) *IncompatibleError {
	if IsDevelopment(clientVersion) || IsDevelopment(serverVersion) {
		return nil
	}

	serverMajor := ParseMajor(serverVersion)
	if ParseMajor(clientVersion) == serverMajor {
		return nil
	}

	return &IncompatibleError{
		ClientVersion: clientVersion,
		ServerVersion: serverVersion,
		MinVersion:    serverMajor,
	}
}
