package gitrepo

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	schemeDelimiterConstant                = "://"
	scpUserDelimiterConstant               = "@"
	scpPathDelimiterConstant               = ":"
	pathSeparatorConstant                  = "/"
	pathSeparatorsConstant                 = "/\\"
	transportURLErrorTemplateConstant      = "%s: %s"
	requiredValueMessageConstant           = "value required"
	invalidTransportURLMessageConstant     = "not a transport url"
	missingHostMessageConstant             = "transport url host missing"
	missingPathMessageConstant             = "transport url path missing"
	unsupportedSchemeMessageConstant       = "unsupported transport scheme"
	remoteNamePatternConstant              = `^[A-Za-z0-9_][A-Za-z0-9._-]*$`
	normalizedTransportURLTemplateConstant = "%s%s%s"
)

// TransportScheme enumerates transports recognized for remote URLs.
type TransportScheme string

// Supported transport schemes.
const (
	TransportSchemeGit   TransportScheme = TransportScheme("git")
	TransportSchemeHTTP  TransportScheme = TransportScheme("http")
	TransportSchemeHTTPS TransportScheme = TransportScheme("https")
	TransportSchemeSSH   TransportScheme = TransportScheme("ssh")
	TransportSchemeFile  TransportScheme = TransportScheme("file")
)

var recognizedSchemes = map[string]TransportScheme{
	"git":     TransportSchemeGit,
	"http":    TransportSchemeHTTP,
	"https":   TransportSchemeHTTPS,
	"ssh":     TransportSchemeSSH,
	"git+ssh": TransportSchemeSSH,
	"ssh+git": TransportSchemeSSH,
	"file":    TransportSchemeFile,
}

var remoteNamePattern = regexp.MustCompile(remoteNamePatternConstant)

// TransportURL represents a remote location whose scheme identifies a supported transport.
type TransportURL struct {
	Raw     string
	Scheme  TransportScheme
	Host    string
	Path    string
	SCPLike bool
}

// TransportURLParseError indicates a string is not a well-formed transport URL.
type TransportURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError TransportURLParseError) Error() string {
	return fmt.Sprintf(transportURLErrorTemplateConstant, parseError.Input, parseError.Message)
}

// UnsupportedSchemeError indicates the URL names a scheme no transport handles.
type UnsupportedSchemeError struct {
	Input  string
	Scheme string
}

// Error describes the unsupported scheme.
func (schemeError UnsupportedSchemeError) Error() string {
	return fmt.Sprintf(transportURLErrorTemplateConstant, schemeError.Scheme, unsupportedSchemeMessageConstant)
}

// ParseTransportURL classifies a remote location as a transport URL.
//
// Accepted forms are scheme URLs for git, http, https, ssh (including the
// git+ssh and ssh+git aliases) and file, plus scp-like [user@]host:path. A
// string without a scheme separator that is not scp-like yields a
// TransportURLParseError; an unrecognized scheme yields an
// UnsupportedSchemeError.
func ParseTransportURL(remoteLocation string) (TransportURL, error) {
	trimmedLocation := strings.TrimSpace(remoteLocation)
	if len(trimmedLocation) == 0 {
		return TransportURL{}, TransportURLParseError{Input: remoteLocation, Message: requiredValueMessageConstant}
	}

	schemeIndex := strings.Index(trimmedLocation, schemeDelimiterConstant)
	if schemeIndex > 0 {
		return parseSchemeURL(trimmedLocation, schemeIndex)
	}
	if schemeIndex == 0 {
		return TransportURL{}, TransportURLParseError{Input: remoteLocation, Message: invalidTransportURLMessageConstant}
	}

	return parseSCPLikeURL(trimmedLocation)
}

// LooksLikeRemoteName reports whether the location is a bare token that would
// name a configured remote (for example "origin") rather than a URL.
func LooksLikeRemoteName(remoteLocation string) bool {
	trimmedLocation := strings.TrimSpace(remoteLocation)
	if len(trimmedLocation) == 0 {
		return false
	}
	if strings.HasSuffix(trimmedLocation, ".") || strings.Contains(trimmedLocation, "..") {
		return false
	}
	return remoteNamePattern.MatchString(trimmedLocation)
}

// EngineURL returns the URL handed to transport engines, with scheme aliases normalized.
func (transportURL TransportURL) EngineURL() string {
	if transportURL.SCPLike {
		return transportURL.Raw
	}
	schemeIndex := strings.Index(transportURL.Raw, schemeDelimiterConstant)
	if schemeIndex <= 0 {
		return transportURL.Raw
	}
	return fmt.Sprintf(normalizedTransportURLTemplateConstant, transportURL.Scheme, schemeDelimiterConstant, transportURL.Raw[schemeIndex+len(schemeDelimiterConstant):])
}

// String returns the location as supplied, without surrounding whitespace.
func (transportURL TransportURL) String() string {
	return transportURL.Raw
}

func parseSchemeURL(location string, schemeIndex int) (TransportURL, error) {
	schemeText := strings.ToLower(location[:schemeIndex])
	scheme, recognized := recognizedSchemes[schemeText]
	if !recognized {
		return TransportURL{}, UnsupportedSchemeError{Input: location, Scheme: schemeText}
	}

	remainder := location[schemeIndex+len(schemeDelimiterConstant):]
	if scheme == TransportSchemeFile {
		if len(strings.TrimSpace(remainder)) == 0 {
			return TransportURL{}, TransportURLParseError{Input: location, Message: missingPathMessageConstant}
		}
		return TransportURL{Raw: location, Scheme: scheme, Path: remainder}, nil
	}

	host := remainder
	path := ""
	if pathIndex := strings.Index(remainder, pathSeparatorConstant); pathIndex >= 0 {
		host = remainder[:pathIndex]
		path = remainder[pathIndex+1:]
	}
	if userIndex := strings.LastIndex(host, scpUserDelimiterConstant); userIndex >= 0 {
		host = host[userIndex+1:]
	}
	if len(host) == 0 {
		return TransportURL{}, TransportURLParseError{Input: location, Message: missingHostMessageConstant}
	}

	return TransportURL{Raw: location, Scheme: scheme, Host: host, Path: path}, nil
}

func parseSCPLikeURL(location string) (TransportURL, error) {
	pathIndex := strings.Index(location, scpPathDelimiterConstant)
	if pathIndex <= 0 {
		return TransportURL{}, TransportURLParseError{Input: location, Message: invalidTransportURLMessageConstant}
	}
	if separatorIndex := strings.IndexAny(location, pathSeparatorsConstant); separatorIndex >= 0 && separatorIndex < pathIndex {
		return TransportURL{}, TransportURLParseError{Input: location, Message: invalidTransportURLMessageConstant}
	}

	hostPart := location[:pathIndex]
	path := location[pathIndex+1:]
	if isDriveLetterPath(hostPart, path) {
		return TransportURL{}, TransportURLParseError{Input: location, Message: invalidTransportURLMessageConstant}
	}

	host := hostPart
	if userIndex := strings.LastIndex(hostPart, scpUserDelimiterConstant); userIndex >= 0 {
		host = hostPart[userIndex+1:]
	}
	if len(host) == 0 {
		return TransportURL{}, TransportURLParseError{Input: location, Message: missingHostMessageConstant}
	}

	if len(strings.TrimSpace(path)) == 0 {
		return TransportURL{}, TransportURLParseError{Input: location, Message: missingPathMessageConstant}
	}

	return TransportURL{Raw: location, Scheme: TransportSchemeSSH, Host: host, Path: path, SCPLike: true}, nil
}

// isDriveLetterPath reports whether host:path is a Windows drive path such as C:\repo or C:/repo.
func isDriveLetterPath(hostPart string, path string) bool {
	if len(hostPart) != 1 || len(path) == 0 {
		return false
	}
	return strings.ContainsRune(pathSeparatorsConstant, rune(path[0]))
}
