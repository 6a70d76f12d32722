//go:build windows

package dnsbench

import (
	"os/exec"
	"regexp"
)

var nslookupServer = regexp.MustCompile(`Address:\s+([^\s]+)`)

// systemNameServer returns the name server reported by the nslookup call.
func systemNameServer() string {
	out, err := exec.Command("nslookup").Output()
	if err != nil {
		return defaultNameServer
	}

	matches := nslookupServer.FindStringSubmatch(string(out))
	if len(matches) != 2 {
		return defaultNameServer
	}
	return matches[1]
}
