//go:build unix

package dnsbench

import (
	"bufio"
	"io"
	"os"
	"strings"
)

const resolvConf = "/etc/resolv.conf"

// systemNameServer returns the first name server from the /etc/resolv.conf.
func systemNameServer() string {
	file, err := os.Open(resolvConf)
	if err != nil {
		return defaultNameServer
	}
	defer func() {
		_ = file.Close()
	}()
	return parseResolvConf(file)
}

func parseResolvConf(r io.Reader) string {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) > 0 && (line[0] == ';' || line[0] == '#') {
			// comment line, skip
			continue
		}

		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "nameserver" {
			return fields[1]
		}
	}

	return defaultNameServer
}
