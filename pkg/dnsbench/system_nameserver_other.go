//go:build !(unix || windows)

package dnsbench

func systemNameServer() string {
	return defaultNameServer
}
