package dnsbench

// SystemResolverName is a name of the resolver configured in the operating system.
const SystemResolverName = "System"

const defaultNameServer = "127.0.0.1"

// SystemResolver returns the resolver configured in the operating system.
// If it cannot be determined, 127.0.0.1 is used.
func SystemResolver() Resolver {
	return Resolver{Name: SystemResolverName, IP: systemNameServer()}
}
