// Package catalog provides the built-in resolvers and domains and loads user supplied lists and configurations.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tantalor93/resolverbench/pkg/dnsbench"
)

// ResolverInfo describes a well-known public resolver.
type ResolverInfo struct {
	Name        string `json:"name" yaml:"name"`
	Provider    string `json:"provider" yaml:"provider"`
	IP          string `json:"ip" yaml:"ip"`
	IPv6        string `json:"ipv6,omitempty" yaml:"ipv6,omitempty"`
	Type        string `json:"type" yaml:"type"`
	Category    string `json:"category" yaml:"category"`
	Description string `json:"description" yaml:"description"`
	Country     string `json:"country" yaml:"country"`
}

// Resolver converts the description into a benchmarked resolver.
func (r ResolverInfo) Resolver() dnsbench.Resolver {
	return dnsbench.Resolver{Name: r.Name, IP: r.IP}
}

var resolvers = []ResolverInfo{
	{Name: "Cloudflare", Provider: "Cloudflare", IP: "1.1.1.1", IPv6: "2606:4700:4700::1111", Type: "public", Category: "performance", Description: "Fast, privacy-focused public resolver", Country: "Global"},
	{Name: "Cloudflare Security", Provider: "Cloudflare", IP: "1.1.1.2", IPv6: "2606:4700:4700::1112", Type: "public", Category: "security", Description: "Blocks malware", Country: "Global"},
	{Name: "Cloudflare Family", Provider: "Cloudflare", IP: "1.1.1.3", IPv6: "2606:4700:4700::1113", Type: "public", Category: "family", Description: "Blocks malware and adult content", Country: "Global"},
	{Name: "Google", Provider: "Google", IP: "8.8.8.8", IPv6: "2001:4860:4860::8888", Type: "public", Category: "performance", Description: "Google Public DNS", Country: "Global"},
	{Name: "Google Secondary", Provider: "Google", IP: "8.8.4.4", IPv6: "2001:4860:4860::8844", Type: "public", Category: "performance", Description: "Google Public DNS secondary", Country: "Global"},
	{Name: "Quad9", Provider: "Quad9", IP: "9.9.9.9", IPv6: "2620:fe::fe", Type: "public", Category: "security", Description: "Blocks malicious domains, DNSSEC validating", Country: "Switzerland"},
	{Name: "Quad9 Unsecured", Provider: "Quad9", IP: "9.9.9.10", IPv6: "2620:fe::10", Type: "public", Category: "performance", Description: "No blocking, no DNSSEC validation", Country: "Switzerland"},
	{Name: "OpenDNS", Provider: "Cisco", IP: "208.67.222.222", IPv6: "2620:119:35::35", Type: "public", Category: "security", Description: "Phishing protection", Country: "US"},
	{Name: "OpenDNS FamilyShield", Provider: "Cisco", IP: "208.67.222.123", IPv6: "2620:119:35::123", Type: "public", Category: "family", Description: "Blocks adult content", Country: "US"},
	{Name: "AdGuard", Provider: "AdGuard", IP: "94.140.14.14", IPv6: "2a10:50c0::ad1:ff", Type: "public", Category: "privacy", Description: "Blocks ads and trackers", Country: "Cyprus"},
	{Name: "AdGuard Family", Provider: "AdGuard", IP: "94.140.14.15", IPv6: "2a10:50c0::bad1:ff", Type: "public", Category: "family", Description: "Blocks ads, trackers and adult content", Country: "Cyprus"},
	{Name: "CleanBrowsing Security", Provider: "CleanBrowsing", IP: "185.228.168.9", IPv6: "2a0d:2a00:1::2", Type: "public", Category: "security", Description: "Blocks phishing and malware", Country: "Global"},
	{Name: "CleanBrowsing Family", Provider: "CleanBrowsing", IP: "185.228.168.168", IPv6: "2a0d:2a00:1::", Type: "public", Category: "family", Description: "Blocks adult content, enforces safe search", Country: "Global"},
	{Name: "Comodo Secure", Provider: "Comodo", IP: "8.26.56.26", Type: "public", Category: "security", Description: "Blocks malicious domains", Country: "US"},
	{Name: "Level3", Provider: "Lumen", IP: "4.2.2.1", Type: "public", Category: "performance", Description: "Lumen public resolver", Country: "US"},
	{Name: "DNS.WATCH", Provider: "DNS.WATCH", IP: "84.200.69.80", IPv6: "2001:1608:10:25::1c04:b12f", Type: "public", Category: "privacy", Description: "No logging, uncensored", Country: "Germany"},
	{Name: "Mullvad", Provider: "Mullvad", IP: "194.242.2.2", IPv6: "2a07:e340::2", Type: "public", Category: "privacy", Description: "No logging, DoH/DoT capable", Country: "Sweden"},
	{Name: "Control D", Provider: "Control D", IP: "76.76.2.0", IPv6: "2606:1a40::", Type: "public", Category: "privacy", Description: "Unfiltered public resolver", Country: "Canada"},
	{Name: "Yandex", Provider: "Yandex", IP: "77.88.8.8", IPv6: "2a02:6b8::feed:0ff", Type: "public", Category: "performance", Description: "Yandex basic resolver", Country: "Russia"},
}

var defaultResolvers = []string{"Cloudflare", "Google", "Quad9", "OpenDNS", "AdGuard"}

// Resolvers returns all built-in resolvers.
func Resolvers() []ResolverInfo {
	return slices.Clone(resolvers)
}

// ResolversByCategory returns built-in resolvers of the category, all of them when the category is empty.
func ResolversByCategory(category string) []ResolverInfo {
	if category == "" {
		return Resolvers()
	}
	var res []ResolverInfo
	for _, r := range resolvers {
		if strings.EqualFold(r.Category, category) {
			res = append(res, r)
		}
	}
	return res
}

// DefaultResolvers returns the resolvers benchmarked when none are specified.
func DefaultResolvers() []dnsbench.Resolver {
	res, _ := FindResolvers(defaultResolvers...)
	return res
}

// FindResolvers looks up built-in resolvers by name, names are compared case-insensitively.
func FindResolvers(names ...string) ([]dnsbench.Resolver, error) {
	res := make([]dnsbench.Resolver, 0, len(names))
	for _, name := range names {
		i := slices.IndexFunc(resolvers, func(r ResolverInfo) bool {
			return strings.EqualFold(r.Name, strings.TrimSpace(name))
		})
		if i < 0 {
			return nil, fmt.Errorf("unknown resolver '%s'", name)
		}
		res = append(res, resolvers[i].Resolver())
	}
	return res, nil
}
