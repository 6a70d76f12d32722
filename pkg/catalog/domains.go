package catalog

import (
	"slices"
	"strings"
)

// Domain is a domain name used for benchmarking.
type Domain struct {
	Domain      string `json:"domain" yaml:"domain"`
	Category    string `json:"category" yaml:"category"`
	Description string `json:"description" yaml:"description"`
	Country     string `json:"country" yaml:"country"`
}

var domains = []Domain{
	{Domain: "google.com", Category: "search", Description: "Google Search", Country: "US"},
	{Domain: "bing.com", Category: "search", Description: "Microsoft Bing", Country: "US"},
	{Domain: "duckduckgo.com", Category: "search", Description: "DuckDuckGo", Country: "US"},
	{Domain: "github.com", Category: "tech", Description: "GitHub", Country: "US"},
	{Domain: "stackoverflow.com", Category: "tech", Description: "Stack Overflow", Country: "US"},
	{Domain: "microsoft.com", Category: "tech", Description: "Microsoft", Country: "US"},
	{Domain: "apple.com", Category: "tech", Description: "Apple", Country: "US"},
	{Domain: "cloudflare.com", Category: "tech", Description: "Cloudflare", Country: "US"},
	{Domain: "amazon.com", Category: "ecommerce", Description: "Amazon", Country: "US"},
	{Domain: "ebay.com", Category: "ecommerce", Description: "eBay", Country: "US"},
	{Domain: "aliexpress.com", Category: "ecommerce", Description: "AliExpress", Country: "China"},
	{Domain: "etsy.com", Category: "ecommerce", Description: "Etsy", Country: "US"},
	{Domain: "facebook.com", Category: "social", Description: "Facebook", Country: "US"},
	{Domain: "instagram.com", Category: "social", Description: "Instagram", Country: "US"},
	{Domain: "reddit.com", Category: "social", Description: "Reddit", Country: "US"},
	{Domain: "linkedin.com", Category: "social", Description: "LinkedIn", Country: "US"},
	{Domain: "x.com", Category: "social", Description: "X", Country: "US"},
	{Domain: "bbc.co.uk", Category: "news", Description: "BBC", Country: "UK"},
	{Domain: "cnn.com", Category: "news", Description: "CNN", Country: "US"},
	{Domain: "nytimes.com", Category: "news", Description: "The New York Times", Country: "US"},
	{Domain: "reuters.com", Category: "news", Description: "Reuters", Country: "UK"},
	{Domain: "theguardian.com", Category: "news", Description: "The Guardian", Country: "UK"},
	{Domain: "youtube.com", Category: "streaming", Description: "YouTube", Country: "US"},
	{Domain: "netflix.com", Category: "streaming", Description: "Netflix", Country: "US"},
	{Domain: "twitch.tv", Category: "streaming", Description: "Twitch", Country: "US"},
	{Domain: "spotify.com", Category: "streaming", Description: "Spotify", Country: "Sweden"},
	{Domain: "wikipedia.org", Category: "reference", Description: "Wikipedia", Country: "Global"},
	{Domain: "archive.org", Category: "reference", Description: "Internet Archive", Country: "US"},
	{Domain: "paypal.com", Category: "finance", Description: "PayPal", Country: "US"},
	{Domain: "stripe.com", Category: "finance", Description: "Stripe", Country: "US"},
}

var sampleDomains = []string{
	"google.com", "github.com", "amazon.com", "wikipedia.org", "cloudflare.com",
	"microsoft.com", "reddit.com", "netflix.com", "stackoverflow.com", "bbc.co.uk",
}

// Domains returns all built-in domains.
func Domains() []Domain {
	return slices.Clone(domains)
}

// DomainsByCategory returns built-in domains of the category, all of them when the category is empty.
func DomainsByCategory(category string) []Domain {
	if category == "" {
		return Domains()
	}
	var res []Domain
	for _, d := range domains {
		if strings.EqualFold(d.Category, category) {
			res = append(res, d)
		}
	}
	return res
}

// SampleDomains returns the domains benchmarked when none are specified.
func SampleDomains() []string {
	return slices.Clone(sampleDomains)
}

// Names returns just the domain names.
func Names(ds []Domain) []string {
	res := make([]string, len(ds))
	for i, d := range ds {
		res[i] = d.Domain
	}
	return res
}

// CategoryList lists the categories of built-in resolvers and domains.
type CategoryList struct {
	Resolvers []string `json:"resolvers" yaml:"resolvers"`
	Domains   []string `json:"domains" yaml:"domains"`
}

// Categories returns sorted categories of built-in resolvers and domains.
func Categories() CategoryList {
	c := CategoryList{}
	for _, r := range resolvers {
		c.Resolvers = append(c.Resolvers, r.Category)
	}
	for _, d := range domains {
		c.Domains = append(c.Domains, d.Category)
	}
	slices.Sort(c.Resolvers)
	slices.Sort(c.Domains)
	c.Resolvers = slices.Compact(c.Resolvers)
	c.Domains = slices.Compact(c.Domains)
	return c
}
