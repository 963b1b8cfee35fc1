package research

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// CompanyDomain returns the registrable domain (eTLD+1) of link, or link itself when no host can be derived.
func CompanyDomain(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	host := hostOf(link)
	if host == "" {
		return link
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return etld1
}

func hostOf(link string) string {
	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		// Retry scheme-less links such as example.com/pricing.
		if strings.Contains(link, "://") {
			return ""
		}
		parsed, err = url.Parse("http://" + strings.TrimPrefix(link, "//"))
		if err != nil || parsed.Host == "" {
			return ""
		}
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimSuffix(host, ".")
}
