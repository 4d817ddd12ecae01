package util

import (
	"net/http"
	"net/url"
	"strings"
)

// NewProxyFunc builds the transport proxy function from explicit
// config. With no explicit proxies the standard environment variables
// apply. Hosts matching noProxy (comma-separated suffixes) bypass the
// configured proxies.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	var bypass []string
	for _, s := range strings.Split(noProxy, ",") {
		if s = strings.TrimSpace(s); s != "" {
			bypass = append(bypass, s)
		}
	}

	return func(req *http.Request) (*url.URL, error) {
		host := req.URL.Hostname()
		for _, suffix := range bypass {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return nil, nil
			}
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
