// Package util holds small helpers shared by the provider HTTP
// clients.
package util

import (
	"net/http"
	"net/url"
)

// NewProxyFunc builds the proxy selector for a provider transport.
// Explicit proxy URLs from the provider configuration win; with none
// set, the process environment (HTTP_PROXY, HTTPS_PROXY, NO_PROXY)
// decides.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		switch {
		case req.URL.Scheme == "https" && httpsProxy != "":
			return url.Parse(httpsProxy)
		case httpProxy != "":
			return url.Parse(httpProxy)
		default:
			return http.ProxyFromEnvironment(req)
		}
	}
}
