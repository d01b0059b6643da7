package services

import (
	"net/url"
	"strings"

	"github.com/samber/lo"
)

var productionCallbackHosts = []string{
	"api.trychannel3.com",
	"trychannel3.com",
	"www.trychannel3.com",
}

var developmentCallbackHosts = []string{
	"localhost",
	"127.0.0.1",
	"channel3.ngrok.dev",
	"channel3-2.ngrok.dev",
	"channel3-evan.ngrok.dev",
}

// HostFilter rewrites the callback host list. Filters run once, in order, when
// the allow-list is built.
type HostFilter func(hosts []string) []string

// WithExtraHosts appends hosts to the list.
func WithExtraHosts(extra ...string) HostFilter {
	return func(hosts []string) []string {
		return append(hosts, extra...)
	}
}

// CallbackAllowList decides which callback_url hosts may receive credentials.
type CallbackAllowList struct {
	hosts []string
}

// NewCallbackAllowList builds the list from the production hosts, the
// development hosts when debug is set, and the given filters.
func NewCallbackAllowList(debug bool, filters ...HostFilter) *CallbackAllowList {
	hosts := append([]string(nil), productionCallbackHosts...)
	if debug {
		hosts = append(hosts, developmentCallbackHosts...)
	}
	for _, filter := range filters {
		if filter != nil {
			hosts = filter(hosts)
		}
	}
	hosts = lo.Uniq(lo.FilterMap(hosts, func(host string, _ int) (string, bool) {
		host = strings.ToLower(strings.TrimSpace(host))
		return host, host != ""
	}))
	return &CallbackAllowList{hosts: hosts}
}

// Allows reports whether host (without port) is on the list.
func (a *CallbackAllowList) Allows(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if a == nil || host == "" {
		return false
	}
	return lo.Contains(a.hosts, host)
}

// AllowsURL parses raw and checks its host.
func (a *CallbackAllowList) AllowsURL(raw string) (*url.URL, bool) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Hostname() == "" {
		return nil, false
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return nil, false
	}
	return parsed, a.Allows(parsed.Hostname())
}

// Hosts returns a copy of the effective list.
func (a *CallbackAllowList) Hosts() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.hosts...)
}
