package validation

import "regexp"

const (
	ipv4Pattern     = `(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)(?:\.(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)){3}`
	hostnamePattern = `(?:[a-z0-9\x{00a1}-\x{ffff}](?:[a-z0-9\x{00a1}-\x{ffff}-]{0,61}[a-z0-9\x{00a1}-\x{ffff}])?\.)+[a-z\x{00a1}-\x{ffff}]{2,}\.?`
)

var urlShape = regexp.MustCompile(`(?i)^` +
	`(?:[a-z][a-z0-9+.-]*://)?` + // scheme
	`(?:[^\s:@/]+(?::[^\s@/]*)?@)?` + // userinfo
	`(?:localhost|` + ipv4Pattern + `|` + hostnamePattern + `)` +
	`(?::\d{1,5})?` + // port
	`(?:[/?#]\S*)?$`)

// IsURL reports whether s satisfies the URL-shape grammar.
func IsURL(s string) bool {
	return urlShape.MatchString(s)
}
