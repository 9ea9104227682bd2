// Package validation provides the input checks restkit applies to URLs,
// methods and configuration.
//
// IsURL implements the URL-shape grammar requests accept: a scheme plus
// host, a bare host plus path, localhost, or an IPv4 literal, each with an
// optional port, path, query and fragment.
//
// Struct tag validation uses the go-playground validator with the extra
// "urlshape" tag; packages may register further string rules with
// RegisterRule:
//
//	type Config struct {
//	    BaseURL string `validate:"omitempty,urlshape"`
//	}
//	err := validation.Validate(cfg)
package validation
