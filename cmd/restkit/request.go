package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/request"
	"github.com/kbukum/restkit/resilience"
	"github.com/kbukum/restkit/rest"
)

type requestFlags struct {
	method     string
	headers    []string
	data       string
	query      []string
	form       []string
	typ        string
	charset    string
	descriptor string
	filter     string
	retries    int
}

func newRequestCmd(a *app) *cobra.Command {
	f := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "request [url-or-path]",
		Short: "Send one HTTP request and print the decoded response",
		Long: `Send one HTTP request. A path is joined onto base_url; a full URL is
used as is. With --descriptor the request is read from a JSON or YAML
file and flags are applied on top of it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) > 0 {
				target = args[0]
			}
			return a.withClient(cmd.Context(), func(c *rest.Client) error {
				if _, err := f.build(c, target); err != nil {
					return err
				}
				retry := resilience.DefaultConfig()
				retry.Attempts = f.retries + 1
				retry.OnRetry = func(attempt int, err error, wait time.Duration) {
					logger.Warn("retrying request", logger.MergeWithError(logger.Fields("attempt", attempt, "wait", wait.String()), err))
				}
				v, err := resilience.Retry(cmd.Context(), retry, func(ctx context.Context) (any, error) {
					r, err := f.build(c, target)
					if err != nil {
						return nil, err
					}
					return r.Do(ctx)
				})
				if err != nil {
					if p, ok := errors.ProblemOf(err); ok {
						logger.Warn("server rejected request", logger.Fields(
							"code", string(p.Code), logger.FieldRequestID, p.RequestID))
					}
					if payload, ok := errors.Payload(err); ok {
						_ = printResult(cmd.OutOrStdout(), payload, "")
					}
					return err
				}
				return printResult(cmd.OutOrStdout(), v, f.filter)
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.method, "method", "X", "", "HTTP method (default GET)")
	fl.StringArrayVarP(&f.headers, "header", "H", nil, `Header "Name: value", repeatable`)
	fl.StringVarP(&f.data, "data", "d", "", "Body; valid JSON is sent as application/json, anything else as text")
	fl.StringArrayVarP(&f.query, "query", "q", nil, "Query field key=value, repeatable")
	fl.StringArrayVarP(&f.form, "form", "F", nil, "Form field key=value, repeatable (POST/PUT body, GET query)")
	fl.StringVar(&f.typ, "type", "", "MIME type")
	fl.StringVar(&f.charset, "charset", "", "Charset")
	fl.StringVar(&f.descriptor, "descriptor", "", "Read the request from a JSON or YAML file")
	fl.StringVar(&f.filter, "filter", "", "JMESPath filter applied to the response")
	fl.IntVar(&f.retries, "retries", 0, "Retry transport failures, 429 and 5xx up to this many times")
	return cmd
}

// build assembles the request from the descriptor file and flags.
func (f *requestFlags) build(c *rest.Client, target string) (*request.Request, error) {
	var r *request.Request
	if f.descriptor != "" {
		d, err := readDescriptor(f.descriptor)
		if err != nil {
			return nil, err
		}
		if d.URL != "" {
			d.URL = request.Join(c.Config().BaseURL, d.URL)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("invalid descriptor: %w", err)
		}
		r = request.FromDescriptor(d, request.WithFactory(c.Factory()))
	} else {
		r = c.Request(request.GET, target)
	}

	if target != "" && f.descriptor != "" {
		r.WithURL(request.Join(c.Config().BaseURL, target))
	}
	if f.method != "" {
		m := request.Method(strings.ToUpper(f.method))
		if !r.SetMethod(m) {
			return nil, fmt.Errorf("unsupported method %q", f.method)
		}
	}
	if r.URL() == "" {
		return nil, fmt.Errorf("a valid url is required (got %q)", target)
	}

	headers, err := parseHeaders(f.headers)
	if err != nil {
		return nil, err
	}
	r.AddHeaders(headers)

	if len(f.query) > 0 {
		fields, err := parsePairs(f.query)
		if err != nil {
			return nil, err
		}
		r.WithQuery(fields...)
	}
	if f.data != "" {
		r.WithBody(parseData(f.data))
	}
	if len(f.form) > 0 {
		fields, err := parsePairs(f.form)
		if err != nil {
			return nil, err
		}
		if _, err := r.Form(fields...); err != nil {
			return nil, err
		}
	}
	if f.typ != "" {
		r.WithType(f.typ)
	}
	if f.charset != "" {
		r.WithCharset(f.charset)
	}
	return r, nil
}

func readDescriptor(path string) (request.Descriptor, error) {
	var d request.Descriptor
	data, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("failed to read descriptor: %w", err)
	}
	if strings.HasSuffix(path, ".json") {
		err = json.Unmarshal(data, &d)
	} else {
		err = yaml.Unmarshal(data, &d)
	}
	if err != nil {
		return d, fmt.Errorf("failed to parse descriptor %s: %w", path, err)
	}
	return d, nil
}

// parseData decodes s as JSON when it is valid JSON, otherwise keeps it as
// text.
func parseData(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		if _, isString := v.(string); !isString {
			return v
		}
	}
	return s
}

func parsePairs(pairs []string) ([]request.Field, error) {
	fields := make([]request.Field, 0, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		fields = append(fields, request.F(k, v))
	}
	return fields, nil
}

func parseHeaders(lines []string) (map[string]string, error) {
	out := make(map[string]string, len(lines))
	for _, line := range lines {
		k, v, ok := strings.Cut(line, ":")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf(`expected "Name: value", got %q`, line)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
