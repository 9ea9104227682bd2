package request

import (
	"context"
	"time"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/negotiate"
	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/transport"
)

// Send transmits the request over a transport from the request's factory,
// or transport.Default when none was configured.
//
// The returned error is non-nil only for a configuration error: url or
// method unset. Everything else, including the absence of any compatible
// transport, settles the Future.
func (r *Request) Send(ctx context.Context) (*Future, error) {
	factory := r.factory
	if factory == nil {
		factory = transport.Default()
	}
	t := factory.Create()
	if t == nil {
		r.log.Warn("no compatible transport", logger.Fields(logger.FieldRequestID, r.id))
		return Rejected(errors.TransportUnavailable()), nil
	}
	return r.SendWith(ctx, t)
}

// SendWith transmits the request over t. A nil t behaves like Send.
func (r *Request) SendWith(ctx context.Context, t transport.Transport) (*Future, error) {
	if t == nil {
		return r.Send(ctx)
	}
	if r.url == "" || r.method == "" {
		return nil, errors.Configuration("valid method and url required", map[string]any{
			"url":    r.url,
			"method": string(r.method),
		})
	}
	if ctx == nil {
		ctx = context.Background()
	}

	target := r.url + r.query
	ctx, span := observability.StartRequestSpan(ctx, string(r.method), target)
	metrics := observability.DefaultRequestMetrics()
	if metrics != nil {
		metrics.Start(ctx)
	}
	start := time.Now()

	fut, settle := NewFuture()
	finish := func(status int, v any, err error) {
		if !settle(v, err) {
			return
		}
		observability.EndRequestSpan(span, status, err)
		if metrics != nil {
			metrics.End(ctx, string(r.method), observability.Outcome(err), time.Since(start))
		}
		fields := logger.MergeWithDuration(logger.Fields(
			logger.FieldRequestID, r.id,
			logger.FieldMethod, string(r.method),
			logger.FieldURL, target,
			logger.FieldStatus, status,
		), time.Since(start))
		if err != nil {
			r.log.Debug("request rejected", logger.MergeWithError(fields, err))
			return
		}
		r.log.Debug("request resolved", fields)
	}

	if binder, ok := t.(transport.ContextBinder); ok {
		binder.BindContext(ctx)
	}

	headers := r.Headers()
	for _, k := range sortedHeaders(headers) {
		t.SetRequestHeader(k, headers[k])
	}

	if err := t.Open(string(r.method), target, true); err != nil {
		finish(0, nil, errors.TransportFailure(err))
		return fut, nil
	}

	t.OnLoad(func() {
		status := t.Status()
		payload := decode(t, r.Type())
		if status >= 200 && status < 400 {
			r.record(Response{OK: true, Status: status, Success: payload})
			finish(status, payload, nil)
			return
		}
		r.record(Response{Status: status, Error: payload})
		finish(status, nil, errors.HTTPStatus(status, payload))
	})
	t.OnError(func(err error) {
		finish(0, nil, errors.TransportFailure(err))
	})

	r.log.Debug("sending request", logger.Fields(
		logger.FieldRequestID, r.id,
		logger.FieldMethod, string(r.method),
		logger.FieldURL, target,
	))
	if err := t.Send(r.body); err != nil {
		finish(0, nil, errors.TransportFailure(err))
	}
	return fut, nil
}

// decode shapes the transport's response by the response Content-Type,
// falling back to the request's declared type.
func decode(t transport.Transport, fallback string) any {
	mediaType := negotiate.MediaType(t.ResponseHeader("Content-Type"))
	if mediaType == "" {
		mediaType = fallback
	}
	data := t.Response()
	if data == nil {
		data = t.ResponseText()
	}
	return negotiate.Mimeify(data, mediaType)
}

// Do sends the request and waits for its settlement. A nil ctx means
// context.Background.
func (r *Request) Do(ctx context.Context) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	fut, err := r.Send(ctx)
	if err != nil {
		return nil, err
	}
	return fut.Wait(ctx)
}
