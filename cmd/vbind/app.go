package main

import (
	"context"
	"log/slog"

	"github.com/vango-dev/vbind/internal/config"
	"github.com/vango-dev/vbind/internal/demo"
	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/bind"
	"github.com/vango-dev/vbind/pkg/dom/htmldom"
	"github.com/vango-dev/vbind/pkg/jsx"
	"go.opentelemetry.io/otel/trace"
)

// document is the demo mounted in a fresh document.
type document struct {
	doc    *htmldom.Document
	binder *bind.Binder
	app    *demo.App
}

// buildDocument builds the demo. observer and tracer may be nil.
func buildDocument(ctx context.Context, cfg *config.Config, logger *slog.Logger, observer bind.Observer, tracer trace.Tracer) (*document, error) {
	doc := htmldom.NewDocument()
	opts := cfg.BinderOptions(logger)
	if observer != nil {
		opts = append(opts, bind.WithObserver(observer))
	}
	b := bind.New(doc, opts...)

	rtOpts := []jsx.Option{jsx.WithContext(ctx)}
	if tracer != nil {
		rtOpts = append(rtOpts, jsx.WithTracer(tracer))
	}
	app, err := demo.Build(jsx.New(b, rtOpts...))
	if err != nil {
		return nil, errors.New("L001").Wrap(err)
	}

	title := doc.CreateElement("title")
	title.Append(doc.CreateTextNode("vbind demo"))
	doc.Head().Append(title)
	doc.Body().Append(app.Root)

	return &document{doc: doc, binder: b, app: app}, nil
}
