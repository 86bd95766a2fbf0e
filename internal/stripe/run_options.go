package stripe

import (
	"net/url"

	"github.com/barkai-yeshivah/payment-api/internal/log"
)

// RunOption controls behavior of a single client call.
type RunOption func(*runOptions)

// DryRunHandler receives information about a skipped request.
type DryRunHandler func(method string, url string, form url.Values)

type runOptions struct {
	dryRun       bool
	dryRunHandle DryRunHandler
}

var dryRunLogger = log.NewDefault()

// DryRun skips the underlying HTTP call.
//
// Optional handler lets you inspect the request form.
func DryRun(handler ...DryRunHandler) RunOption {
	return func(o *runOptions) {
		o.dryRun = true
		if len(handler) > 0 && handler[0] != nil {
			o.dryRunHandle = handler[0]
			return
		}
		o.dryRunHandle = defaultDryRunHandler
	}
}

func collectRunOptions(opts []RunOption) *runOptions {
	if len(opts) == 0 {
		return nil
	}

	r := &runOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (o *runOptions) isDryRun() bool {
	return o != nil && o.dryRun
}

func (o *runOptions) handleDryRun(method string, url string, form url.Values) {
	if o == nil || !o.dryRun || o.dryRunHandle == nil {
		return
	}
	o.dryRunHandle(method, url, form)
}

func shouldDryRun(runOpts []RunOption, method string, url string, form url.Values) bool {
	opts := collectRunOptions(runOpts)
	if !opts.isDryRun() {
		return false
	}
	opts.handleDryRun(method, url, form)
	return true
}

func defaultDryRunHandler(method string, url string, form url.Values) {
	dryRunLogger.Infof("Dry run: skipping request %s %s", method, url)
	if form == nil {
		dryRunLogger.Infof("Dry run form: <nil>")
		return
	}
	dryRunLogger.Infof("Dry run form:\n%s", form.Encode())
}
