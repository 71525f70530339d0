package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sifan077/snipr/internal/app/model"
	"github.com/sifan077/snipr/internal/app/workflow"
)

// ErrSubmissionFailed is returned by RunOnce when the service rejected the request.
var ErrSubmissionFailed = errors.New("link creation failed")

// Options is one non-interactive shorten request plus the channels to run afterwards.
type Options struct {
	URL        string
	Alias      string
	Expiration string
	Date       string

	Copy     bool
	Share    bool
	QR       bool
	Open     bool
	Viewport int
}

// RunOnce fills the form from opts, submits it and runs the requested
// distribution channels. The short URL is the only line written to out;
// channel notices go to errOut.
func RunOnce(ctx context.Context, ctrl *workflow.Controller, dist *workflow.Distributor, opts Options, out, errOut io.Writer) error {
	ctrl.SetURL(opts.URL)
	ctrl.SetAlias(opts.Alias)

	if opts.Expiration != "" {
		option, err := model.ParseExpirationOption(strings.ToLower(opts.Expiration))
		if err != nil {
			return fmt.Errorf("--expire: %w", err)
		}
		ctrl.SelectExpiration(option)
	}
	if opts.Date != "" {
		ctrl.SetExpirationDate(opts.Date)
	}

	state, err := ctrl.Submit(ctx)
	if err != nil {
		var vErr *workflow.ValidationError
		if errors.As(err, &vErr) {
			return fmt.Errorf("invalid input: %s", strings.Join(vErr.Fields, ", "))
		}
		return err
	}
	if state.Status != model.WorkflowSucceeded {
		return fmt.Errorf("%w: %s", ErrSubmissionFailed, state.Message)
	}

	fmt.Fprintln(out, state.Result.ShortURL)
	if state.Result.ExpirationDescription != "" {
		fmt.Fprintln(errOut, state.Result.ExpirationDescription)
	}

	// Channel failures are reported but never fail the run.
	if opts.Copy {
		if err := dist.Copy(); err != nil {
			fmt.Fprintf(errOut, "copy: %v\n", err)
		} else {
			fmt.Fprintln(errOut, "Copied!")
		}
	}
	if opts.Share {
		channel, err := dist.Share(ctx)
		switch {
		case err != nil:
			fmt.Fprintf(errOut, "share: %v\n", err)
		case channel == workflow.ChannelCopy:
			fmt.Fprintln(errOut, "Sharing is not available, link copied instead. Copied!")
		default:
			fmt.Fprintln(errOut, "Shared!")
		}
	}
	if opts.QR {
		path, err := dist.ExportQR(opts.Viewport)
		if err != nil {
			fmt.Fprintf(errOut, "qr: %v\n", err)
		} else {
			fmt.Fprintf(errOut, "Downloaded! %s\n", path)
		}
	}
	if opts.Open {
		if err := dist.Open(); err != nil {
			fmt.Fprintf(errOut, "open: %v\n", err)
		}
	}
	return nil
}
