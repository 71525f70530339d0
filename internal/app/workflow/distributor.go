package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sifan077/snipr/internal/app/model"
	"go.uber.org/zap"
)

// Distribution channels.
const (
	ChannelCopy  = "copy"
	ChannelShare = "share"
	ChannelQR    = "qr"
	ChannelOpen  = "open"
)

const (
	// DefaultIndicatorDelay is how long the copied/downloaded flags stay set.
	DefaultIndicatorDelay = 2 * time.Second

	compactViewportWidth = 640
	compactQRSize        = 120
	regularQRSize        = 160
	fallbackQRName       = "link"
)

var (
	// ErrNoResult means a distribution was requested outside the Succeeded state.
	ErrNoResult = errors.New("no short link to distribute")

	// ErrUnavailable means the platform lacks the capability.
	ErrUnavailable = errors.New("capability unavailable")
)

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	Available() bool
	WriteText(text string) error
}

// Sharer hands a link to the native share capability.
type Sharer interface {
	Available() bool
	Share(ctx context.Context, req model.ShareRequest) error
}

// QRRenderer rasterizes content as a square QR code PNG of size pixels.
type QRRenderer interface {
	Render(content string, size int) ([]byte, error)
}

// FileSaver triggers a file download and returns where the file landed.
type FileSaver interface {
	Save(name string, data []byte) (string, error)
}

// Opener opens a URL with the platform's default handler.
type Opener interface {
	Open(target string) error
}

// ResultSource exposes the LinkResult while the workflow is Succeeded.
type ResultSource interface {
	Result() (model.LinkResult, bool)
}

// DistributionError is a contained, non-fatal failure of one channel.
type DistributionError struct {
	Channel string
	Err     error
}

func (e *DistributionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Channel, e.Err)
}

func (e *DistributionError) Unwrap() error {
	return e.Err
}

// DistributorDeps groups the capabilities of a Distributor. Any capability may be nil.
type DistributorDeps struct {
	Logger         *zap.Logger
	Results        ResultSource
	Clipboard      Clipboard
	Sharer         Sharer
	QR             QRRenderer
	Files          FileSaver
	Opener         Opener
	Metrics        Recorder
	ShareTitle     string
	ShareText      string
	IndicatorDelay time.Duration
}

// Distributor moves a created short link to the clipboard, a share target,
// a QR image file or the browser. It never changes the workflow state.
type Distributor struct {
	logger     *zap.Logger
	results    ResultSource
	clipboard  Clipboard
	sharer     Sharer
	qr         QRRenderer
	files      FileSaver
	opener     Opener
	metrics    Recorder
	shareTitle string
	shareText  string
	delay      time.Duration

	copied     indicator
	downloaded indicator
}

// NewDistributor builds a Distributor reading results from deps.Results.
func NewDistributor(deps DistributorDeps) *Distributor {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = nopRecorder{}
	}
	delay := deps.IndicatorDelay
	if delay <= 0 {
		delay = DefaultIndicatorDelay
	}
	title := deps.ShareTitle
	if title == "" {
		title = model.DefaultShareTitle
	}
	text := deps.ShareText
	if text == "" {
		text = model.DefaultShareText
	}
	return &Distributor{
		logger:     logger.Named("distributor"),
		results:    deps.Results,
		clipboard:  deps.Clipboard,
		sharer:     deps.Sharer,
		qr:         deps.QR,
		files:      deps.Files,
		opener:     deps.Opener,
		metrics:    metrics,
		shareTitle: title,
		shareText:  text,
		delay:      delay,
	}
}

// Copied reports whether the transient "copied" indicator is set.
func (d *Distributor) Copied() bool {
	return d.copied.isSet()
}

// Downloaded reports whether the transient "downloaded" indicator is set.
func (d *Distributor) Downloaded() bool {
	return d.downloaded.isSet()
}

// Copy writes the short URL to the clipboard.
func (d *Distributor) Copy() error {
	result, err := d.result(ChannelCopy)
	if err != nil {
		return err
	}
	if d.clipboard == nil || !d.clipboard.Available() {
		return d.fail(ChannelCopy, ErrUnavailable)
	}
	if err := d.clipboard.WriteText(result.ShortURL); err != nil {
		return d.fail(ChannelCopy, err)
	}

	d.copied.flash(d.delay)
	d.succeed(ChannelCopy, result.ShortURL)
	return nil
}

// Share offers the short URL to the native share capability and falls back
// to Copy when sharing is unavailable, cancelled or fails. It returns the
// channel that delivered the link.
func (d *Distributor) Share(ctx context.Context) (string, error) {
	result, err := d.result(ChannelShare)
	if err != nil {
		return "", err
	}

	if d.sharer != nil && d.sharer.Available() {
		req := model.ShareRequest{Title: d.shareTitle, Text: d.shareText, URL: result.ShortURL}
		shareErr := d.sharer.Share(ctx, req)
		if shareErr == nil {
			d.succeed(ChannelShare, result.ShortURL)
			return ChannelShare, nil
		}
		d.logger.Warn("share failed, falling back to copy", zap.Error(shareErr))
		d.metrics.ObserveDistribution(ChannelShare, OutcomeFailed)
	} else {
		d.logger.Debug("share unavailable, falling back to copy")
	}

	if err := d.Copy(); err != nil {
		return "", err
	}
	return ChannelCopy, nil
}

// ExportQR renders the short URL as a QR code sized for viewportWidth and
// saves it as a PNG. It returns the saved file path.
func (d *Distributor) ExportQR(viewportWidth int) (string, error) {
	result, err := d.result(ChannelQR)
	if err != nil {
		return "", err
	}
	if d.qr == nil || d.files == nil {
		return "", d.fail(ChannelQR, ErrUnavailable)
	}

	png, err := d.qr.Render(result.ShortURL, QRSize(viewportWidth))
	if err != nil {
		return "", d.fail(ChannelQR, fmt.Errorf("render: %w", err))
	}
	path, err := d.files.Save(QRFileName(result.ShortURL), png)
	if err != nil {
		return "", d.fail(ChannelQR, fmt.Errorf("save: %w", err))
	}

	d.downloaded.flash(d.delay)
	d.succeed(ChannelQR, result.ShortURL, zap.String("path", path))
	return path, nil
}

// Open visits the short URL with the platform's default handler.
func (d *Distributor) Open() error {
	result, err := d.result(ChannelOpen)
	if err != nil {
		return err
	}
	if d.opener == nil {
		return d.fail(ChannelOpen, ErrUnavailable)
	}
	if err := d.opener.Open(result.ShortURL); err != nil {
		return d.fail(ChannelOpen, err)
	}
	d.succeed(ChannelOpen, result.ShortURL)
	return nil
}

// QRSize picks the QR edge length in pixels for a viewport width.
func QRSize(viewportWidth int) int {
	if viewportWidth < compactViewportWidth {
		return compactQRSize
	}
	return regularQRSize
}

// QRFileName names the exported image after the short URL's last path segment.
func QRFileName(shortURL string) string {
	segment := ""
	if u, err := url.Parse(shortURL); err == nil {
		segment = u.Path
	} else {
		segment = shortURL
	}
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	if segment == "" {
		segment = fallbackQRName
	}
	return "qr-" + segment + ".png"
}

func (d *Distributor) result(channel string) (model.LinkResult, error) {
	if d.results == nil {
		return model.LinkResult{}, d.fail(channel, ErrNoResult)
	}
	result, ok := d.results.Result()
	if !ok {
		return model.LinkResult{}, d.fail(channel, ErrNoResult)
	}
	return result, nil
}

func (d *Distributor) fail(channel string, err error) error {
	d.logger.Warn("distribution failed", zap.String("channel", channel), zap.Error(err))
	d.metrics.ObserveDistribution(channel, OutcomeFailed)
	return &DistributionError{Channel: channel, Err: err}
}

func (d *Distributor) succeed(channel, shortURL string, fields ...zap.Field) {
	d.logger.Debug("distributed short link",
		append([]zap.Field{zap.String("channel", channel), zap.String("short_url", shortURL)}, fields...)...)
	d.metrics.ObserveDistribution(channel, OutcomeSucceeded)
}

// indicator is a flag that clears itself a fixed delay after the last flash.
type indicator struct {
	mu    sync.Mutex
	on    bool
	gen   uint64
	timer *time.Timer
}

func (i *indicator) flash(delay time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.gen++
	gen := i.gen
	i.on = true
	if i.timer != nil {
		i.timer.Stop()
	}
	i.timer = time.AfterFunc(delay, func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		if i.gen == gen {
			i.on = false
		}
	})
}

func (i *indicator) isSet() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.on
}
