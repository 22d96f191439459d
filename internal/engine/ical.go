package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-compactdates/internal/config"
)

// ExportOptions controls the iCalendar feed built from a date set.
type ExportOptions struct {
	// Name is used as calendar name and event summary. Defaults to config.DefaultCalName.
	Name string
	// Clock stamps DTSTAMP. Defaults to RealClock.
	Clock Clock
}

// ExportICS renders one all-day VEVENT per distinct valid date.
// UIDs are derived from the name and the date, so re-exporting the same set is stable.
func ExportICS(dates []CalendarDate, opts ExportOptions) ([]byte, error) {
	name := opts.Name
	if name == "" {
		name = config.DefaultCalName
	}
	clock := opts.Clock
	if clock == nil {
		clock = RealClock{}
	}

	ds := Normalize(dates)
	if len(ds) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, name)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(clock.Now().UTC())

	for _, d := range ds {
		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, eventUID(name, d))
		event.Props.SetText(config.PropSummary, name)
		event.Props.Set(dtStampProp)

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(d.Time())
		event.Props.Set(dtStartProp)

		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgICalExported,
		config.LogKeyComponent, config.CompICal,
		config.LogKeyEvents, len(ds),
		config.LogKeySizeBytes, buf.Len(),
	)
	return buf.Bytes(), nil
}

func eventUID(name string, d CalendarDate) string {
	input := fmt.Sprintf(config.FormatHashInput, name, d.String(), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), config.ICalDomain)
}

// DecodeICS collects the start date of every event in every calendar of r.
// Events without a usable DTSTART are skipped. The result is sorted and unique.
func DecodeICS(ctx context.Context, r io.Reader) ([]CalendarDate, error) {
	dec := ical.NewDecoder(r)
	var dates []CalendarDate

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrICalDecode, err)
		}

		for _, event := range cal.Events() {
			start, err := event.DateTimeStart(time.UTC)
			if err != nil || start.IsZero() {
				slog.Debug(config.MsgSkippedEvent,
					config.LogKeyComponent, config.CompICal,
					config.LogKeyError, err,
				)
				continue
			}
			dates = append(dates, FromTime(start))
		}
	}

	out := Normalize(dates)
	slog.Debug(config.MsgICalImported,
		config.LogKeyComponent, config.CompICal,
		config.LogKeyEvents, len(out),
	)
	return out, nil
}

// Importer reads iCalendar data from a local file or an HTTP(S) URL.
type Importer struct {
	Fetcher CalendarFetcher // Required for URL sources only.

	// User and Password enable HTTP Basic auth for URL sources.
	User     string
	Password string
}

// Import resolves source and returns the event dates it contains.
func (im *Importer) Import(ctx context.Context, source string) ([]CalendarDate, error) {
	reader, err := im.open(ctx, source)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	return DecodeICS(ctx, reader)
}

func (im *Importer) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if source == "" {
		return nil, errors.New(config.ErrSourceEmpty)
	}
	if strings.HasPrefix(source, config.SchemeHTTP+"://") || strings.HasPrefix(source, config.SchemeHTTPS+"://") {
		if im.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return im.Fetcher.Fetch(ctx, source, im.User, im.Password)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrOpenFile, err)
	}
	return f, nil
}
