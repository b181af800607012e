// Command inspect runs extraction and classification on saved portal pages,
// or on live pages with --live, and prints the resulting records as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/couchcryptid/snowtam-watch/internal/adapter/httpfetch"
	"github.com/couchcryptid/snowtam-watch/internal/adapter/portal"
	"github.com/couchcryptid/snowtam-watch/internal/config"
	"github.com/couchcryptid/snowtam-watch/internal/domain"
	"github.com/couchcryptid/snowtam-watch/internal/observability"
)

type options struct {
	ICAO      string        `long:"icao" short:"i" description:"Site code for a single saved page (default: derived from the file name)"`
	Live      bool          `long:"live" description:"Treat arguments as site codes and fetch their pages from the portal"`
	URL       string        `long:"url" env:"SNOWTAM_URL" default:"https://flightplan.romatsa.ro/init/notam/getsnowtam?ad={icao}" description:"Portal page template used with --live"`
	UserAgent string        `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (compatible; SNOWTAM-Watch/1.0)" description:"User agent for --live requests"`
	Timeout   time.Duration `long:"timeout" env:"FETCH_TIMEOUT" default:"35s" description:"Per-request timeout for --live"`
	Blocks    bool          `long:"blocks" description:"Print the extracted text blocks instead of records"`

	Args struct {
		Inputs []string `positional-arg-name:"PAGE|ICAO" required:"1"`
	} `positional-args:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	if err := inspect(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "inspect:", err)
		os.Exit(1)
	}
}

func inspect(ctx context.Context, opts options, out io.Writer) error {
	if opts.ICAO != "" && len(opts.Args.Inputs) > 1 && !opts.Live {
		return errors.New("--icao applies to a single page")
	}
	if opts.Live && !strings.Contains(opts.URL, config.ICAOPlaceholder) {
		return fmt.Errorf("--url must contain %s", config.ICAOPlaceholder)
	}

	var client *portal.Client
	if opts.Live {
		fetcher := httpfetch.NewClient(httpfetch.Options{
			UserAgent: opts.UserAgent,
			Timeout:   opts.Timeout,
			Retries:   1,
		}, observability.NewMetrics(), slog.New(slog.NewTextHandler(os.Stderr, nil)))
		client = portal.NewClient(fetcher, opts.URL)
	}

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	for _, input := range opts.Args.Inputs {
		icao, page, source, err := load(ctx, opts, client, input)
		if err != nil {
			return err
		}
		blocks := domain.Extract(page)
		if opts.Blocks {
			if err := enc.Encode(blocks); err != nil {
				return err
			}
			continue
		}
		if err := enc.Encode(domain.NewStatusRecord(icao, blocks, source)); err != nil {
			return err
		}
	}
	return nil
}

// load returns the site code, page text and provenance for one input.
func load(ctx context.Context, opts options, client *portal.Client, input string) (string, string, domain.Source, error) {
	if client != nil {
		icao := strings.ToUpper(strings.TrimSpace(input))
		if !domain.ValidICAO(icao) {
			return "", "", domain.Source{}, fmt.Errorf("invalid site code %q", input)
		}
		page, err := client.FetchPage(ctx, icao)
		if err != nil {
			return "", "", domain.Source{}, err
		}
		return icao, page, client.Source(icao), nil
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return "", "", domain.Source{}, fmt.Errorf("read page: %w", err)
	}
	icao := opts.ICAO
	if icao == "" {
		icao = strings.ToUpper(strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)))
	}
	return strings.ToUpper(icao), string(data), domain.Source{Name: domain.PortalSourceName, URL: "file://" + input}, nil
}
