package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/machibo/backoffice/internal/app"
	"github.com/machibo/backoffice/internal/audio"
	"github.com/machibo/backoffice/internal/domain"
	"github.com/machibo/backoffice/internal/format"
	"github.com/machibo/backoffice/internal/logging"
)

// runtimeFunc returns the process runtime. Commands receive it instead of a
// runtime so that storage is only opened once config has been loaded.
type runtimeFunc func() (*app.Runtime, error)

var (
	runtimeOnce   sync.Once
	sharedRuntime *app.Runtime
	runtimeErr    error
)

func openRuntime() (*app.Runtime, error) {
	runtimeOnce.Do(func() {
		sharedRuntime, runtimeErr = app.NewRuntime()
	})
	return sharedRuntime, runtimeErr
}

func closeRuntime() {
	if sharedRuntime == nil {
		return
	}
	if err := sharedRuntime.Close(); err != nil {
		logging.GetGlobal().Warn("close runtime failed", "error", err.Error())
	}
}

// alertPlayer honours the per-operator alert sound before the configured one.
func alertPlayer(rt *app.Runtime) audio.Player {
	sound := ""
	if s, err := rt.Settings.Load(); err == nil {
		sound = s.AlertSound
	}
	return audio.FromConfig(sound)
}

// now is replaced by tests.
var now = time.Now

// pageFlags are shared by every paginated list command.
type pageFlags struct {
	page    int
	perPage int
	format  string
}

func (p *pageFlags) register(c *cobra.Command) {
	c.Flags().IntVar(&p.page, "page", 1, "Page number")
	c.Flags().IntVar(&p.perPage, "per-page", 0, "Rows per page (default: preference or per_page)")
	c.Flags().StringVar(&p.format, "format", "table", "Output format: table, compact, json")
}

func (p *pageFlags) request(rt *app.Runtime) domain.PageRequest {
	perPage := p.perPage
	if perPage <= 0 {
		perPage = rt.Settings.PerPage()
	}
	page := p.page
	if page < 1 {
		page = 1
	}
	return domain.PageRequest{Page: page, PerPage: perPage}
}

func (p *pageFlags) outputType() (format.Type, error) {
	return format.ParseType(p.format)
}

// dateFlags override the default two-week window.
type dateFlags struct {
	from string
	to   string
}

func (d *dateFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&d.from, "from", "", "Start date "+domain.DateLayout+" (default: start of the 14-day window ending today)")
	c.Flags().StringVar(&d.to, "to", "", "End date "+domain.DateLayout+" (default: today)")
}

func (d *dateFlags) apply(from, to *string) error {
	if d.from != "" {
		if _, err := time.Parse(domain.DateLayout, d.from); err != nil {
			return fmt.Errorf("invalid --from value %q, want %s", d.from, domain.DateLayout)
		}
		*from = d.from
	}
	if d.to != "" {
		if _, err := time.Parse(domain.DateLayout, d.to); err != nil {
			return fmt.Errorf("invalid --to value %q, want %s", d.to, domain.DateLayout)
		}
		*to = d.to
	}
	return nil
}
