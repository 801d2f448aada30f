package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"

	cfgpkg "github.com/KaramelBytes/ioscope/internal/config"
	"github.com/KaramelBytes/ioscope/internal/dataset"
	"github.com/KaramelBytes/ioscope/internal/fuzzy"
	"github.com/KaramelBytes/ioscope/internal/keymap"
	"github.com/KaramelBytes/ioscope/internal/logging"
	"github.com/KaramelBytes/ioscope/internal/view"
)

func settings() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Defaults()
	}
	return cfg
}

func logger() *logrus.Logger {
	if log == nil {
		return logging.Discard()
	}
	return log
}

func panelDefaults() view.Defaults {
	c := settings()
	return view.Defaults{BinCount: c.DefaultBins, RangeMin: c.DefaultRangeMin, RangeMax: c.DefaultRangeMax}
}

func matchOptions() fuzzy.Options {
	opt := fuzzy.DefaultOptions()
	opt.MaxErrorRatio = settings().MatchThreshold
	return opt
}

// loadTable reads and reshapes a dataset file.
func loadTable(path string) (*dataset.Table, error) {
	t, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	logger().WithFields(logrus.Fields{
		"file":    path,
		"rows":    t.Len(),
		"columns": len(t.Columns),
	}).Debug("dataset loaded")
	return t, nil
}

// columnQuery is a flag value to resolve into one of a panel's selectors.
type columnQuery struct {
	field keymap.Field
	flag  string
	query string
}

// selectColumns resolves each query through the panel's selectors and
// stores the matches on p.
func selectColumns(t *dataset.Table, p *view.Panel, queries ...columnQuery) error {
	for _, sel := range queries {
		col, err := view.ResolveColumn(p.Options(t, sel.field), sel.query)
		if err != nil {
			return fmt.Errorf("--%s: %w", sel.flag, err)
		}
		logger().WithFields(logrus.Fields{"query": sel.query, "column": col}).Debug("column resolved")
		if err := p.Select(sel.field, col); err != nil {
			return err
		}
	}
	return nil
}
