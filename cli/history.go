package cli

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/laneplanner/config"
)

// HistoryAction is the corresponding action for 'history'.
func HistoryAction(c *cli.Context) (err error) {
	logger := newLogger(c)
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	if !cfg.Store.Persistent() {
		return errors.New("history needs a persistent store; set store.kind to mongodb or sqlite")
	}
	ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
	defer cancel()
	s, err := openStore(ctx, cfg.Store)
	if err != nil {
		return errors.Wrap(err, "opening lane store")
	}
	defer func() {
		err = multierr.Combine(err, s.Close(context.Background()))
	}()

	records, err := s.List(ctx, c.Int(limitFlag))
	if err != nil {
		return err
	}
	writeHistoryTable(c.App.Writer, records)
	return nil
}

// SchemaAction is the corresponding action for 'schema'.
func SchemaAction(c *cli.Context) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(config.Schema())
}
