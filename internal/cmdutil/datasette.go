package cmdutil

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/lepinkainen/shelfsync/internal/datastore"
)

// databaseName is the Datasette database remote inserts target.
const databaseName = "shelfsync"

// WriteToDatastore lands a finished report in the configured datastore. A
// disabled datasette integration or an empty report is a no-op.
func WriteToDatastore(ctx context.Context, report datastore.Report) error {
	if !viper.GetBool("datasette.enabled") {
		return nil
	}
	if len(report.Rows) == 0 {
		return nil
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.WriteReport(ctx, report); err != nil {
		return fmt.Errorf("failed to write %s report: %w", report.Table, err)
	}

	slog.Info("Wrote report to datastore", "table", report.Table, "rows", len(report.Rows))
	return nil
}

// openStore connects the store the datasette config selects. Mode defaults
// to local when unset.
func openStore(ctx context.Context) (datastore.Store, error) {
	mode := viper.GetString("datasette.mode")
	if mode == "" {
		mode = "local"
	}

	var store datastore.Store
	switch mode {
	case "local":
		store = datastore.NewSQLiteStore(viper.GetString("datasette.dbfile"))
	case "remote":
		store = datastore.NewDatasetteClient(
			viper.GetString("datasette.remote_url"),
			databaseName,
			viper.GetString("datasette.api_token"),
		)
	default:
		return nil, fmt.Errorf("unknown datasette mode %q", mode)
	}

	if err := store.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to datastore: %w", err)
	}
	return store, nil
}
