// geomload imports a level yaml's static geometry into the static_geometry
// table so the server can boot from the database instead of the file.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/riftgate/server/internal/config"
	"github.com/riftgate/server/internal/data"
	"github.com/riftgate/server/internal/persist"
)

// Trigger volumes get ids above this base so they never collide with the
// explicit ids of solid statics.
const triggerIDBase = 1_000_000

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: geomload <level.yaml> <dsn>")
		os.Exit(1)
	}

	lvl, err := data.LoadLevel(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var rows []persist.GeometryRow
	for _, e := range lvl.Statics {
		layer, _ := data.ResolveLayer(e.Layer)
		mask, _ := data.ResolveMask(e.Mask)
		rows = append(rows, persist.GeometryRow{
			ID: e.ID, CX: e.X, CY: e.Y, HalfW: e.HalfW, HalfH: e.HalfH,
			Layer: layer, Mask: mask,
		})
	}
	for i, e := range lvl.Triggers {
		tag, _ := data.ResolveTag(e.Tag)
		ttype, _ := data.ResolveTriggerType(e.Type)
		layer, _ := data.ResolveLayer(e.Layer)
		mask, _ := data.ResolveMask(e.Mask)
		rows = append(rows, persist.GeometryRow{
			ID: triggerIDBase + uint64(i), CX: e.X, CY: e.Y, HalfW: e.HalfW, HalfH: e.HalfH,
			Layer: layer, Mask: mask,
			IsTrigger: true, TriggerTag: int16(tag), TriggerType: int16(ttype),
		})
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, config.DatabaseConfig{
		DSN:             os.Args[2],
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: config.Duration{Duration: time.Minute},
	}, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer db.Close()

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := persist.NewGeometryRepo(db).SaveBatch(ctx, rows); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("imported %d bodies (%d statics, %d triggers)\n",
		len(rows), len(lvl.Statics), len(lvl.Triggers))
}
