package main

import (
	"context"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/contract-finder/internal/bids"
	"github.com/david/contract-finder/internal/db"
	"github.com/david/contract-finder/internal/store"
)

func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	ledger := bids.NewLedger(store.NewPG(pool))
	records, err := ledger.List(ctx)
	if err != nil {
		log.Fatal(err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Title", "Agency", "Status", "Deadline", "Source"})

	for _, rec := range records {
		t.AppendRow(table.Row{rec.ID, rec.Title, rec.Agency, rec.Status, rec.Deadline, rec.Source})
	}
	t.Render()
}
