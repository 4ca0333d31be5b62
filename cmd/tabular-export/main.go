// Command tabular-export runs one export job: it reads a form definition,
// paginates the stored submissions and writes them out as linked tables (one
// per repeating group) or as a single flat table, in CSV or XLSX.
package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/openrow/tabular/pkg/tabular/config"
	"github.com/openrow/tabular/pkg/tabular/export"
	"github.com/openrow/tabular/pkg/tabular/internalerr"
	"github.com/openrow/tabular/pkg/tabular/schema"
	"github.com/openrow/tabular/pkg/tabular/sink"
	"github.com/openrow/tabular/pkg/tabular/sink/csvsink"
	"github.com/openrow/tabular/pkg/tabular/sink/xlsxsink"
	"github.com/openrow/tabular/pkg/tabular/source"
	"github.com/openrow/tabular/pkg/tabular/source/sqlite"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML job definition (overrides the other flags)")
		dbPath     = flag.String("db", "submissions.db", "path to the submission store")
		schemaPath = flag.String("schema", "", "path to the YAML form definition")
		formUID    = flag.String("form", "", "form uid to export")
		mode       = flag.String("mode", config.ModeTables, "export mode: tables or flat")
		format     = flag.String("format", config.FormatCSV, "output format: csv or xlsx")
		output     = flag.String("out", "", "output path (directory for multi-table csv, file otherwise)")
		filter     = flag.String("filter", "", "opaque retrieval filter (JSON equality constraints)")
		delimiter  = flag.String("delimiter", export.DefaultGroupDelimiter, "column group delimiter")
		noSplit    = flag.Bool("no-split", false, "keep choice-multiple fields as their raw selection string")
		binary     = flag.Bool("binary", false, "render choice-multiple indicators as 1/0 instead of booleans")
		batchSize  = flag.Int("batch", 0, "retrieval batch size override")
		pageSize   = flag.Int("page", 0, "flat-mode page size override")
	)
	flag.Parse()

	job := &config.Job{
		Form:                  *formUID,
		Schema:                *schemaPath,
		Database:              *dbPath,
		Mode:                  *mode,
		Format:                *format,
		Output:                *output,
		Filter:                *filter,
		GroupDelimiter:        *delimiter,
		BinarySelectMultiples: *binary,
		BatchSize:             *batchSize,
		PageSize:              *pageSize,
	}
	if *noSplit {
		split := false
		job.SplitSelectMultiples = &split
	}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load job config: %v", err)
		}
		job = loaded
	} else if err := job.Validate(); err != nil {
		log.Fatalf("invalid job: %v", err)
	}

	ctx := context.Background()

	root, err := schema.Load(job.Schema)
	if err != nil {
		log.Fatalf("load form definition: %v", err)
	}

	db, err := sqlite.Open(ctx, job.Database)
	if err != nil {
		log.Fatalf("open submission store: %v", err)
	}
	defer db.Close()

	if err := run(ctx, job, root, db.Submissions(job.Form)); err != nil {
		if errors.Is(err, internalerr.ErrNoRecords) {
			log.Fatalf("no records found for form %q with filter %q", job.Form, job.Filter)
		}
		log.Fatalf("export failed: %v", err)
	}
	log.Printf("export complete: form=%s mode=%s format=%s out=%s", job.Form, job.Mode, job.Format, job.Output)
}

func run(ctx context.Context, job *config.Job, root *schema.Node, src source.Source) error {
	opts := job.Options()
	snk, err := openSink(job)
	if err != nil {
		return err
	}

	if job.Mode == config.ModeFlat {
		builder, buildErr := export.NewFlat(root, opts)
		if buildErr != nil {
			snk.Close()
			return buildErr
		}
		err = builder.ExportTo(ctx, src, source.Filter(job.Filter), snk)
	} else {
		builder, buildErr := export.NewMultiTable(root, opts)
		if buildErr != nil {
			snk.Close()
			return buildErr
		}
		if builder.ExceedsLimits() {
			log.Printf("WARNING: export exceeds spreadsheet limits (%d sections); consider a flat export", len(builder.Sections()))
		}
		err = builder.ExportTo(ctx, src, source.Filter(job.Filter), snk)
	}
	if err != nil {
		snk.Close()
		return err
	}
	return snk.Close()
}

func openSink(job *config.Job) (sink.TableSink, error) {
	if job.Format == config.FormatXLSX {
		return xlsxsink.New(job.Output), nil
	}
	if job.Mode == config.ModeTables {
		return csvsink.NewDir(job.Output)
	}
	return csvsink.Create(job.Output)
}
