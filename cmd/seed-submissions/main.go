// Command seed-submissions fills the submission store with generated sample
// data for a form definition, for trying out exports locally.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/openrow/tabular/pkg/tabular/record"
	"github.com/openrow/tabular/pkg/tabular/schema"
	"github.com/openrow/tabular/pkg/tabular/source/sqlite"
)

func main() {
	var (
		dbPath     = flag.String("db", "submissions.db", "path to the submission store")
		schemaPath = flag.String("schema", "", "path to the YAML form definition")
		formUID    = flag.String("form", "", "form uid to seed")
		count      = flag.Int("count", 100, "number of submissions to generate")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	)
	flag.Parse()

	if *schemaPath == "" || *formUID == "" {
		log.Fatal("both -schema and -form are required")
	}

	root, err := schema.Load(*schemaPath)
	if err != nil {
		log.Fatalf("load form definition: %v", err)
	}

	ctx := context.Background()
	db, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open submission store: %v", err)
	}
	defer db.Close()

	rng := rand.New(rand.NewSource(*seed))
	for i := 0; i < *count; i++ {
		doc := generate(root, rng)
		if _, err := db.Insert(ctx, *formUID, doc); err != nil {
			log.Fatalf("store submission %d: %v", i, err)
		}
	}
	log.Printf("seeded %d submissions for form %s into %s", *count, *formUID, *dbPath)
}

// generate builds one submission document for the form, with 0-3 occurrences
// per repeating group.
func generate(root *schema.Node, rng *rand.Rand) record.Document {
	doc := record.Document{}
	fillValues(doc, root, rng)
	doc[record.FieldValidationStatus] = pick(rng, "validation_status_approved", "validation_status_not_approved", "")
	if rng.Intn(4) == 0 {
		doc[record.FieldTags] = []any{"follow-up", "priority"}
	}
	return doc
}

func fillValues(doc record.Document, node *schema.Node, rng *rand.Rand) {
	for _, child := range node.Children {
		switch child.Kind {
		case schema.KindGroup:
			fillValues(doc, child, rng)
		case schema.KindRepeat:
			n := rng.Intn(4)
			occurrences := make([]any, 0, n)
			for i := 0; i < n; i++ {
				nested := record.Document{}
				fillValues(nested, child, rng)
				occurrences = append(occurrences, map[string]any(nested))
			}
			if len(occurrences) > 0 {
				doc[child.Path] = occurrences
			}
		case schema.KindSelectMultiple:
			var selected []string
			for _, opt := range child.Children {
				if rng.Intn(2) == 0 {
					selected = append(selected, opt.Name)
				}
			}
			if len(selected) > 0 {
				doc[child.Path] = strings.Join(selected, " ")
			}
		case schema.KindQuestion:
			if child.Excluded() || rng.Intn(5) == 0 {
				continue // leave some responses uncaptured
			}
			doc[child.Path] = sampleValue(child, rng)
		}
	}
}

func sampleValue(n *schema.Node, rng *rand.Rand) any {
	switch n.Type {
	case "integer":
		return rng.Intn(100)
	case "decimal":
		return float64(rng.Intn(10000)) / 100
	case "date":
		return time.Now().AddDate(0, 0, -rng.Intn(365)).Format("2006-01-02")
	case schema.GeopointBindType:
		return fmt.Sprintf("%.6f %.6f %.1f %.1f",
			rng.Float64()*180-90, rng.Float64()*360-180, rng.Float64()*500, rng.Float64()*30)
	default:
		return pick(rng, "alpha", "beta", "gamma", "delta")
	}
}

func pick(rng *rand.Rand, values ...string) string {
	return values[rng.Intn(len(values))]
}
