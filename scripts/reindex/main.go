// Command reindex recomputes the derived ordering columns and the search
// text of every stored document. Run it after the department or subject
// rank tables change; uploads made before the change keep their old
// sequence codes until reindexed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/studyshelf/studyshelf-api/internal/models"
	"github.com/studyshelf/studyshelf-api/internal/sequence"
	"github.com/studyshelf/studyshelf-api/pkg/config"
	"github.com/studyshelf/studyshelf-api/pkg/database"
)

func main() {
	var (
		dryRun    bool
		batchSize int
		timeout   time.Duration
	)
	flag.BoolVar(&dryRun, "dry-run", false, "report changes without writing them")
	flag.IntVar(&batchSize, "batch", 500, "rows fetched per page")
	flag.DurationVar(&timeout, "timeout", 10*time.Minute, "overall run timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	changed, scanned, err := reindex(ctx, db, batchSize, dryRun)
	if err != nil {
		log.Fatalf("reindex failed after %d rows: %v", scanned, err)
	}

	mode := "updated"
	if dryRun {
		mode = "would update"
	}
	fmt.Printf("scanned %d documents, %s %d\n", scanned, mode, changed)
}

func reindex(ctx context.Context, db *sqlx.DB, batchSize int, dryRun bool) (changed, scanned int, err error) {
	offset := 0
	for {
		var page []models.Document
		err = db.SelectContext(ctx, &page,
			`SELECT id, department, subject_name, teacher_name, lecture_label,
			        department_order, subject_order, lecture_order, full_sequence, searchable_text
			 FROM documents ORDER BY id LIMIT $1 OFFSET $2`, batchSize, offset)
		if err != nil {
			return changed, scanned, err
		}
		if len(page) == 0 {
			return changed, scanned, nil
		}

		for _, doc := range page {
			scanned++
			subject := doc.SubjectName
			if doc.TeacherName != "" {
				subject = doc.SubjectName + " - " + doc.TeacherName
			}
			seq, buildErr := sequence.Build(doc.Department, subject, doc.LectureLabel)
			if buildErr != nil {
				// Rows whose selection no longer resolves keep their stored
				// ordering; they surface in the report instead of failing the run.
				fmt.Printf("%s: skipped (%v)\n", doc.ID, buildErr)
				continue
			}
			if seq.DepartmentOrder == doc.DepartmentOrder &&
				seq.SubjectOrder == doc.SubjectOrder &&
				seq.LectureOrder == doc.LectureOrder &&
				seq.FullSequence == doc.FullSequence &&
				seq.SearchableText == doc.SearchableText {
				continue
			}

			changed++
			if dryRun {
				fmt.Printf("%s: %s -> %s\n", doc.ID, doc.FullSequence, seq.FullSequence)
				continue
			}

			_, err = db.ExecContext(ctx,
				`UPDATE documents
				 SET department_order = $2, subject_order = $3, lecture_order = $4,
				     full_sequence = $5, tags = $6, searchable_text = $7, updated_at = NOW()
				 WHERE id = $1`,
				doc.ID, seq.DepartmentOrder, seq.SubjectOrder, seq.LectureOrder,
				seq.FullSequence, pq.Array(seq.Tags), seq.SearchableText)
			if err != nil {
				return changed, scanned, err
			}
		}

		offset += len(page)
	}
}
