// Command reextract is the operational batch tool for the extraction
// pipeline. It requeues failed documents, resets documents stuck in
// processing (worker died mid-job), drains everything pending, and can
// ingest a drop directory of record files for a pet, optionally watching it
// for new arrivals.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shouniet/medpetrx/models"
	"github.com/shouniet/medpetrx/pkg/extract"
	"github.com/shouniet/medpetrx/pkg/llm"
)

var db *gorm.DB

var verbose bool

func main() {
	failed := flag.Bool("failed", false, "Requeue documents in failed state")
	stuckMinutes := flag.Int("stuck-minutes", 30, "Reset documents stuck in processing longer than this (0 disables)")
	dirFlag := flag.String("dir", "", "Drop directory to ingest record files from (requires -pet-id)")
	petID := flag.Uint("pet-id", 0, "Pet to attach ingested documents to")
	watch := flag.Bool("watch", false, "Watch the drop directory for new files")
	workers := flag.Int("workers", 0, "Worker pool size (default NumCPU)")
	dryRun := flag.Bool("dry-run", false, "List what would be processed without touching the DB")
	flag.BoolVar(&verbose, "verbose", false, "Verbose per-document logging")
	flag.Parse()

	if *dirFlag != "" && *petID == 0 && !*dryRun {
		log.Fatalf("-dir requires -pet-id")
	}
	if *dryRun && *dirFlag != "" {
		files := listDocumentFiles(*dirFlag)
		log.Printf("Dry-run: %d candidate files in %s", len(files), *dirFlag)
		for _, f := range files {
			log.Printf("  %s", f)
		}
		return
	}

	db = mustInitDBFromEnv()

	var fallback extract.Fallback
	client := llm.NewClient(llm.ConfigFromEnv())
	if client.Configured() {
		fallback = client
	}
	svc := extract.NewService(db, fallback)

	if *stuckMinutes > 0 {
		resetStuck(time.Duration(*stuckMinutes) * time.Minute)
	}
	if *failed {
		requeueFailed()
	}
	if *dirFlag != "" {
		ingestDirectory(*dirFlag, *petID)
	}

	ids := pendingDocumentIDs()
	log.Printf("Processing %d pending documents (workers=%d)", len(ids), effectiveWorkers(*workers))
	runWorkerPool(svc, ids, effectiveWorkers(*workers))

	if *watch {
		if *dirFlag == "" {
			log.Fatalf("-watch requires -dir")
		}
		if err := watchDirectory(*dirFlag, *petID, svc, effectiveWorkers(*workers)); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

// resetStuck returns long-running processing documents to pending. A stuck
// row usually means a worker was killed mid-job; pending lets this run pick
// it up again.
func resetStuck(age time.Duration) {
	cutoff := time.Now().Add(-age)
	res := db.Model(&models.Document{}).
		Where("extraction_status = ? AND updated_at < ?", models.ExtractionProcessing, cutoff).
		Update("extraction_status", models.ExtractionPending)
	if res.Error != nil {
		log.Printf("ERROR resetting stuck documents: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Reset %d stuck documents to pending", res.RowsAffected)
	}
}

func requeueFailed() {
	res := db.Model(&models.Document{}).
		Where("extraction_status = ?", models.ExtractionFailed).
		Updates(map[string]any{
			"extraction_status": models.ExtractionPending,
			"extracted_data":    nil,
		})
	if res.Error != nil {
		log.Printf("ERROR requeueing failed documents: %v", res.Error)
		return
	}
	log.Printf("Requeued %d failed documents", res.RowsAffected)
}

func pendingDocumentIDs() []uint {
	var ids []uint
	if err := db.Model(&models.Document{}).
		Where("extraction_status = ?", models.ExtractionPending).
		Order("id").Pluck("id", &ids).Error; err != nil {
		log.Printf("ERROR listing pending documents: %v", err)
	}
	return ids
}

var supportedExts = map[string]bool{".pdf": true, ".jpg": true, ".jpeg": true, ".png": true}

func isSupportedExt(name string) bool {
	// ignore OCR temp files to avoid recursive processing
	if strings.Contains(name, ".ocr.") {
		return false
	}
	return supportedExts[strings.ToLower(filepath.Ext(name))]
}

func listDocumentFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

// ingestDirectory creates pending document rows for files not yet known by
// path. Idempotent across runs: the stored file path is the dedupe key.
func ingestDirectory(dir string, petID uint) {
	var pet models.Pet
	if err := db.First(&pet, petID).Error; err != nil {
		log.Fatalf("pet %d not found: %v", petID, err)
	}
	for _, name := range listDocumentFiles(dir) {
		ingestFile(dir, name, petID)
	}
}

func ingestFile(dir, name string, petID uint) {
	fullPath := filepath.Join(dir, name)
	var existing models.Document
	if err := db.Where("file_path = ?", fullPath).First(&existing).Error; err == nil {
		logV("SKIP already ingested %s", name)
		return
	}
	doc := models.Document{
		PetID:            petID,
		Filename:         name,
		FilePath:         fullPath,
		ExtractionStatus: models.ExtractionPending,
	}
	if err := db.Create(&doc).Error; err != nil {
		log.Printf("ERROR create document %s: %v", name, err)
		return
	}
	log.Printf("NEW document id=%d file=%s", doc.ID, name)
}

// runWorkerPool drains the given document ids, then any ids arriving on the
// extra channels (watch mode keeps those open forever).
func runWorkerPool(svc *extract.Service, initial []uint, workers int, extraCh ...<-chan uint) {
	idCh := make(chan uint, 1024)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range idCh {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if err := svc.Process(ctx, id); err != nil {
					log.Printf("document %d failed: %v", id, err)
				} else {
					logV("document %d done", id)
				}
				cancel()
			}
		}()
	}
	go func() {
		for _, id := range initial {
			idCh <- id
		}
		for _, ch := range extraCh {
			go func(c <-chan uint) {
				for id := range c {
					idCh <- id
				}
			}(ch)
		}
		if len(extraCh) == 0 {
			close(idCh)
		}
	}()
	if len(extraCh) == 0 {
		wg.Wait()
	}
}

func watchDirectory(dir string, petID uint, svc *extract.Service, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	idCh := make(chan uint, 256)
	go func() {
		// debounce map so half-written files settle before ingest
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(idCh)
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create || ev.Op&fsnotify.Write == fsnotify.Write {
					name := filepath.Base(ev.Name)
					if !isSupportedExt(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						delete(pending, name)
						ingestFile(dir, name, petID)
						var doc models.Document
						if err := db.Where("file_path = ? AND extraction_status = ?",
							filepath.Join(dir, name), models.ExtractionPending).First(&doc).Error; err == nil {
							idCh <- doc.ID
						}
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(idCh)
					return
				}
				log.Printf("watch error: %v", err)
			}
		}
	}()

	go runWorkerPool(svc, nil, workers, idCh)
	// block forever (Ctrl+C to exit)
	select {}
}
