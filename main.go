package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jeffersontgc/anastore/internal/config"
	"github.com/jeffersontgc/anastore/internal/database"
	"github.com/jeffersontgc/anastore/internal/router"
	"github.com/jeffersontgc/anastore/internal/store"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	if err := ensureDir(cfg.Backup.Dir); err != nil {
		log.Fatalf("create backup dir: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// two-phase boot: build the empty store, then hydrate from the
	// last snapshot before the router starts serving reads
	st := store.New(store.NewDBSnapshotKV(db), cfg.Store.SnapshotName)
	if err := st.Hydrate(); err != nil {
		// a broken snapshot degrades to an empty store, keep going
		log.Printf("hydrate store: %v (starting empty)", err)
	}

	// setup router
	r := router.SetupRouter(cfg, db, st)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
