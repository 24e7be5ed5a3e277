// Command migrate manages the blog schema outside of server start-up.
//
//	migrate up       create or update tables
//	migrate status   report which tables exist
//	migrate -yes reset   drop every table and recreate it empty
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"inkwell/internal/config"
	"inkwell/internal/database"

	"gorm.io/gorm"
)

var commands = map[string]func(db *gorm.DB, confirmed bool) error{
	"up": func(db *gorm.DB, _ bool) error {
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("schema up to date")
		return nil
	},
	"status": func(db *gorm.DB, _ bool) error {
		for _, st := range database.SchemaStatus(db) {
			fmt.Printf("%-14s present=%t\n", st.Table, st.Present)
		}
		return nil
	},
	"reset": func(db *gorm.DB, confirmed bool) error {
		if !confirmed {
			return fmt.Errorf("reset deletes every user, post and comment; rerun with -yes")
		}
		if err := database.Reset(db); err != nil {
			return err
		}
		log.Println("schema reset")
		return nil
	},
}

func main() {
	yes := flag.Bool("yes", false, "confirm destructive commands")
	flag.Parse()

	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintln(os.Stderr, "usage: migrate [-yes] <up|status|reset>")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg.DBAutoMigrate = false

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := cmd(db, *yes); err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}
