package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/iliyamo/kodbank/internal/config"
	"github.com/iliyamo/kodbank/internal/database"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, version, force")
		steps   = flag.Int("steps", 0, "Number of migration steps (for up/down)")
		version = flag.Int("version", -1, "Target version (for force command)")
	)
	flag.Parse()

	cfg := config.LoadDatabase()

	mg, err := database.NewMigrator(cfg)
	if err != nil {
		log.Fatalf("migrator: %v", err)
	}
	defer mg.Close()

	switch *command {
	case "up":
		if *steps > 0 {
			err = mg.Steps(*steps)
		} else {
			err = mg.Up()
		}
		if err != nil {
			log.Fatalf("migration up failed: %v", err)
		}
		fmt.Println("migrations applied")
	case "down":
		if *steps > 0 {
			err = mg.Steps(-*steps)
		} else {
			err = mg.Down()
		}
		if err != nil {
			log.Fatalf("migration down failed: %v", err)
		}
		fmt.Println("migrations rolled back")
	case "version":
		v, dirty, err := mg.Version()
		if err != nil {
			log.Fatalf("failed to get version: %v", err)
		}
		if dirty {
			fmt.Printf("database is in a dirty state (version %d)\n", v)
			mg.Close()
			os.Exit(1)
		}
		fmt.Printf("current migration version: %d\n", v)
	case "force":
		if *version < 0 {
			log.Fatal("version required for force command (use -version flag)")
		}
		if err := mg.Force(*version); err != nil {
			log.Fatalf("force migration failed: %v", err)
		}
		fmt.Printf("forced database to version %d\n", *version)
	default:
		log.Fatalf("unknown command: %s (supported: up, down, version, force)", *command)
	}
}
