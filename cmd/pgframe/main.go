package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/WolfEYc/pgframe"
)

func main() {
	_ = godotenv.Load()

	var db pgframe.DB
	if url := os.Getenv("DATABASE_URL"); url != "" {
		pg, err := pgframe.Open(context.Background(), url)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error connecting:", err)
			os.Exit(1)
		}
		defer pg.Close()
		db = pg
	} else {
		fmt.Println("DATABASE_URL is not set, using the in-memory engine.")
		db = pgframe.NewMemory()
	}

	pgframe.RunRepl(db)
}
