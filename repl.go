package pgframe

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

func listTables(ctx context.Context, db DB) {
	if m, ok := db.(*Memory); ok {
		names := m.Tables()
		if len(names) == 0 {
			fmt.Println("Did not find any relations.")
			return
		}
		f, err := NewFrame(Strings("name", names...))
		if err != nil {
			fmt.Println("Error listing tables:", err)
			return
		}
		f.Render(os.Stdout)
		return
	}

	f, err := db.Fetch(ctx, "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name")
	if err != nil {
		fmt.Println("Error listing tables:", err)
		return
	}
	if f != nil {
		f.Render(os.Stdout)
	}
}

func describeTable(ctx context.Context, db DB, name string) {
	// psql behavior is to display all if no name is specified.
	if name == "" {
		listTables(ctx, db)
		return
	}

	var f *Frame
	var err error
	if m, ok := db.(*Memory); ok {
		f, err = m.Describe(name)
	} else {
		f, err = db.Fetch(ctx,
			"SELECT column_name, data_type, is_nullable FROM information_schema.columns WHERE table_name = :table ORDER BY ordinal_position",
			Arg{Name: "table", Value: name})
	}
	if err != nil || f == nil || f.Height() == 0 {
		fmt.Printf("Did not find any relation named %q.\n", name)
		return
	}

	fmt.Printf("Table %q\n", name)
	f.Render(os.Stdout)
}

// RunRepl reads statements from the terminal and runs them against db.
// \dt lists tables, \d name describes one, quit/exit/\q leave.
func RunRepl(db DB) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "# ",
		HistoryFile:     "/tmp/pgframe-history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()

	ctx := context.Background()

	fmt.Println("Welcome to pgframe.")
repl:
	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				continue repl
			}
		} else if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Println("Error while reading line:", err)
			continue repl
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == "quit" || trimmed == "exit" || trimmed == "\\q" {
			break
		}

		if trimmed == "\\dt" {
			listTables(ctx, db)
			continue
		}

		if strings.HasPrefix(trimmed, "\\d") {
			name := strings.TrimSpace(trimmed[len("\\d"):])
			describeTable(ctx, db, name)
			continue
		}

		f, err := db.Fetch(ctx, line)
		if err != nil {
			fmt.Println("Error:", err)
			continue repl
		}

		if f == nil {
			fmt.Println("ok")
			continue
		}
		f.Render(os.Stdout)
	}
}
