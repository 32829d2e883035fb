package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/EmpoweredVote/Ledger-Backend/internal/todoclient"
	"github.com/EmpoweredVote/Ledger-Backend/internal/todos"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	doneStyle   = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	noteStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#7f849c"))
	tagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
)

const usage = `usage: todo [flags] <command> [args]

commands:
  list                            print today and the backlog
  add [-tag T] <text>             add a task for today
  done <id>                       toggle completion
  edit [-tag T] <id> <text>       change the task text and tag
  rm <id>                         delete a task
  move <id> <YYYY-MM-DD|backlog>  reschedule a task
  reorder <YYYY-MM-DD|backlog> <from> <to>
`

func main() {
	_ = godotenv.Load(".env.local")
	logging.Init()

	apiURL := flag.String("api", os.Getenv("TODO_API_URL"), "todos API root, e.g. http://localhost:5050/todos")
	token := flag.String("token", os.Getenv("TODO_TOKEN"), "bearer token")
	day := flag.String("today", "", "override today's date (YYYY-MM-DD)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if *apiURL == "" || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	today := normalize.Today(nil)
	if *day != "" {
		d, err := normalize.ParseDate(*day)
		if err != nil {
			fail(err)
		}
		today = d
	}

	ctx := context.Background()
	board := todoclient.NewBoard(ctx, todoclient.NewClient(*apiURL, *token), today)
	if err := board.Load(ctx); err != nil {
		fail(err)
	}

	if err := run(board, today, flag.Arg(0), flag.Args()[1:]); err != nil {
		fail(err)
	}

	board.Wait()
	failed := false
	for {
		select {
		case ev := <-board.Events():
			fmt.Fprintln(os.Stderr, errStyle.Render(fmt.Sprintf("%s failed: %v", ev.Mutation, ev.Err)))
			failed = true
			continue
		default:
		}
		break
	}
	if failed {
		os.Exit(1)
	}
}

func run(board *todoclient.Board, today normalize.Date, cmd string, args []string) error {
	switch cmd {
	case "list":
		printBoard(board, today)
		return nil

	case "add":
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		tag := fs.String("tag", "", "project tag")
		fs.Parse(args)
		id, err := board.Add(strings.Join(fs.Args(), " "), *tag)
		if err != nil {
			return err
		}
		fmt.Println("queued", id)
		return nil

	case "done":
		if len(args) != 1 {
			return fmt.Errorf("done needs an id")
		}
		return board.Toggle(args[0])

	case "edit":
		fs := flag.NewFlagSet("edit", flag.ExitOnError)
		tag := fs.String("tag", "", "project tag; empty clears it")
		fs.Parse(args)
		if fs.NArg() < 2 {
			return fmt.Errorf("edit needs an id and text")
		}
		return board.Edit(fs.Arg(0), strings.Join(fs.Args()[1:], " "), *tag)

	case "rm":
		if len(args) != 1 {
			return fmt.Errorf("rm needs an id")
		}
		return board.Delete(args[0])

	case "move":
		if len(args) != 2 {
			return fmt.Errorf("move needs an id and a date")
		}
		due, err := parseBucket(args[1])
		if err != nil {
			return err
		}
		return board.MoveDate(args[0], due)

	case "reorder":
		if len(args) != 3 {
			return fmt.Errorf("reorder needs a bucket and two positions")
		}
		due, err := parseBucket(args[0])
		if err != nil {
			return err
		}
		from, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[1])
		}
		to, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[2])
		}
		return board.Reorder(due, from, to)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

// parseBucket reads a due date; "backlog" means undated.
func parseBucket(s string) (*normalize.Date, error) {
	if strings.EqualFold(s, "backlog") {
		return nil, nil
	}
	d, err := normalize.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func printBoard(board *todoclient.Board, today normalize.Date) {
	fmt.Println(headerStyle.Render(fmt.Sprintf("Today (%s)", today)))
	for i, t := range board.Bucket(&today) {
		printTodo(i, t)
	}
	fmt.Println(headerStyle.Render("Backlog"))
	for i, t := range board.Bucket(nil) {
		printTodo(i, t)
	}
}

func printTodo(pos int, t todos.Todo) {
	if t.IsContext() {
		fmt.Printf("  %d %s\n", pos, noteStyle.Render(strings.TrimPrefix(t.Task, todos.ContextPrefix)))
		return
	}
	mark, task := " ", t.Task
	if t.Status {
		mark, task = "x", doneStyle.Render(t.Task)
	}
	tag := ""
	if t.ProjectTag != nil {
		tag = " " + tagStyle.Render("#"+*t.ProjectTag)
	}
	fmt.Printf("  %d [%s] %s%s  (%s)\n", pos, mark, task, tag, t.ID)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, errStyle.Render("todo: "+err.Error()))
	os.Exit(1)
}
