package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	tea "charm.land/bubbletea/v2"

	"blogdeck/internal/app"
	"blogdeck/internal/config"
	"blogdeck/internal/logging"
	"blogdeck/internal/store"
	"blogdeck/internal/types"
)

const usageText = `blogdeck manages your connected blogs from the terminal.

Usage:
  blogdeck <command> [flags]

Commands:
  ui       run the terminal UI (default)
  list     list connected blogs
  add      connect a blog
  remove   disconnect a blog
  login    sign in with a platform account
  logout   sign out
  help     show help

Examples:
  blogdeck add --id b1 --name "My Blog" --url https://my.blog --admin
  blogdeck login --account acct1 --username pat
  blogdeck ui
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	command := "ui"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	var err error
	switch command {
	case "ui":
		err = runUI(args)
	case "list":
		err = runList(args)
	case "add":
		err = runAdd(args)
	case "remove":
		err = runRemove(args)
	case "login":
		err = runLogin(args)
	case "logout":
		err = runLogout(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "blogdeck: %v\n", err)
		os.Exit(1)
	}
}

func openRepository() (store.Repository, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, err
	}
	dbPath, err := cfg.ResolveDatabasePath()
	if err != nil {
		return nil, config.Config{}, err
	}
	repo, err := store.NewBboltRepository(dbPath)
	if err != nil {
		return nil, config.Config{}, err
	}
	return repo, cfg, nil
}

func runUI(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	repo, cfg, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	logPath, err := cfg.ResolveLogPath()
	if err != nil {
		return err
	}
	logger, closer, err := logging.NewFile(logPath, logging.ParseLevel(cfg.LogLevel()))
	if err != nil {
		logger = logging.Nop()
	} else {
		defer closer.Close()
	}

	program := tea.NewProgram(app.NewModel(repo, logger, cfg.UnreadInterval()))
	_, err = program.Run()
	return err
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	repo, _, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	blogs, err := repo.Blogs().List(context.Background())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tURL\tADMIN")
	for _, blog := range blogs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", blog.ID, blog.Name, blog.URL, blog.Admin)
	}
	return w.Flush()
}

func runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	id := fs.String("id", "", "blog id")
	name := fs.String("name", "", "display name")
	url := fs.String("url", "", "site address")
	account := fs.String("account", "", "owning platform account id")
	admin := fs.Bool("admin", false, "viewer is an admin of this blog")
	private := fs.Bool("private", false, "blog is private")
	themes := fs.Bool("themes", false, "blog supports themes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	repo, _, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	_, err = repo.Blogs().Put(context.Background(), &types.Blog{
		ID:             *id,
		Name:           *name,
		URL:            *url,
		AccountID:      *account,
		Admin:          *admin,
		Private:        *private,
		SupportsThemes: *themes,
	})
	return err
}

func runRemove(args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	id := fs.String("id", "", "blog id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	repo, _, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()
	return repo.Blogs().Delete(context.Background(), *id)
}

func runLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	account := fs.String("account", "", "platform account id")
	username := fs.String("username", "", "display username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	repo, _, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()
	return repo.Sessions().SetSession(context.Background(), &types.Session{
		AccountID: *account,
		Username:  *username,
	})
}

func runLogout(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	repo, _, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()
	return repo.Sessions().ClearSession(context.Background())
}
