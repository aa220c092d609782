// chatctl is a command-line client for the chatbot backend. It keeps one
// login session per machine: the bearer token lives in a file under the
// user's home directory and every authenticated command rehydrates the
// session from it before calling the API.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/chatterbox/chatterbox-go/api"
	"github.com/chatterbox/chatterbox-go/chat"
	"github.com/chatterbox/chatterbox-go/files"
	"github.com/chatterbox/chatterbox-go/internal/config"
	"github.com/chatterbox/chatterbox-go/plugins"
	"github.com/chatterbox/chatterbox-go/session"
	"github.com/chatterbox/chatterbox-go/session/tokenrepo"
)

const usage = `usage: chatctl <command> [flags]

commands:
  login          authenticate and store the session token
  register       create a new account
  logout         clear the stored session
  whoami         show the logged-in user's profile
  profile        update profile fields (-email)
  passwd         change the account password
  chat           send a message (-c to continue a conversation)
  conversations  list, show, or delete conversations
  export         export a conversation (-format txt|json)
  upload         add a file to the knowledge base
  kb             list or delete knowledge-base documents
  plugins        list plugins or execute one
  health         check backend availability`

func main() {
	_ = godotenv.Load()

	args := os.Args[1:]
	if len(args) == 0 {
		displayAppname(config.New().GetAppName())
		fmt.Println(usage)
		os.Exit(2)
	}

	if err := dispatch(args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "chatctl: %s\n", err)
		os.Exit(1)
	}
}

func dispatch(command string, args []string) error {
	switch command {
	case "login":
		return runLogin(args)
	case "register":
		return runRegister(args)
	case "logout":
		return runLogout(args)
	case "whoami":
		return runWhoami(args)
	case "profile":
		return runProfile(args)
	case "passwd":
		return runPasswd(args)
	case "chat":
		return runChat(args)
	case "conversations":
		return runConversations(args)
	case "export":
		return runExport(args)
	case "upload":
		return runUpload(args)
	case "kb":
		return runKnowledgeBase(args)
	case "plugins":
		return runPlugins(args)
	case "health":
		return runHealth(args)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

// appEnv bundles the wired clients every command needs.
type appEnv struct {
	cfg   config.Config
	store *session.Store
	api   *api.Client
}

func newAppEnv() (*appEnv, error) {
	cfg := config.New()
	apiClient, err := api.New(cfg.GetBaseURL(), api.WithTimeout(cfg.GetRequestTimeout()))
	if err != nil {
		return nil, err
	}
	store, err := session.NewStore(apiClient, tokenrepo.New(cfg.GetTokenFile()))
	if err != nil {
		return nil, err
	}
	return &appEnv{cfg: cfg, store: store, api: apiClient}, nil
}

// requireSession rehydrates the stored token and fails when it does not
// yield an authenticated session.
func (e *appEnv) requireSession(ctx context.Context) error {
	if err := e.store.Initialize(ctx); err != nil {
		return err
	}
	if !e.store.IsAuthenticated() {
		return errors.New("not logged in, run `chatctl login` first")
	}
	return nil
}

func runLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("user", "", "username")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := newAppEnv()
	if err != nil {
		return err
	}
	name, err := requireValue(*username, "username")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	if err := env.store.Login(context.Background(), name, password); err != nil {
		return err
	}
	user := env.store.Current().User
	fmt.Printf("Logged in as %s\n", user.Username)
	return nil
}

func runRegister(args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	username := fs.String("user", "", "username")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := newAppEnv()
	if err != nil {
		return err
	}
	name, err := requireValue(*username, "username")
	if err != nil {
		return err
	}
	address, err := requireValue(*email, "email")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	reg := session.Registration{Username: name, Email: address, Password: password}
	if err := env.store.Register(context.Background(), reg); err != nil {
		return err
	}
	fmt.Printf("Account %s created. Run `chatctl login -user %s` to sign in.\n", name, name)
	return nil
}

func runLogout(_ []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}
	if err := env.store.Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

func runWhoami(_ []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := env.requireSession(ctx); err != nil {
		return err
	}

	user := env.store.Current().User
	fmt.Printf("Username:  %s\n", user.Username)
	if user.Email != "" {
		fmt.Printf("Email:     %s\n", user.Email)
	}
	if user.CreatedAt != "" {
		fmt.Printf("Created:   %s\n", user.CreatedAt)
	}
	if user.LastLogin != "" {
		fmt.Printf("Last seen: %s\n", user.LastLogin)
	}
	for key, value := range user.MemoryStats {
		fmt.Printf("%-10s %v\n", key+":", value)
	}
	return nil
}

func runProfile(args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	email := fs.String("email", "", "new email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("nothing to update, pass -email")
	}

	env, err := newAppEnv()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := env.requireSession(ctx); err != nil {
		return err
	}

	if err := env.store.UpdateProfile(ctx, map[string]any{"email": *email}); err != nil {
		return err
	}
	fmt.Println("Profile updated")
	return nil
}

func runPasswd(_ []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := env.requireSession(ctx); err != nil {
		return err
	}

	current, err := promptPassword("Current password: ")
	if err != nil {
		return err
	}
	next, err := promptPassword("New password: ")
	if err != nil {
		return err
	}

	if err := env.store.ChangePassword(ctx, current, next); err != nil {
		return err
	}
	fmt.Println("Password changed")
	return nil
}

func runChat(args []string) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	conversationID := fs.String("c", "", "conversation to continue")
	if err := fs.Parse(args); err != nil {
		return err
	}
	message := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if message == "" {
		return errors.New("usage: chatctl chat [-c conversation] <message>")
	}

	env, err := newAppEnv()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := env.requireSession(ctx); err != nil {
		return err
	}

	resp, err := chat.New(env.api).SendMessage(ctx, message, *conversationID)
	if err != nil {
		return err
	}
	fmt.Println(resp.Response)
	if *conversationID == "" && resp.ConversationID != "" {
		fmt.Printf("\n(conversation %s)\n", resp.ConversationID)
	}
	return nil
}

func runConversations(args []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := env.requireSession(ctx); err != nil {
		return err
	}
	client := chat.New(env.api)

	if len(args) == 0 || args[0] == "list" || strings.HasPrefix(args[0], "-") {
		fs := flag.NewFlagSet("conversations list", flag.ContinueOnError)
		limit := fs.Int("limit", 20, "maximum conversations to list")
		rest := args
		if len(rest) > 0 && rest[0] == "list" {
			rest = rest[1:]
		}
		if err := fs.Parse(rest); err != nil {
			return err
		}
		summaries, err := client.ListConversations(ctx, *limit)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No conversations")
			return nil
		}
		for _, c := range summaries {
			fmt.Printf("%s  %-40s %3d messages  %s\n", c.ID, c.Title, c.MessageCount, c.UpdatedAt)
		}
		return nil
	}

	switch args[0] {
	case "show":
		if len(args) < 2 {
			return errors.New("usage: chatctl conversations show <id>")
		}
		conversation, err := client.GetConversation(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%d messages)\n\n", conversation.Title, len(conversation.Messages))
		for _, m := range conversation.Messages {
			fmt.Printf("[%s] %s\n", m.Role, m.Content)
		}
		return nil
	case "rm":
		if len(args) < 2 {
			return errors.New("usage: chatctl conversations rm <id>")
		}
		if err := client.DeleteConversation(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("Conversation deleted")
		return nil
	default:
		return fmt.Errorf("unknown conversations subcommand: %s", args[0])
	}
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", "txt", "export format (txt or json)")
	output := fs.String("o", "", "write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: chatctl export [-format txt|json] [-o file] <conversation-id>")
	}

	env, err := newAppEnv()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := env.requireSession(ctx); err != nil {
		return err
	}

	data, err := chat.New(env.api).Export(ctx, fs.Arg(0), *format)
	if err != nil {
		return err
	}
	if *output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", *output)
	return nil
}

func runUpload(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: chatctl upload <file>")
	}

	env, err := newAppEnv()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := env.requireSession(ctx); err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	result, err := files.New(env.api).Upload(ctx, filepath.Base(args[0]), f)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s, %d bytes indexed)\n", result.Message, result.DocumentID, result.ContentLength)
	return nil
}

func runKnowledgeBase(args []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := env.requireSession(ctx); err != nil {
		return err
	}
	client := files.New(env.api)

	if len(args) == 0 || args[0] == "list" {
		documents, err := client.KnowledgeBase(ctx)
		if err != nil {
			return err
		}
		if len(documents) == 0 {
			fmt.Println("Knowledge base is empty")
			return nil
		}
		for _, d := range documents {
			fmt.Printf("%s\n  %s\n", d.ID, d.ContentPreview)
		}
		return nil
	}

	switch args[0] {
	case "rm":
		if len(args) < 2 {
			return errors.New("usage: chatctl kb rm <document-id>")
		}
		if err := client.DeleteDocument(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("Document deleted")
		return nil
	default:
		return fmt.Errorf("unknown kb subcommand: %s", args[0])
	}
}

func runPlugins(args []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}
	ctx := context.Background()
	client := plugins.New(env.api)

	if len(args) == 0 || args[0] == "list" {
		infos, err := client.List(ctx)
		if err != nil {
			return err
		}
		for _, p := range infos {
			fmt.Printf("%s %s\n  %s\n", p.Name, p.Version, p.Description)
			for _, example := range p.UsageExamples {
				fmt.Printf("  e.g. %s\n", example)
			}
		}
		return nil
	}

	switch args[0] {
	case "exec":
		fs := flag.NewFlagSet("plugins exec", flag.ContinueOnError)
		rawParams := fs.String("params", "", "JSON object of plugin parameters")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return errors.New("usage: chatctl plugins exec [-params '{...}'] <name>")
		}
		if err := env.requireSession(ctx); err != nil {
			return err
		}

		var params map[string]any
		if *rawParams != "" {
			if err := json.Unmarshal([]byte(*rawParams), &params); err != nil {
				return fmt.Errorf("invalid -params JSON: %w", err)
			}
		}
		result, err := client.Execute(ctx, fs.Arg(0), params)
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("plugin failed: %s", result.Error)
		}
		pretty, err := json.MarshalIndent(result.Data, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(pretty))
		return nil
	default:
		return fmt.Errorf("unknown plugins subcommand: %s", args[0])
	}
}

func runHealth(_ []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}
	health, err := env.api.Health(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", health.Status, env.cfg.GetBaseURL())
	for name, state := range health.Services {
		fmt.Printf("  %-10s %v\n", name, state)
	}
	return nil
}

func requireValue(value, name string) (string, error) {
	if strings.TrimSpace(value) != "" {
		return value, nil
	}
	return "", fmt.Errorf("-%s is required", name)
}

// promptPassword reads without echo on a terminal and falls back to a plain
// line read when stdin is piped.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
