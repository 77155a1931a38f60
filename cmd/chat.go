package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kodahr27/ollama-chat-app/pkg/history"
	"github.com/kodahr27/ollama-chat-app/pkg/llm"
	"github.com/kodahr27/ollama-chat-app/pkg/parser"
	"github.com/kodahr27/ollama-chat-app/pkg/patch"
	"github.com/kodahr27/ollama-chat-app/pkg/project"
	"github.com/kodahr27/ollama-chat-app/pkg/utils"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive terminal chat session",
	Long: `Starts an interactive chat with the configured Ollama model. Assistant
replies are parsed for file artifacts and search/replace edits once each
reply completes.

Slash commands:
  /files          list project files
  /show <path>    print a project file
  /edits          list pending edits from the last reply
  /diff <n>       preview pending edit n against its resolved file
  /apply <n>      apply pending edit n
  /import <dir>   import workspace files into the project
  /quit           exit`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	logger := utils.GetLogger()
	cfg, client, err := loadConfigAndClient(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if err := client.CheckConnection(ctx); err != nil {
		return err
	}

	store, err := project.OpenStore(cfg.ProjectDB())
	if err != nil {
		return err
	}
	defer store.Close()

	convs, err := history.OpenStore(cfg.HistoryDB())
	if err != nil {
		return err
	}
	defer convs.Close()

	conv, err := convs.CreateConversation(ctx, "terminal session", client.Model())
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Printf("Chatting with %s. /quit to exit, /edits for pending edits.\n", client.Model())
	}

	var messages []llm.Message
	var pending []parser.EditGroup

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit, err := runSlashCommand(cmd, input, store, &pending)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}

		messages = append(messages, llm.Message{Role: "user", Content: input})
		if _, err := convs.AppendMessage(ctx, conv.ID, "user", input); err != nil {
			logger.LogError(err)
		}

		full, err := client.Stream(ctx, messages, func(chunk string) {
			fmt.Print(chunk)
		})
		fmt.Println()
		if err != nil {
			fmt.Fprintf(os.Stderr, "chat error: %v\n", err)
			messages = messages[:len(messages)-1]
			continue
		}

		messages = append(messages, llm.Message{Role: "assistant", Content: full})
		if _, err := convs.AppendMessage(ctx, conv.ID, "assistant", full); err != nil {
			logger.LogError(err)
		}

		resp := parser.Parse(full)
		if len(resp.Artifacts) > 0 {
			added, err := store.AddParsed(ctx, project.DefaultProject, resp.Artifacts)
			if err != nil {
				logger.LogError(err)
			}
			fmt.Printf("[%d file(s) added to project]\n", added)
		}
		if len(resp.Edits) > 0 {
			pending = resp.Edits
			for i, e := range resp.Edits {
				fmt.Printf("[edit %d: %s, %d op(s) — /diff %d to preview, /apply %d to apply]\n",
					i+1, e.Path, len(e.Operations), i+1, i+1)
			}
		}
	}
}

func runSlashCommand(cmd *cobra.Command, input string, store *project.Store, pending *[]parser.EditGroup) (bool, error) {
	ctx := cmd.Context()
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/exit", "/q":
		return true, nil

	case "/files":
		artifacts, err := store.List(ctx, project.DefaultProject)
		if err != nil {
			return false, err
		}
		if len(artifacts) == 0 {
			fmt.Println("no project files")
			return false, nil
		}
		for _, a := range artifacts {
			fmt.Printf("  %s [%s, %d bytes, by %s]\n",
				a.Path, utils.DisplayLanguage(a.Language), len(a.Content), a.CreatedBy)
		}

	case "/show":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /show <path>")
		}
		a, ok, err := store.Get(ctx, project.DefaultProject, fields[1])
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("no such file: %s", fields[1])
		}
		fmt.Println(a.Content)

	case "/edits":
		if len(*pending) == 0 {
			fmt.Println("no pending edits")
			return false, nil
		}
		for i, e := range *pending {
			fmt.Printf("  %d: %s (%d op(s))\n", i+1, e.Path, len(e.Operations))
		}

	case "/diff", "/apply":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: %s <n>", fields[0])
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || n > len(*pending) {
			return false, fmt.Errorf("no pending edit %s", fields[1])
		}
		edit := (*pending)[n-1]

		artifacts, err := store.List(ctx, project.DefaultProject)
		if err != nil {
			return false, err
		}
		// Target resolution is recomputed each time; the file set may have
		// changed since the edit was parsed.
		target := project.ResolveTarget(artifacts, edit.Path)
		if target == nil {
			return false, fmt.Errorf("no project file matches %q", edit.Path)
		}

		result := patch.ApplyAll(target.Content, edit.Operations)
		if fields[0] == "/diff" {
			fmt.Print(patch.Preview(target.Path, target.Content, result.Result))
			fmt.Printf("[%s]\n", result.Summary())
			return false, nil
		}
		if result.AppliedCount > 0 {
			updated := *target
			updated.Content = result.Result
			if err := store.Upsert(ctx, project.DefaultProject, updated); err != nil {
				return false, err
			}
		}
		fmt.Printf("%s: %s\n", target.Path, result.Summary())
		for _, f := range result.Failed {
			fmt.Printf("  op %d failed: %s (search: %q)\n", f.Index+1, f.Reason, f.SearchPreview)
		}

	case "/import":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /import <dir>")
		}
		n, err := project.ImportWorkspace(ctx, store, project.DefaultProject, fields[1], parser.InferLanguage)
		if err != nil {
			return false, err
		}
		fmt.Printf("imported %d file(s)\n", n)

	default:
		return false, fmt.Errorf("unknown command %s", fields[0])
	}
	return false, nil
}
