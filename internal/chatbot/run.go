package chatbot

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Run starts the interactive chat loop on stdin/stdout. It is the inbound
// surface that feeds HandleMessage; any other front end (an HTTP router, a
// bot adapter) composes the same ChatBot methods.
func (cb *ChatBot) Run() error {
	active := cb.store.DefaultID()

	fmt.Println("=== ChatPilot ===")
	fmt.Printf("Session: %s\n", active)
	fmt.Printf("Model: %s\n", cb.config.Model)
	fmt.Println("Type /help for commands, /quit to exit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldQuit, err := cb.handleCommand(input, &active)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				cb.logger.Error("command error", "error", err)
			}
			if shouldQuit {
				break
			}
			continue
		}

		result, err := cb.HandleMessage(ctx, active, input)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			cb.logger.Error("failed to handle message", "error", err)
			continue
		}

		fmt.Printf("Bot: %s\n", result.Reply)
		fmt.Printf("Try: %s\n\n", strings.Join(result.Suggestions, " | "))
	}

	fmt.Println("Goodbye!")
	return nil
}

// handleCommand handles special commands. active is the session the loop is
// currently talking to.
func (cb *ChatBot) handleCommand(cmd string, active *string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false, nil
	}

	switch parts[0] {
	case "/quit", "/exit":
		return true, nil

	case "/new":
		title := strings.TrimSpace(strings.TrimPrefix(cmd, "/new"))
		summary := cb.CreateSession(title)
		*active = summary.ID
		fmt.Printf("Started session %q (%s)\n", summary.Title, summary.ID)
		return false, nil

	case "/sessions":
		fmt.Println("\nSessions (most recent first):")
		for i, s := range cb.ListSessions() {
			marker := ""
			if s.ID == *active {
				marker = " (current)"
			}
			fmt.Printf("%d. %s - %s%s\n", i+1, s.ID, s.Title, marker)
		}
		fmt.Println()
		return false, nil

	case "/switch":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /switch <session-id>")
		}
		if _, err := cb.History(parts[1]); err != nil {
			return false, err
		}
		*active = parts[1]
		fmt.Printf("Switched to session %s\n", parts[1])
		return false, nil

	case "/history":
		history, err := cb.History(*active)
		if err != nil {
			return false, err
		}
		fmt.Println()
		for _, msg := range history {
			fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Format("15:04:05"), msg.Role, msg.Text)
		}
		fmt.Println()
		return false, nil

	case "/help":
		fmt.Println("Available commands:")
		fmt.Println("  /quit, /exit          - Exit the chat")
		fmt.Println("  /new [title]          - Start a new session")
		fmt.Println("  /sessions             - List sessions, most recent first")
		fmt.Println("  /switch <session-id>  - Talk to another session")
		fmt.Println("  /history              - Show the current session's history")
		fmt.Println("  /help                 - Show this help message")
		return false, nil

	default:
		return false, nil
	}
}
