package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/backend-template/internal/audit"
	"github.com/mrlokans/backend-template/internal/auth"
	"github.com/mrlokans/backend-template/internal/config"
	"github.com/mrlokans/backend-template/internal/database"
	auditrepo "github.com/mrlokans/backend-template/internal/database/audit"
	usersrepo "github.com/mrlokans/backend-template/internal/database/users"
	"github.com/mrlokans/backend-template/internal/entities"
	"github.com/mrlokans/backend-template/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "create-user":
		if err := runCreateUser(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "version":
		fmt.Printf("backend-template %s (%s)\n", Version, Commit)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// runCreateUser registers a user from the command line, bypassing the
// HTTP surface. Useful for bootstrapping a fresh database.
func runCreateUser(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	username := fs.String("username", "", "username for the new account (required)")
	password := fs.String("password", "", "password for the new account (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" || *password == "" {
		fs.Usage()
		return fmt.Errorf("both -username and -password are required")
	}

	cfg := config.NewConfig()
	logger := entrypoint.NewLogger(cfg.Log)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Token service is unused for registration; a throwaway secret is fine here.
	tokens := auth.NewTokenService("unused", cfg.Auth.TokenExpiry)
	service, err := auth.NewService(usersrepo.NewRepository(db.DB), tokens, cfg.Auth)
	if err != nil {
		return err
	}

	user, err := service.Register(*username, *password)
	if err != nil {
		return err
	}

	auditService := audit.NewService(auditrepo.NewRepository(db.DB), logger)
	if logErr := auditService.Log(&entities.AuthEvent{
		UserID:   user.ID,
		Username: user.Username,
		Action:   entities.AuthActionRegister,
		Status:   entities.AuditStatusSuccess,
	}); logErr != nil {
		logger.Warn("failed to record auth event", "error", logErr)
	}

	fmt.Printf("User created: %s (%s)\n", user.Username, user.ID)
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve         Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  create-user   Create a user account directly in the database\n")
	fmt.Fprintf(os.Stderr, "  version       Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
