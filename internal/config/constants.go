package config

const (
	// DefaultPort is the port the HTTP server listens on.
	DefaultPort = 5000

	// DefaultDatabasePath is the default path for the application database.
	DefaultDatabasePath = "./backend-template.db"
)
