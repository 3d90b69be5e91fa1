package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/BTreeMap/LeadFunnel/internal/api"
	"github.com/BTreeMap/LeadFunnel/internal/funnel"
	"github.com/BTreeMap/LeadFunnel/internal/genai"
	"github.com/BTreeMap/LeadFunnel/internal/lockfile"
	"github.com/BTreeMap/LeadFunnel/internal/messaging"
	"github.com/BTreeMap/LeadFunnel/internal/notify"
	"github.com/BTreeMap/LeadFunnel/internal/session"
	"github.com/BTreeMap/LeadFunnel/internal/store"
	"github.com/BTreeMap/LeadFunnel/internal/twiliowhatsapp"
	"github.com/BTreeMap/LeadFunnel/internal/util"
	"github.com/BTreeMap/LeadFunnel/internal/whatsapp"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for LeadFunnel state data
	DefaultStateDir = "/var/lib/leadfunnel"
	// DefaultDBFileName is the default SQLite database filename for the lead archive
	DefaultDBFileName = "leads.db"
	// DefaultWhatsAppDBFileName is the default SQLite database filename for the WhatsApp session
	DefaultWhatsAppDBFileName = "whatsmeow.db"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if *flags.operator == "" {
		slog.Error("Operator recipient not configured; set -operator or $OPERATOR_ID")
		os.Exit(1)
	}

	if err := run(flags); err != nil {
		slog.Error("LeadFunnel failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("LeadFunnel exited successfully")
}

// Config holds environment configuration
type Config struct {
	Channel     string
	DatabaseURL string
	StateDir    string
	OpenAIKey   string
	OpenAIModel string
	APIAddr     string
	OperatorID  string
}

// Flags holds command line flag values
type Flags struct {
	channel   *string
	qrOutput  *string
	numeric   *bool
	stateDir  *string
	dbDSN     *string
	openaiKey *string
	model     *string
	apiAddr   *string
	operator  *string
}

// initializeLogger sets up structured logging. Debug level is opt-in via
// $LEADFUNNEL_DEBUG.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("LEADFUNNEL_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		Channel:     os.Getenv("LEADFUNNEL_CHANNEL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StateDir:    os.Getenv("LEADFUNNEL_STATE_DIR"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: os.Getenv("OPENAI_MODEL"),
		APIAddr:     os.Getenv("API_ADDR"),
		OperatorID:  os.Getenv("OPERATOR_ID"),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No LEADFUNNEL_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.Channel == "" {
		config.Channel = "whatsapp"
	}
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"LEADFUNNEL_CHANNEL", config.Channel,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"LEADFUNNEL_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"OPERATOR_ID_SET", config.OperatorID != "")

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		channel:   flag.String("channel", config.Channel, "messaging channel: whatsapp or twilio (overrides $LEADFUNNEL_CHANNEL)"),
		qrOutput:  flag.String("qr-output", "", "path to write login QR code"),
		numeric:   flag.Bool("numeric-code", false, "use numeric login code instead of QR code"),
		stateDir:  flag.String("state-dir", config.StateDir, "state directory for LeadFunnel data (overrides $LEADFUNNEL_STATE_DIR)"),
		dbDSN:     flag.String("db-dsn", config.DatabaseURL, "database DSN for the lead archive (overrides $DATABASE_URL)"),
		openaiKey: flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		model:     flag.String("model", config.OpenAIModel, "OpenAI model for post-funnel chat (overrides $OPENAI_MODEL)"),
		apiAddr:   flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		operator:  flag.String("operator", config.OperatorID, "operator recipient for lead notifications (overrides $OPERATOR_ID)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"channel", *flags.channel,
		"qrOutput", *flags.qrOutput,
		"numeric", *flags.numeric,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"operatorSet", *flags.operator != "")

	return flags
}

// run wires the modules together and blocks until shutdown.
func run(flags Flags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lock, err := lockfile.Acquire(*flags.stateDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	msgService, err := buildMessagingService(flags)
	if err != nil {
		return err
	}
	defer msgService.Stop()

	archive, err := buildArchive(flags)
	if err != nil {
		return err
	}
	defer archive.Close()

	completer, err := buildCompleter(flags)
	if err != nil {
		return err
	}

	notifier, err := notify.NewMessengerNotifier(msgService, *flags.operator)
	if err != nil {
		return err
	}

	sessions := session.NewInMemoryStore()
	engine := funnel.NewEngine(sessions, msgService, completer, notifier, archive)
	orchestrator := funnel.NewOrchestrator(engine, msgService, sessions)

	if err := msgService.Start(ctx); err != nil {
		return err
	}
	orchestrator.Start(ctx)

	apiServer := api.NewServer(archive, buildAPIOptions(flags)...)
	apiServer.Start()

	slog.Info("LeadFunnel running", "channel", *flags.channel)
	<-ctx.Done()

	slog.Info("Shutdown signal received")
	return apiServer.Stop(context.Background())
}

// buildMessagingService constructs the configured messaging channel.
func buildMessagingService(flags Flags) (messaging.Service, error) {
	switch *flags.channel {
	case "twilio":
		client, err := twiliowhatsapp.NewClient()
		if err != nil {
			return nil, err
		}
		return messaging.NewTwilioService(client), nil
	default:
		client, err := whatsapp.NewClient(buildWhatsAppOptions(flags)...)
		if err != nil {
			return nil, err
		}
		return messaging.NewWhatsAppService(client), nil
	}
}

// buildWhatsAppOptions constructs WhatsApp configuration options
func buildWhatsAppOptions(flags Flags) []whatsapp.Option {
	waOpts := []whatsapp.Option{
		whatsapp.WithDBDSN(filepath.Join(*flags.stateDir, DefaultWhatsAppDBFileName)),
	}
	if *flags.qrOutput != "" {
		waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
	}
	if *flags.numeric {
		waOpts = append(waOpts, whatsapp.WithNumericCode())
	}
	return waOpts
}

// buildArchive constructs the lead archive for the configured DSN.
func buildArchive(flags Flags) (store.Store, error) {
	dsn := *flags.dbDSN
	if dsn == "" {
		slog.Debug("No database DSN provided, using in-memory lead archive")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(dsn) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL lead archive")
		return store.NewPostgresStore(store.WithPostgresDSN(dsn))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite lead archive", "db_path", dsn)
	return store.NewSQLiteStore(store.WithSQLiteDSN(dsn))
}

// buildCompleter constructs the GenAI client for post-funnel chat.
func buildCompleter(flags Flags) (*genai.Client, error) {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	if *flags.model != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.model))
	}
	return genai.NewClient(genaiOpts...)
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	return apiOpts
}
