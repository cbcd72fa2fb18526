package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/forgeworks/crmapi/internal/adapters/events"
	"github.com/forgeworks/crmapi/internal/adapters/httpapi"
	sqliteadapter "github.com/forgeworks/crmapi/internal/adapters/sqlite"
	"github.com/forgeworks/crmapi/internal/adapters/sqlite/gormsqlite"
	"github.com/forgeworks/crmapi/internal/core/domain"
	"github.com/forgeworks/crmapi/internal/core/ports"
	"github.com/forgeworks/crmapi/internal/core/usecase"
	"github.com/forgeworks/crmapi/migrations"
)

type Config struct {
	Addr      string
	DBPath    string
	JWTSecret string

	// Optional first dashboard user, created at startup when no user with
	// that email exists yet.
	AdminEmail    string
	AdminPassword string
	AdminName     string

	WebhookURL    string
	WebhookSecret string
}

type resourceCloser struct {
	closers []io.Closer
}

func (r resourceCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewServer(ctx context.Context, cfg Config) (*http.Server, io.Closer, error) {
	db, err := gormsqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	writeSQLDB, err := db.WriteSQLDB()
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("resolve writer sql db: %w", err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := migrations.Up(migrateCtx, writeSQLDB); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	userRepo := sqliteadapter.NewUserRepository(db)
	apiKeyRepo := sqliteadapter.NewAPIKeyRepository(db)
	leadRepo := sqliteadapter.NewLeadRepository(db)
	clientRepo := sqliteadapter.NewClientRepository(db)
	contractRepo := sqliteadapter.NewContractRepository(db)
	projectRepo := sqliteadapter.NewProjectRepository(db)
	internalProjectRepo := sqliteadapter.NewInternalProjectRepository(db)
	taskRepo := sqliteadapter.NewTaskRepository(db)
	storyRepo := sqliteadapter.NewStoryRepository(db)
	memberRepo := sqliteadapter.NewMemberRepository(db)
	meetingRepo := sqliteadapter.NewMeetingRepository(db)
	suggestionRepo := sqliteadapter.NewSuggestionRepository(db)
	transactionRepo := sqliteadapter.NewTransactionRepository(db)
	outboxRepo := sqliteadapter.NewOutboxRepository(db)

	authService, err := usecase.NewAuthService(userRepo, apiKeyRepo, cfg.JWTSecret)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	leadService, err := usecase.NewLeadService(leadRepo, clientRepo)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	var publisher ports.EventPublisher = events.NewLogPublisher()
	if cfg.WebhookURL != "" {
		publisher = events.NewWebhookPublisher(cfg.WebhookURL, cfg.WebhookSecret, 0)
	}
	dispatcher := usecase.NewNotifyDispatcher(outboxRepo, publisher, 2*time.Second, 100)
	dispatcher.Start(context.Background())

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		name := cfg.AdminName
		if name == "" {
			name = "admin"
		}
		bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := authService.Register(bootstrapCtx, cfg.AdminEmail, cfg.AdminPassword, name, nil)
		bootstrapCancel()
		if err != nil && !errors.Is(err, domain.ErrConflict) {
			_ = dispatcher.Close()
			_ = db.Close()
			return nil, nil, fmt.Errorf("bootstrap admin user: %w", err)
		}
	}

	handler := httpapi.NewHandler(httpapi.Services{
		Auth:             authService,
		Leads:            leadService,
		Clients:          usecase.NewClientService(clientRepo),
		Contracts:        usecase.NewContractService(contractRepo, clientRepo),
		Projects:         usecase.NewProjectService(projectRepo, clientRepo),
		InternalProjects: usecase.NewInternalProjectService(internalProjectRepo),
		Board:            usecase.NewBoardService(taskRepo, storyRepo),
		Members:          usecase.NewMemberService(memberRepo),
		Meetings:         usecase.NewMeetingService(meetingRepo),
		Suggestions:      usecase.NewSuggestionService(suggestionRepo),
		Transactions:     usecase.NewTransactionService(transactionRepo),
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, resourceCloser{closers: []io.Closer{dispatcher, db}}, nil
}
