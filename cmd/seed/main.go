package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gauravnainwal518/note-app/internal/config"
	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
	"github.com/gauravnainwal518/note-app/internal/logger"
	"github.com/gauravnainwal518/note-app/internal/model"
	"github.com/gauravnainwal518/note-app/internal/repository"
	"github.com/gauravnainwal518/note-app/internal/service"
)

// SeedUser is one entry of the seed document.
type SeedUser struct {
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Notes []SeedNote `json:"notes"`
}

// SeedNote is a note owned by a SeedUser.
type SeedNote struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Result counts what a seed run changed.
type Result struct {
	UsersCreated int
	UsersUpdated int
	NotesCreated int
	Skipped      int
}

func main() {
	source := flag.String("source", "seed.json", "seed document: a file path or an http(s) URL")
	flag.Parse()

	cfg := config.Load()
	log := logger.SetupDefault(os.Stdout, cfg.SlogLevel())

	if err := run(context.Background(), cfg, log, *source); err != nil {
		log.Error("seed failed", slog.String("source", *source), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, source string) error {
	stores, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(context.Background()); err != nil {
			log.Warn("close store", slog.String("error", err.Error()))
		}
	}()
	log.Info("connected to store", slog.String("driver", cfg.DBDriver))

	users, err := loadSeed(ctx, source)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	log.Info("loaded seed", slog.Int("users", len(users)))

	notes := service.NewNoteService(stores.Notes, cfg.SanitizeNotes, service.WithLogger(log))
	res, err := seed(ctx, stores.Users, notes, users)
	if err != nil {
		return err
	}

	log.Info("seed completed",
		slog.Int("users_created", res.UsersCreated),
		slog.Int("users_updated", res.UsersUpdated),
		slog.Int("notes_created", res.NotesCreated),
		slog.Int("skipped", res.Skipped),
	)
	return nil
}

// loadSeed reads the seed document from a file or URL.
func loadSeed(ctx context.Context, source string) ([]SeedUser, error) {
	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch seed: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("seed source returned status code: %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		r = f
	}
	defer r.Close()

	var users []SeedUser
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return users, nil
}

// seed creates missing users, refreshes names of existing ones and adds
// notes whose title the user does not have yet, so reruns are idempotent.
// Notes go through the note service and get the same treatment as API writes.
func seed(ctx context.Context, users repository.UserRepository, notes service.NoteService, entries []SeedUser) (Result, error) {
	var res Result
	for _, entry := range entries {
		email := strings.ToLower(strings.TrimSpace(entry.Email))
		if email == "" || strings.TrimSpace(entry.Name) == "" {
			res.Skipped++
			continue
		}

		user, err := users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if user.Name != entry.Name {
				name := entry.Name
				if err := users.UpdateProfile(ctx, user.ID, repository.ProfileChanges{Name: &name}); err != nil {
					return res, fmt.Errorf("update user %s: %w", email, err)
				}
			}
			res.UsersUpdated++
		case errors.Is(err, apperrors.ErrUserNotFound):
			user = &model.User{Email: email, Name: entry.Name}
			if err := users.Create(ctx, user); err != nil {
				return res, fmt.Errorf("create user %s: %w", email, err)
			}
			res.UsersCreated++
		default:
			return res, fmt.Errorf("find user %s: %w", email, err)
		}

		existing, err := notes.List(ctx, user.ID)
		if err != nil {
			return res, fmt.Errorf("list notes of %s: %w", email, err)
		}
		titles := make(map[string]bool, len(existing))
		for _, n := range existing {
			titles[n.Title] = true
		}

		for _, n := range entry.Notes {
			if titles[strings.TrimSpace(n.Title)] {
				res.Skipped++
				continue
			}
			created, err := notes.Create(ctx, user.ID, n.Title, n.Content)
			if errors.Is(err, apperrors.ErrValidationFailed) {
				res.Skipped++
				continue
			}
			if err != nil {
				return res, fmt.Errorf("create note %q for %s: %w", n.Title, email, err)
			}
			titles[created.Title] = true
			res.NotesCreated++
		}
	}
	return res, nil
}
