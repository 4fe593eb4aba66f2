package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gabinetefacil/gabinete/internal/auth"
	"github.com/gabinetefacil/gabinete/internal/db"
	"github.com/gabinetefacil/gabinete/internal/rbac"
	"github.com/gabinetefacil/gabinete/internal/repo"
	"github.com/gabinetefacil/gabinete/internal/util"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("bootstrap falhou")
	}
}

func run() error {
	fs := flag.NewFlagSet("bootstrap", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		nome     = fs.String("nome", "", "nome do superadmin")
		email    = fs.String("email", "", "e-mail do superadmin")
		password = fs.String("senha", "", "senha inicial (mínimo 6 caracteres)")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	if *nome == "" || *email == "" || *password == "" {
		fs.Usage()
		return errors.New("nome, email e senha são obrigatórios")
	}
	if err := util.ValidateEmail(*email); err != nil {
		return err
	}
	if err := util.ValidatePassword(*password); err != nil {
		return err
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		return errors.New("defina DB_DSN")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	hash, err := auth.Hash(*password)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	queries := repo.New(pool)
	usuario, err := queries.InsertUsuario(ctx, repo.InsertUsuarioParams{
		ID:        uuid.New(),
		Nome:      strings.TrimSpace(*nome),
		Email:     strings.TrimSpace(*email),
		SenhaHash: hash,
		Role:      string(rbac.RoleSuperAdmin),
		Ativo:     true,
		CriadoEm:  util.Now(),
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return errors.New("já existe usuário com este e-mail")
		}
		return err
	}

	log.Info().
		Str("id", usuario.ID.String()).
		Str("email", usuario.Email).
		Msg("superadmin criado")
	return nil
}
