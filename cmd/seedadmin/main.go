// seedadmin creates the initial admin user if none exists.
package main

import (
	"context"
	"os"

	"tiendaweb/internal/config"
	"tiendaweb/internal/dto"
	"tiendaweb/internal/infra"
	"tiendaweb/internal/repository"
	"tiendaweb/internal/service"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("error cargando configuración")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("error conectando a la base de datos")
	}

	username := envOr("ADMIN_USERNAME", "admin")
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal().Msg("ADMIN_PASSWORD es obligatorio")
	}

	repo := repository.NewUsuarioRepository(db)
	auth := service.NewAuthService(repo, cfg.JWTSecret, cfg.JWTExpirationHours, cfg.JWTRefreshHours)

	ctx := context.Background()
	if _, err := repo.FindByUsername(ctx, username); err == nil {
		log.Info().Str("username", username).Msg("el usuario admin ya existe, nada que hacer")
		return
	}

	u, err := auth.CrearUsuario(ctx, dto.CrearUsuarioRequest{
		Username: username,
		Nombre:   envOr("ADMIN_NOMBRE", "Administrador"),
		Password: password,
		Rol:      "admin",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("error creando el usuario admin")
	}
	log.Info().Str("id", u.ID).Str("username", u.Username).Msg("usuario admin creado")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
