package main

import (
	"fmt"
	"time"

	"cic-consultas/internal/adapters/auth/jwtauth"
	"cic-consultas/internal/config"
	"cic-consultas/internal/ports/auth"

	"github.com/spf13/cobra"
)

// tokenCmd emite un JWT firmado con AUTH_JWT_SECRET. Sólo para desarrollo y pruebas manuales.
func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un token de prueba",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("AUTH_JWT_SECRET requerido")
			}

			c := claimsFlags(cmd)
			if c.UserID == "" {
				return fmt.Errorf("--sub requerido")
			}
			ttl, _ := cmd.Flags().GetDuration("ttl")

			tok, err := jwtauth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer).Issue(c, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().String("sub", "", "ID de usuario")
	cmd.Flags().String("role", "lectura", "admin | operador | profesional | lectura")
	cmd.Flags().String("email", "", "Email del usuario")
	cmd.Flags().String("nombre", "", "Nombre visible")
	cmd.Flags().String("profesional-id", "", "ID de profesional (rol profesional)")
	cmd.Flags().Duration("ttl", 8*time.Hour, "Vigencia del token")
	return cmd
}

// claimsFlags arma claims desde flags (comando token).
func claimsFlags(cmd *cobra.Command) auth.Claims {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return auth.Claims{
		UserID:        get("sub"),
		Role:          get("role"),
		Email:         get("email"),
		Nombre:        get("nombre"),
		ProfesionalID: get("profesional-id"),
	}
}
