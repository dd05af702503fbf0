package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dosada05/athletics-meet/db"
	"github.com/Dosada05/athletics-meet/models"
	"github.com/Dosada05/athletics-meet/repositories"
	"github.com/Dosada05/athletics-meet/services"
)

func newOperatorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operator",
		Short: "Manage meet operators",
	}
	cmd.AddCommand(newOperatorAddCmd())
	return cmd
}

func newOperatorAddCmd() *cobra.Command {
	var email, role, password string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an operator account",
		Long:  "Creates an operator. Without --password the password is read from the first line of stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opRole := models.OperatorRole(strings.ToLower(role))
			if opRole != models.RoleOrganizer && opRole != models.RoleAdmin {
				return fmt.Errorf("unknown role %q (want organizer or admin)", role)
			}

			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("password is required")
				}
				password = strings.TrimRight(line, "\r\n")
			}

			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout, logger)
			if err != nil {
				return err
			}
			defer dbConn.Close()

			svc := services.NewAuthService(repositories.NewPostgresOperatorRepository(dbConn), logger)
			op, err := svc.CreateOperator(cmd.Context(), email, password, opRole)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Operator %d created (%s, %s)\n", op.ID, op.Email, op.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "operator email")
	cmd.Flags().StringVar(&role, "role", string(models.RoleOrganizer), "organizer or admin")
	cmd.Flags().StringVar(&password, "password", "", "operator password (prefer stdin)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
