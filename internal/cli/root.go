// Package cli implements clientctl, the operator command line for the
// client directory.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/duynhne/client-service/internal/core/domain"
)

// Directory is the set of directory operations the CLI drives.
// Satisfied by logicv1.ClientService.
type Directory interface {
	EnsureSchema(ctx context.Context) error
	AddClient(ctx context.Context, req domain.CreateClientRequest) (int64, error)
	AddPhone(ctx context.Context, clientID int64, number string) (int64, error)
	UpdateClient(ctx context.Context, clientID int64, upd domain.ClientUpdate) (*domain.Client, error)
	DeletePhone(ctx context.Context, clientID int64, number string) error
	DeleteClient(ctx context.Context, clientID int64) error
	FindClient(ctx context.Context, req domain.SearchRequest) ([]domain.ClientPhone, error)
	ListClients(ctx context.Context) ([]domain.ClientPhone, error)
}

// Opener connects to the directory. The returned func releases the connection.
type Opener func(ctx context.Context, opts *RootOptions) (Directory, func(), error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	open Opener
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the clientctl root command.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "clientctl",
		Short: "Manage the client directory",
		Long: `Manage the client directory stored in PostgreSQL.

Connection settings are read from the same DB_* environment variables
(and .env file) as the client service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v: %w", opts.Format, ValidFormats, domain.ErrValidation)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newInitCommand(opts))
	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newAddPhoneCommand(opts))
	cmd.AddCommand(newUpdateCommand(opts))
	cmd.AddCommand(newDeletePhoneCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))
	cmd.AddCommand(newFindCommand(opts))
	cmd.AddCommand(newListCommand(opts))

	return cmd
}

// withDirectory opens the directory for the duration of fn.
func (o *RootOptions) withDirectory(ctx context.Context, fn func(Directory) error) error {
	dir, release, err := o.open(ctx, o)
	if err != nil {
		return err
	}
	defer release()
	return fn(dir)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// ExitCode maps an error to the process exit status, one per error kind.
func ExitCode(err error) int {
	switch domain.KindOf(err) {
	case "":
		return 0
	case domain.KindValidation:
		return 2
	case domain.KindNotFound:
		return 3
	case domain.KindDuplicate:
		return 4
	default:
		return 1
	}
}
