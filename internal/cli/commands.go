package cli

import (
	"github.com/spf13/cobra"

	"github.com/duynhne/client-service/internal/core/domain"
)

func newInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the clients and phones tables if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDirectory(cmd.Context(), func(d Directory) error {
				if err := d.EnsureSchema(cmd.Context()); err != nil {
					return err
				}
				return printMessage(cmd.OutOrStdout(), opts.Format, "schema ready")
			})
		},
	}
}

func newAddCommand(opts *RootOptions) *cobra.Command {
	var phones []string

	cmd := &cobra.Command{
		Use:     "add <name> <surname> <email>",
		Short:   "Register a client, optionally with phone numbers",
		Example: `  clientctl add Ada Lovelace ada@example.com --phone 5551234 --phone 5559876`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.CreateClientRequest{Name: args[0], Surname: args[1], Email: args[2], Phones: phones}
			return opts.withDirectory(cmd.Context(), func(d Directory) error {
				id, err := d.AddClient(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printID(cmd.OutOrStdout(), opts.Format, id)
			})
		},
	}

	cmd.Flags().StringArrayVarP(&phones, "phone", "p", nil, "phone number (repeatable)")

	return cmd
}

func newAddPhoneCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add-phone <client-id> <number>",
		Short: "Add a phone number to an existing client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := domain.ParseClientID(args[0])
			if err != nil {
				return err
			}
			return opts.withDirectory(cmd.Context(), func(d Directory) error {
				id, err := d.AddPhone(cmd.Context(), clientID, args[1])
				if err != nil {
					return err
				}
				return printID(cmd.OutOrStdout(), opts.Format, id)
			})
		},
	}
}

func newUpdateCommand(opts *RootOptions) *cobra.Command {
	var name, surname, email string

	cmd := &cobra.Command{
		Use:   "update <client-id>",
		Short: "Change a client's name, surname or email",
		Long: `Change a client's name, surname or email.

Only the flags given are changed. With no flags the current record is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := domain.ParseClientID(args[0])
			if err != nil {
				return err
			}

			var upd domain.ClientUpdate
			if cmd.Flags().Changed("name") {
				upd.Name = &name
			}
			if cmd.Flags().Changed("surname") {
				upd.Surname = &surname
			}
			if cmd.Flags().Changed("email") {
				upd.Email = &email
			}

			return opts.withDirectory(cmd.Context(), func(d Directory) error {
				c, err := d.UpdateClient(cmd.Context(), clientID, upd)
				if err != nil {
					return err
				}
				return printClient(cmd.OutOrStdout(), opts.Format, c)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&surname, "surname", "", "new surname")
	cmd.Flags().StringVar(&email, "email", "", "new email")

	return cmd
}

func newDeletePhoneCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-phone <client-id> <number>",
		Short: "Remove a phone number from a client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := domain.ParseClientID(args[0])
			if err != nil {
				return err
			}
			return opts.withDirectory(cmd.Context(), func(d Directory) error {
				if err := d.DeletePhone(cmd.Context(), clientID, args[1]); err != nil {
					return err
				}
				return printMessage(cmd.OutOrStdout(), opts.Format, "phone deleted")
			})
		},
	}
}

func newDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <client-id>",
		Short: "Remove a client and all of its phones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := domain.ParseClientID(args[0])
			if err != nil {
				return err
			}
			return opts.withDirectory(cmd.Context(), func(d Directory) error {
				if err := d.DeleteClient(cmd.Context(), clientID); err != nil {
					return err
				}
				return printMessage(cmd.OutOrStdout(), opts.Format, "client deleted")
			})
		},
	}
}

func newFindCommand(opts *RootOptions) *cobra.Command {
	var name, surname, email, number string

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find clients matching every given criterion",
		Example: `  clientctl find --surname Lovelace
  clientctl find --number 5551234`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req domain.SearchRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("surname") {
				req.Surname = &surname
			}
			if cmd.Flags().Changed("email") {
				req.Email = &email
			}
			if cmd.Flags().Changed("number") {
				req.Number = &number
			}

			return opts.withDirectory(cmd.Context(), func(d Directory) error {
				rows, err := d.FindClient(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printRows(cmd.OutOrStdout(), opts.Format, rows)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "exact name")
	cmd.Flags().StringVar(&surname, "surname", "", "exact surname")
	cmd.Flags().StringVar(&email, "email", "", "exact email")
	cmd.Flags().StringVar(&number, "number", "", "phone number")

	return cmd
}

func newListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every client with its phones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDirectory(cmd.Context(), func(d Directory) error {
				rows, err := d.ListClients(cmd.Context())
				if err != nil {
					return err
				}
				return printRows(cmd.OutOrStdout(), opts.Format, rows)
			})
		},
	}
}
