package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/florax/florax-dashboard/internal/pkg/application/auth"
	"github.com/florax/florax-dashboard/pkg/types"
	"github.com/spf13/cobra"
)

func (c *cli) loginCmd() *cobra.Command {
	creds := types.Credentials{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := c.prompter()
			var err error

			if creds.Email == "" {
				if creds.Email, err = p.line("Email"); err != nil {
					return err
				}
			}
			if creds.Password == "" {
				if creds.Password, err = p.secret("Password"); err != nil {
					return err
				}
			}

			resp, err := c.app.Auth.Login(cmd.Context(), creds)
			if err != nil {
				return describe(err)
			}

			name := resp.Name
			if name == "" {
				name = creds.Email
			}
			fmt.Fprintf(c.out, "Signed in as %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&creds.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "account password, prompted for when omitted")

	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	req := types.RegisterRequest{Role: "USER"}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a FloraX account",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := c.prompter()
			var err error

			for _, f := range []struct {
				label  string
				target *string
				secret bool
			}{
				{"Name", &req.Name, false},
				{"Email", &req.Email, false},
				{"Phone", &req.Phone, false},
				{"Password", &req.Password, true},
				{"Confirm password", &req.ConfirmPassword, true},
			} {
				if *f.target != "" {
					continue
				}
				if f.secret {
					*f.target, err = p.secret(f.label)
				} else {
					*f.target, err = p.line(f.label)
				}
				if err != nil {
					return err
				}
			}

			if !req.Agree {
				if req.Agree, err = p.confirm("I agree to the terms & conditions"); err != nil {
					return err
				}
			}

			_, err = c.app.Auth.Register(cmd.Context(), req)
			if err != nil {
				return describe(err)
			}

			fmt.Fprintln(c.out, "Registration successful!")
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&req.Password, "password", "", "password, at least 6 characters")
	cmd.Flags().StringVar(&req.ConfirmPassword, "confirm-password", "", "password again")
	cmd.Flags().StringVar(&req.Role, "role", req.Role, "account role")
	cmd.Flags().BoolVar(&req.Agree, "agree", false, "agree to the terms & conditions")

	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Signed out")
			return nil
		},
	}
}

func (c *cli) forgotPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Ask for a password reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = c.prompter().line("Email"); err != nil {
					return err
				}
			}

			msg, err := c.app.Auth.ForgotPassword(cmd.Context(), email)
			if err != nil {
				return describe(err)
			}

			fmt.Fprintln(c.out, msg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func (c *cli) resetPasswordCmd() *cobra.Command {
	var token, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password using a reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := c.prompter()
			var err error

			if token == "" {
				if token, err = p.line("Reset token"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = p.secret("New password"); err != nil {
					return err
				}
			}

			msg, err := c.app.Auth.ResetPassword(cmd.Context(), token, password)
			if err != nil {
				return describe(err)
			}

			fmt.Fprintln(c.out, msg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "reset token from the email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "new password")
	return cmd
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			state := c.app.Session.State()
			if !state.Authenticated {
				fmt.Fprintln(c.out, "Not signed in")
				return nil
			}

			subject := state.Subject
			if subject == "" {
				subject = "(opaque token)"
			}
			fmt.Fprintf(c.out, "Signed in as %s\n", subject)

			if !state.ExpiresAt.IsZero() {
				fmt.Fprintf(c.out, "Session expires %s\n", state.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

// describe lists every rejected form field of a validation error.
func describe(err error) error {
	var verr *auth.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	fields := make([]string, 0, len(verr.Fields))
	for f := range verr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msg := "please correct the following:"
	for _, f := range fields {
		msg += fmt.Sprintf("\n  %s: %s", f, verr.Fields[f])
	}
	return errors.New(msg)
}
